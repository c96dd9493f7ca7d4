package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the frontend origin with credentials.
func CORS(frontendURL string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
