package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"storyloom/internal/middleware"
	"storyloom/internal/models"
)

func with(fn http.HandlerFunc, mws ...middleware.Middleware) http.Handler {
	return middleware.Chain(fn, mws...)
}

// NewRouter registers every route. limiter and metrics may be nil.
func NewRouter(h *Handlers, limiter *middleware.RateLimiter, metrics *middleware.Metrics) http.Handler {
	r := mux.NewRouter()

	var notFound http.Handler = http.HandlerFunc(h.NotFound)
	if metrics != nil {
		r.Use(mux.MiddlewareFunc(metrics.Middleware()))
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
		notFound = metrics.Middleware()(notFound)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	protect := middleware.Protect(h.AuthService, h.Log)
	optional := middleware.OptionalAuth(h.AuthService, h.Log)
	adminOnly := middleware.Authorize(h.Log, models.RoleAdmin)

	r.HandleFunc("/api", h.APIRoot).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(limiter.Middleware()))

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// auth
	api.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.Handle("/auth/user", with(h.GetMe, protect)).Methods(http.MethodGet)
	api.Handle("/auth/logout", with(h.Logout, protect)).Methods(http.MethodPost)
	api.HandleFunc("/auth/forgot-password", h.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password/{token}", h.ResetPassword).Methods(http.MethodPut)

	// posts
	api.Handle("/posts", with(h.GetPosts, optional)).Methods(http.MethodGet)
	api.Handle("/posts", with(h.CreatePost, protect)).Methods(http.MethodPost)
	api.Handle("/posts/{id}", with(h.GetPost, optional)).Methods(http.MethodGet)
	api.Handle("/posts/{id}", with(h.UpdatePost, protect)).Methods(http.MethodPut)
	api.Handle("/posts/{id}", with(h.DeletePost, protect)).Methods(http.MethodDelete)
	api.Handle("/posts/{id}/like", with(h.ToggleLike, protect)).Methods(http.MethodPut)
	api.Handle("/posts/{id}/comments", with(h.AddComment, protect)).Methods(http.MethodPost)
	api.Handle("/posts/{id}/comments/{commentId}", with(h.DeleteComment, protect)).Methods(http.MethodDelete)

	// users
	api.Handle("/users", with(h.GetUsers, protect, adminOnly)).Methods(http.MethodGet)
	api.Handle("/users/profile", with(h.UpdateProfile, protect)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	api.Handle("/users/{id}", with(h.DeleteUser, protect, adminOnly)).Methods(http.MethodDelete)
	api.Handle("/users/{id}/posts", with(h.GetUserPosts, optional)).Methods(http.MethodGet)
	api.Handle("/users/{id}/liked-posts", with(h.GetLikedPosts, protect)).Methods(http.MethodGet)
	api.Handle("/users/{id}/stats", with(h.GetUserStats, protect)).Methods(http.MethodGet)

	// uploads
	api.HandleFunc("/uploads/{filename}", h.ServeUpload).Methods(http.MethodGet)

	return middleware.Chain(r,
		middleware.Recover(h.Log),
		middleware.RequestLogger(h.Log),
		middleware.CORS(h.Cfg.FrontendURL),
	)
}
