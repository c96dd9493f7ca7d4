package middleware

import (
	"net/http"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"storyloom/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, puts a request scoped logger
// into the context and logs the outcome.
func RequestLogger(log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = xid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLog := log.With(zap.String("request_id", requestID))
			ctx := logger.NewContextWithLogger(r.Context(), reqLog)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			switch {
			case rec.status >= http.StatusInternalServerError:
				reqLog.Error("HTTP request", fields...)
			case rec.status >= http.StatusBadRequest:
				reqLog.Warn("HTTP request", fields...)
			default:
				reqLog.Info("HTTP request", fields...)
			}
		})
	}
}
