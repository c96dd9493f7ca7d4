package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storyloom/internal/respond"
)

const MsgTooManyRequests = "Too many requests from this IP, please try again later."

// RateLimiter is a fixed window counter per client IP kept in Redis.
type RateLimiter struct {
	rdb    redis.Cmdable
	window time.Duration
	limit  int
	log    *zap.Logger
}

// NewRateLimiter returns nil when rdb is nil, which disables limiting.
func NewRateLimiter(rdb redis.Cmdable, window time.Duration, limit int, log *zap.Logger) *RateLimiter {
	if rdb == nil {
		return nil
	}
	return &RateLimiter{rdb: rdb, window: window, limit: limit, log: log}
}

// Allow counts one request for id and reports whether it fits in the window.
func (l *RateLimiter) Allow(ctx context.Context, id string) (bool, int, error) {
	key := fmt.Sprintf("rl:%s", id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, err
		}
	}

	remaining := l.limit - int(cnt)
	if remaining < 0 {
		remaining = 0
	}
	return cnt <= int64(l.limit), remaining, nil
}

// Middleware fails open when Redis is unreachable.
func (l *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				l.log.Warn("Rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
				respond.Fail(w, http.StatusTooManyRequests, MsgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
