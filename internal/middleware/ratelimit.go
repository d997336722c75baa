// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/iyunix/go-aichat/internal/envelope"
	"github.com/iyunix/go-aichat/internal/ratelimit"
)

// RateLimitMiddleware answers 429 once a client has used up its bucket.
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter, name string, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)
			allowed, info := limiter.Allow(clientIP)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))

			if !allowed {
				logger.Warn("rate limited", "endpoint", name, "client", clientIP)
				seconds := int(math.Ceil(info.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
				envelope.Write(w, envelope.Fail[struct{}](http.StatusTooManyRequests,
					fmt.Sprintf("too many attempts, please try again in %d seconds", seconds)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthSuccessMiddleware refills the client's bucket after a successful
// authentication.
func AuthSuccessMiddleware(limiter *ratelimit.MemoryRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			if wrapper.statusCode >= 200 && wrapper.statusCode < 300 {
				limiter.RecordSuccess(ratelimit.GetClientIP(r))
			}
		})
	}
}
