package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"bridge/internal/cache"
	"bridge/internal/helpers"

	"go.uber.org/zap"
)

// RateLimit throttles requests per client IP using the shared cache. A nil
// cache disables throttling entirely.
func RateLimit(c cache.ICache, trustedProxies []string, requestsPerMinute int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if c == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := resolveClientIP(r, trustedProxies)
			retryAfter, err := c.GetRateLimit(clientIP, requestsPerMinute)
			if err != nil {
				zap.L().Error("Rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				helpers.RespondWithError(w, http.StatusTooManyRequests, []string{"RATE_LIMITED"})
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func resolveClientIP(r *http.Request, trustedProxies []string) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	for _, proxy := range trustedProxies {
		if host != proxy {
			continue
		}
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			return strings.TrimSpace(parts[0])
		}
	}

	return host
}
