package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit is a middleware factory that throttles requests per client
// address. It guards the auth endpoints against credential stuffing; the
// rest of the API is not limited.
func RateLimit(perSecond float64, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*limiterEntry)
	)

	// Drop limiters idle for an hour so the map does not grow without
	// bound under churn.
	const idleEviction = time.Hour

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			mu.Lock()
			entry, ok := limiters[host]
			if !ok {
				entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
				limiters[host] = entry
			}
			entry.lastSeen = time.Now()
			for addr, e := range limiters {
				if time.Since(e.lastSeen) > idleEviction {
					delete(limiters, addr)
				}
			}
			mu.Unlock()

			if !entry.limiter.Allow() {
				logger.Warn("rate limit exceeded", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}
