package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Decision is the outcome of a single limiter check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KeyFunc derives the limiter key for a request.
type KeyFunc func(r *http.Request) string

// ByIP keys on the client address.
func ByIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// ByUser keys on the authenticated user and falls back to the client address
// for anonymous requests. It must run after Auth.
func ByUser(r *http.Request) string {
	if id := GetUserID(r.Context()); id != 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return ByIP(r)
}

// RateLimit rejects requests over the limiter's budget with 429. A limiter
// error lets the request through.
func RateLimit(limiter Limiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := limiter.Allow(r.Context(), key(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				retry := int64(time.Until(d.Reset).Seconds()) + 1
				h.Set("Retry-After", strconv.FormatInt(retry, 10))
				writeStatus(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
