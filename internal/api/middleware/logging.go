package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logging writes one record per request. 5xx responses log at error, 4xx at
// warn, and successful health checks at debug.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"size", ww.BytesWritten(),
				"duration", time.Since(start),
				"ip", clientIP(r),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				attrs = append(attrs, "route", rctx.RoutePattern())
			}

			logger.Log(r.Context(), levelFor(r, status), "request", attrs...)
		})
	}
}

func levelFor(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case r.URL.Path == "/health" || r.URL.Path == "/ready":
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
