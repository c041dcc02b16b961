package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hugh/rally/internal/auth"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
)

// Auth requires a valid bearer token and puts its claims on the context.
func Auth(tokens auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeStatus(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				writeStatus(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// writeStatus writes the same {status, message} body the handlers use for errors.
func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "message": message})
}

// GetUserID returns the authenticated user's id, or 0 when the request is anonymous.
func GetUserID(ctx context.Context) uint {
	if id, ok := ctx.Value(UserIDKey).(uint); ok {
		return id
	}
	return 0
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}
