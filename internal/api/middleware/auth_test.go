package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hugh/rally/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_ValidToken_AuthorizationHeader(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	userID := uint(17)
	email := "test@example.com"

	token, err := jwtService.GenerateToken(userID, email)
	require.NoError(t, err)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userID, GetUserID(r.Context()))
		assert.Equal(t, email, GetUserEmail(r.Context()))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	req := httptest.NewRequest("GET", "/api/v1/questions", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuth_NoToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("POST", "/api/v1/questions", nil)
	req.Header.Set("Accept", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":401,"message":"Unauthorized"}`, rec.Body.String())
}

func TestAuth_RejectedHeaders(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)
	token, err := jwtService.GenerateToken(1, "test@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"invalid token", "Bearer invalid-token"},
		{"missing scheme", token},
		{"basic scheme", "Basic " + token},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("Handler should not be called")
			}))

			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			req.Header.Set("Authorization", tt.header)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	// Create service with 1 nanosecond expiration
	jwtService := auth.NewJWTService("test-secret", 1*time.Nanosecond)

	token, err := jwtService.GenerateToken(1, "test@example.com")
	require.NoError(t, err)

	// Wait for token to expire
	time.Sleep(10 * time.Millisecond)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for expired token")
	}))

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_TokenFromDifferentSecret(t *testing.T) {
	jwtService1 := auth.NewJWTService("secret-1", 24*time.Hour)
	jwtService2 := auth.NewJWTService("secret-2", 24*time.Hour)

	// Generate token with service1
	token, err := jwtService1.GenerateToken(1, "test@example.com")
	require.NoError(t, err)

	// Try to validate with service2 (different secret)
	handler := Auth(jwtService2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for token with different secret")
	}))

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserID_FromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, uint(42))

	result := GetUserID(ctx)
	assert.Equal(t, uint(42), result)
}

func TestGetUserID_NotInContext(t *testing.T) {
	ctx := context.Background()

	result := GetUserID(ctx)
	assert.Equal(t, uint(0), result)
}

func TestGetUserEmail_FromContext(t *testing.T) {
	email := "test@example.com"
	ctx := context.WithValue(context.Background(), UserEmailKey, email)

	result := GetUserEmail(ctx)
	assert.Equal(t, email, result)
}

func TestGetUserEmail_NotInContext(t *testing.T) {
	ctx := context.Background()

	result := GetUserEmail(ctx)
	assert.Equal(t, "", result)
}
