package auth

import (
	"context"

	"github.com/hugh/rally/internal/database/models"
)

// Authenticator defines the interface for user registration and authentication.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*Registration, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	VerifyAccount(ctx context.Context, token string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uint, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
	_ Hasher        = (*BcryptHasher)(nil)
)
