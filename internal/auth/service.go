package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/rally/internal/apperr"
	"github.com/hugh/rally/internal/database"
	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/events"
	"github.com/hugh/rally/internal/hooks"
	"github.com/hugh/rally/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrUnsupportedField = errors.New("unsupported lookup field")
)

const (
	msgRegistrationFailed = "Unable to create your account, please try after some time"
	msgAccountNotFound    = "Unable to find any account with this email address"
	msgPasswordMismatch   = "Password mis-match"
	msgAccountDisabled    = "Your account has been disabled"
	msgVerifyFailed       = "Unable to verify your account"
)

// Lookup fields accepted by FindByOrFail.
const (
	FieldID               = "id"
	FieldEmail            = "email"
	FieldVerificationCode = "verification_code"
)

var lookupFields = map[string]bool{
	FieldID:               true,
	FieldEmail:            true,
	FieldVerificationCode: true,
}

type Service struct {
	db           *gorm.DB
	hasher       Hasher
	jwt          TokenService
	validator    *validation.Validator
	logger       *slog.Logger
	beforeCreate hooks.Pipeline[models.User]
}

func NewService(db *gorm.DB, hasher Hasher, jwt TokenService, logger *slog.Logger) *Service {
	s := &Service{
		db:        db,
		hasher:    hasher,
		jwt:       jwt,
		validator: validation.NewValidator(db),
		logger:    logger,
	}
	s.beforeCreate = hooks.Pipeline[models.User]{
		{Name: "hash password", Run: s.hashPassword},
		{Name: "assign verification code", Run: assignVerificationCode},
		{Name: "mark pending", Run: markPending},
	}
	return s
}

type RegisterInput struct {
	Email     string
	Password  string
	Firstname string
	Lastname  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Registration is the outcome of Register. Events must be dispatched by the
// caller; the service performs no delivery itself.
type Registration struct {
	User   *models.User
	Events []events.Event
}

func (s *Service) hashPassword(_ context.Context, u *models.User) error {
	digest, err := s.hasher.Hash(u.Password)
	if err != nil {
		return err
	}
	u.Password = digest
	return nil
}

func assignVerificationCode(_ context.Context, u *models.User) error {
	code, err := uuid.NewUUID()
	if err != nil {
		return err
	}
	u.VerificationCode = code.String()
	return nil
}

func markPending(_ context.Context, u *models.User) error {
	u.Status = models.UserStatusPending
	return nil
}

// normalizeEmail is applied before every email write and lookup, so the
// unique index on users.email holds case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*Registration, error) {
	input.Email = normalizeEmail(input.Email)

	data := map[string]string{"email": input.Email, "password": input.Password}
	if err := s.validator.Validate(ctx, data, validation.NewUserRules); err != nil {
		return nil, err
	}

	user := models.User{
		Email:     input.Email,
		Password:  input.Password,
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
	}
	if err := s.beforeCreate.Run(ctx, &user); err != nil {
		return nil, apperr.Registration(msgRegistrationFailed, err)
	}

	result := s.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		// Lost a race with a concurrent registration for the same email.
		if database.IsUniqueViolation(result.Error) {
			return nil, apperr.Validation([]apperr.FieldError{{
				Field:      "email",
				Validation: "unique",
				Message:    "There's already an account with this email address",
			}})
		}
		return nil, apperr.Registration(msgRegistrationFailed, result.Error)
	}
	if result.RowsAffected == 0 || user.ID == 0 {
		return nil, apperr.Registration(msgRegistrationFailed, nil)
	}

	fresh, err := s.FindByOrFail(ctx, FieldID, user.ID, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", fresh.ID)

	return &Registration{
		User:   fresh,
		Events: []events.Event{events.NewUserRegistered(fresh)},
	}, nil
}

// FindByOrFail looks a user up by one of the lookup fields. When no row
// matches, fallback's result is returned if fallback is set, otherwise a
// NotFound error naming the field.
func (s *Service) FindByOrFail(ctx context.Context, field string, value any, fallback func() error) (*models.User, error) {
	if !lookupFields[field] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedField, field)
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if fallback != nil {
				return nil, fallback()
			}
			return nil, apperr.NotFound("Cannot find user with " + field)
		}
		return nil, fmt.Errorf("finding user by %s: %w", field, err)
	}
	return &user, nil
}

func (s *Service) FindViaCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByOrFail(ctx, FieldEmail, normalizeEmail(email), func() error {
		return apperr.InvalidCredentials(msgAccountNotFound, ErrAccountNotFound)
	})
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, apperr.InvalidCredentials(msgPasswordMismatch, ErrPasswordMismatch)
	}
	return user, nil
}

// VerifyAccount activates the account holding token. Active accounts are
// returned unchanged and disabled ones are refused. Tokens that are not UUIDs
// never match, so accounts without a code cannot be verified.
func (s *Service) VerifyAccount(ctx context.Context, token string) (*models.User, error) {
	if !validation.IsValidUUID(token) {
		return nil, apperr.NotFound("Cannot find user with " + FieldVerificationCode)
	}

	user, err := s.FindByOrFail(ctx, FieldVerificationCode, token, nil)
	if err != nil {
		return nil, err
	}

	switch user.Status {
	case models.UserStatusDisabled:
		return nil, apperr.AccessDenied(msgAccountDisabled)
	case models.UserStatusActive:
		return user, nil
	}

	result := s.db.WithContext(ctx).
		Model(user).
		Update("status", models.UserStatusActive)
	if result.Error != nil {
		return nil, apperr.Persistence(msgVerifyFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Persistence(msgVerifyFailed, nil)
	}
	user.Status = models.UserStatusActive

	s.logger.Info("account verified", "user_id", user.ID)
	return user, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	input.Email = normalizeEmail(input.Email)
	data := map[string]string{"email": input.Email, "password": input.Password}
	if err := s.validator.Validate(ctx, data, validation.LoginRules); err != nil {
		return nil, err
	}

	user, err := s.FindViaCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if user.IsDisabled() {
		return nil, apperr.AccessDenied(msgAccountDisabled)
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.FindByOrFail(ctx, FieldID, id, nil)
}
