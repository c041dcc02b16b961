package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/events"
	"gorm.io/gorm"
)

// VerificationSender is the part of the mailer the handlers use.
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, user *models.User) error
}

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	mailer VerificationSender
}

func NewHandler(db *gorm.DB, logger *slog.Logger, mailer VerificationSender) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		mailer: mailer,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVerificationEmail, h.HandleVerificationEmail)
}

func (h *Handler) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var payload VerificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	err := h.sendVerification(ctx, payload.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The account is gone; retrying won't bring it back.
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}

// HandleEvent consumes bus events delivered over AMQP.
func (h *Handler) HandleEvent(ctx context.Context, ev events.Event) error {
	switch ev.Name {
	case events.UserRegistered:
		err := h.sendVerification(ctx, ev.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.Warn("dropping verification for missing user", "user_id", ev.UserID)
			return nil
		}
		return err
	default:
		h.logger.Warn("ignoring unknown event", "event", ev.Name)
		return nil
	}
}

func (h *Handler) sendVerification(ctx context.Context, userID uint) error {
	h.logger.Info("sending verification email", "user_id", userID)

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return fmt.Errorf("loading user %d: %w", userID, err)
	}

	if user.Status != models.UserStatusPending {
		h.logger.Info("user no longer pending verification, skipping", "user_id", userID, "status", user.Status)
		return nil
	}

	if err := h.mailer.SendVerificationEmail(ctx, &user); err != nil {
		h.logger.Error("verification email failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}
