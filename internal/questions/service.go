// Package questions manages the question and answer lifecycle. Every
// mutation of an existing row is gated by the ownership policy.
package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugh/rally/internal/apperr"
	"github.com/hugh/rally/internal/database"
	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/hooks"
	"github.com/hugh/rally/internal/policy"
	"github.com/hugh/rally/internal/validation"
	"gorm.io/gorm"
)

const (
	msgQuestionNotFound     = "Cannot find question with given id"
	msgQuestionSlugNotFound = "Cannot find question with given slug"
	msgSaveQuestion         = "Unable to save question"
	msgDeleteQuestion       = "Unable to delete question"
	msgUnsavedChannel       = "Cannot associate question with an unsaved channel"
	msgUnsavedQuestionUser  = "Cannot associate question with an unsaved user"
	msgTitleRequired        = "Give your question a descriptive title"
	msgBodyRequired         = "Write some description of your question"
	slugAttempts            = 2
)

var (
	errNothingDeleted = errors.New("no row deleted")
	errNothingUpdated = errors.New("no row updated")
)

// SlugGenerator produces a slug for a new question title.
type SlugGenerator interface {
	CreateUnique(ctx context.Context, source string) (string, error)
}

type Service struct {
	db           *gorm.DB
	slugs        SlugGenerator
	logger       *slog.Logger
	beforeCreate hooks.Pipeline[models.Question]
}

func NewService(db *gorm.DB, slugs SlugGenerator, logger *slog.Logger) *Service {
	s := &Service{db: db, slugs: slugs, logger: logger}
	s.beforeCreate = hooks.Pipeline[models.Question]{
		{Name: "sanitize text", Run: sanitizeQuestion},
		{Name: "assign slug", Run: s.assignSlug},
	}
	return s
}

// sanitizeQuestion drops NUL and control characters other than line breaks
// and tabs from the user supplied text.
func sanitizeQuestion(_ context.Context, q *models.Question) error {
	q.Title = validation.SanitizeString(q.Title)
	q.Body = validation.SanitizeString(q.Body)
	return nil
}

func (s *Service) assignSlug(ctx context.Context, q *models.Question) error {
	slug, err := s.slugs.CreateUnique(ctx, q.Title)
	if err != nil {
		return err
	}
	q.Slug = slug
	return nil
}

// QuestionUpdate holds the fields an update may change. Nil means keep the
// current value; a present empty value is rejected.
type QuestionUpdate struct {
	Title *string
	Body  *string
}

// Add creates a question owned by user in channel. A concurrent insert that
// wins the same slug causes one regeneration before giving up.
func (s *Service) Add(ctx context.Context, title, body string, channel *models.Channel, user *models.User) (*models.Question, error) {
	if channel == nil || channel.ID == 0 {
		return nil, apperr.InvalidAssociation(msgUnsavedChannel)
	}
	if user == nil || user.ID == 0 {
		return nil, apperr.InvalidAssociation(msgUnsavedQuestionUser)
	}

	var lastErr error
	for attempt := 1; attempt <= slugAttempts; attempt++ {
		question := models.Question{
			ChannelID: channel.ID,
			UserID:    user.ID,
			Title:     title,
			Body:      body,
		}
		if err := s.beforeCreate.Run(ctx, &question); err != nil {
			return nil, apperr.Persistence(msgSaveQuestion, err)
		}

		result := s.db.WithContext(ctx).Create(&question)
		if result.Error == nil {
			if result.RowsAffected == 0 || question.ID == 0 {
				return nil, apperr.Persistence(msgSaveQuestion, nil)
			}
			question.Channel = channel
			question.User = user
			s.logger.Info("question created", "question_id", question.ID, "slug", question.Slug, "user_id", user.ID)
			return &question, nil
		}

		if !database.IsUniqueViolation(result.Error) {
			return nil, apperr.Persistence(msgSaveQuestion, result.Error)
		}
		lastErr = result.Error
		s.logger.Warn("slug taken by concurrent insert", "slug", question.Slug, "attempt", attempt)
	}

	return nil, apperr.Persistence(msgSaveQuestion, lastErr)
}

func (s *Service) Find(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgQuestionNotFound)
		}
		return nil, fmt.Errorf("finding question: %w", err)
	}
	return &question, nil
}

// FindBySlug loads the question with its channel and author.
func (s *Service) FindBySlug(ctx context.Context, slug string) (*models.Question, error) {
	var question models.Question
	err := s.db.WithContext(ctx).
		Preload("Channel").
		Preload("User").
		Where("slug = ?", slug).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgQuestionSlugNotFound)
		}
		return nil, fmt.Errorf("finding question by slug: %w", err)
	}
	return &question, nil
}

// List returns one page of questions, newest first, and the total count.
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Question, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Question{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting questions: %w", err)
	}

	var questions []models.Question
	err := s.db.WithContext(ctx).
		Preload("Channel").
		Preload("User").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing questions: %w", err)
	}
	return questions, total, nil
}

// FindOwned loads a question the acting user may change: NotFound when it
// does not exist, AccessDenied when someone else owns it.
func (s *Service) FindOwned(ctx context.Context, id, actingUserID uint) (*models.Question, error) {
	question, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeQuestion(question.UserID, actingUserID); err != nil {
		return nil, err
	}
	return question, nil
}

func sanitized(v *string) *string {
	if v == nil {
		return nil
	}
	clean := validation.SanitizeString(*v)
	return &clean
}

// Update applies the present fields and, when channel differs from the
// current one, moves the question. Only changed columns are written and the
// slug is never touched.
func (s *Service) Update(ctx context.Context, id uint, in QuestionUpdate, actingUserID uint, channel *models.Channel) (*models.Question, error) {
	question, err := s.FindOwned(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}
	in.Title = sanitized(in.Title)
	in.Body = sanitized(in.Body)

	var invalid []apperr.FieldError
	changes := map[string]any{}

	if in.Title != nil {
		switch {
		case strings.TrimSpace(*in.Title) == "":
			invalid = append(invalid, apperr.FieldError{Field: "title", Validation: "required", Message: msgTitleRequired})
		case *in.Title != question.Title:
			changes["title"] = *in.Title
		}
	}
	if in.Body != nil {
		switch {
		case strings.TrimSpace(*in.Body) == "":
			invalid = append(invalid, apperr.FieldError{Field: "body", Validation: "required", Message: msgBodyRequired})
		case *in.Body != question.Body:
			changes["body"] = *in.Body
		}
	}
	if len(invalid) > 0 {
		return nil, apperr.Validation(invalid)
	}

	if channel != nil {
		if channel.ID == 0 {
			return nil, apperr.InvalidAssociation(msgUnsavedChannel)
		}
		if channel.ID != question.ChannelID {
			changes["channel_id"] = channel.ID
		}
	}

	if len(changes) == 0 {
		return question, nil
	}

	result := s.db.WithContext(ctx).Model(question).Updates(changes)
	if result.Error != nil {
		return nil, apperr.Persistence(msgSaveQuestion, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Persistence(msgSaveQuestion, nil)
	}

	if title, ok := changes["title"].(string); ok {
		question.Title = title
	}
	if body, ok := changes["body"].(string); ok {
		question.Body = body
	}
	if _, ok := changes["channel_id"]; ok {
		question.ChannelID = channel.ID
		question.Channel = channel
	}

	s.logger.Info("question updated", "question_id", question.ID, "user_id", actingUserID)
	return question, nil
}

// Remove deletes the question and its answers in one transaction.
func (s *Service) Remove(ctx context.Context, id uint, actingUserID uint) error {
	question, err := s.FindOwned(ctx, id, actingUserID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Question{}, question.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNothingDeleted
		}
		return nil
	})
	if err != nil {
		return apperr.Persistence(msgDeleteQuestion, err)
	}

	s.logger.Info("question deleted", "question_id", question.ID, "user_id", actingUserID)
	return nil
}
