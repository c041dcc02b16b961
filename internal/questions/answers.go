package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hugh/rally/internal/apperr"
	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/policy"
	"github.com/hugh/rally/internal/validation"
	"gorm.io/gorm"
)

const (
	msgAnswerNotFound    = "Cannot find answer with given id"
	msgSaveAnswer        = "Unable to save answer"
	msgDeleteAnswer      = "Unable to delete answer"
	msgUnsavedQuestion   = "Cannot associate answer with an unsaved question"
	msgUnsavedAnswerUser = "Cannot associate answer with an unsaved user"
	msgAnswerRequired    = "Write your answer"
)

// AddAnswer stores body as an answer by user to question.
func (s *Service) AddAnswer(ctx context.Context, body string, question *models.Question, user *models.User) (*models.Answer, error) {
	if question == nil || question.ID == 0 {
		return nil, apperr.InvalidAssociation(msgUnsavedQuestion)
	}
	if user == nil || user.ID == 0 {
		return nil, apperr.InvalidAssociation(msgUnsavedAnswerUser)
	}

	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     user.ID,
		Body:       validation.SanitizeString(body),
	}
	result := s.db.WithContext(ctx).Create(&answer)
	if result.Error != nil {
		return nil, apperr.Persistence(msgSaveAnswer, result.Error)
	}
	if result.RowsAffected == 0 || answer.ID == 0 {
		return nil, apperr.Persistence(msgSaveAnswer, nil)
	}

	answer.User = user
	s.logger.Info("answer created", "answer_id", answer.ID, "question_id", question.ID, "user_id", user.ID)
	return &answer, nil
}

func (s *Service) FindAnswer(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := s.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgAnswerNotFound)
		}
		return nil, fmt.Errorf("finding answer: %w", err)
	}
	return &answer, nil
}

// ListAnswers returns one page of a question's answers, oldest first.
func (s *Service) ListAnswers(ctx context.Context, questionID uint, offset, limit int) ([]models.Answer, int64, error) {
	if _, err := s.Find(ctx, questionID); err != nil {
		return nil, 0, err
	}

	scope := s.db.WithContext(ctx).Model(&models.Answer{}).Where("question_id = ?", questionID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting answers: %w", err)
	}

	var answers []models.Answer
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("question_id = ?", questionID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&answers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing answers: %w", err)
	}
	return answers, total, nil
}

// UpdateAnswer replaces the body of an answer owned by the acting user.
func (s *Service) UpdateAnswer(ctx context.Context, id uint, body string, actingUserID uint) (*models.Answer, error) {
	answer, err := s.FindAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeAnswer(answer.UserID, actingUserID); err != nil {
		return nil, err
	}
	body = validation.SanitizeString(body)
	if strings.TrimSpace(body) == "" {
		return nil, apperr.Validation([]apperr.FieldError{{Field: "body", Validation: "required", Message: msgAnswerRequired}})
	}
	if body == answer.Body {
		return answer, nil
	}

	result := s.db.WithContext(ctx).Model(answer).Update("body", body)
	if result.Error != nil {
		return nil, apperr.Persistence(msgSaveAnswer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Persistence(msgSaveAnswer, nil)
	}
	answer.Body = body
	return answer, nil
}

// RemoveAnswer deletes an answer owned by the acting user.
func (s *Service) RemoveAnswer(ctx context.Context, id uint, actingUserID uint) error {
	answer, err := s.FindAnswer(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.AuthorizeAnswer(answer.UserID, actingUserID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.Answer{}, answer.ID)
	if result.Error != nil {
		return apperr.Persistence(msgDeleteAnswer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Persistence(msgDeleteAnswer, nil)
	}
	return nil
}

// MarkBestAnswer flags an answer as the best one for its question. Only the
// question owner may do this, and any previous best answer is unflagged.
func (s *Service) MarkBestAnswer(ctx context.Context, answerID uint, actingUserID uint) (*models.Answer, error) {
	answer, err := s.FindAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	question, err := s.Find(ctx, answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeQuestion(question.UserID, actingUserID); err != nil {
		return nil, err
	}
	if answer.BestAnswer {
		return answer, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ? AND id <> ? AND best_answer = ?", question.ID, answer.ID, true).
			Update("best_answer", false).Error; err != nil {
			return err
		}
		result := tx.Model(answer).Update("best_answer", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNothingUpdated
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence(msgSaveAnswer, err)
	}

	answer.BestAnswer = true
	s.logger.Info("best answer marked", "answer_id", answer.ID, "question_id", question.ID)
	return answer, nil
}
