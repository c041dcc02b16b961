// Package channels reads the seeded channel directory.
package channels

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugh/rally/internal/apperr"
	"github.com/hugh/rally/internal/database/models"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}

func (s *Service) Find(ctx context.Context, id uint) (*models.Channel, error) {
	if id == 0 {
		return nil, apperr.NotFound("Cannot find channel with given id")
	}

	var channel models.Channel
	if err := s.db.WithContext(ctx).First(&channel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Cannot find channel with given id")
		}
		return nil, fmt.Errorf("finding channel: %w", err)
	}
	return &channel, nil
}
