package services

import (
	"context"
	"fmt"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// pageBounds clamps page to >= 1 and limit to (0, maxPageSize], falling back to
// defaultPageSize. It returns the clamped values and the row offset.
func pageBounds(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit, (page - 1) * limit
}

// ActivityService reads the per-challenge activity feed. Entries are written by the
// operations that produce them, inside their transactions.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// List returns one page of the feed, newest first. Non-members see NotFound.
func (s *ActivityService) List(ctx context.Context, challengeID, requester uuid.UUID, page, limit int) (*models.ActivityPage, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)

	member, err := isParticipant(db, challengeID, requester)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrChallengeNotFound
	}

	page, limit, offset := pageBounds(page, limit)

	activities := []models.ChallengeActivity{}
	if err := db.Where("challenge_id = ?", challengeID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	var total int64
	if err := db.Model(&models.ChallengeActivity{}).Where("challenge_id = ?", challengeID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}

	return &models.ActivityPage{
		Activities: activities,
		Total:      total,
		Page:       page,
		Limit:      limit,
	}, nil
}
