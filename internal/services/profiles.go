package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultWeightDays = 30

// ProfileService owns fitness profiles and the weight log.
type ProfileService struct {
	db   *gorm.DB
	opts options
}

func NewProfileService(db *gorm.DB, opts ...Option) *ProfileService {
	return &ProfileService{db: db, opts: buildOptions(opts)}
}

// Get returns the user's profile, or nil when none was saved yet.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

// Upsert creates the profile or patches the fields present in req.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, req models.UpsertProfileRequest) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := validateProfile(req); err != nil {
		return nil, err
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load profile: %w", err)
		}
		exists := err == nil
		if !exists {
			profile = models.Profile{UserID: userID, Goals: []string{}}
		}

		if req.Height != nil {
			profile.Height = req.Height
		}
		if req.Weight != nil {
			profile.Weight = req.Weight
		}
		if req.Age != nil {
			profile.Age = req.Age
		}
		if req.FitnessLevel != nil {
			profile.FitnessLevel = req.FitnessLevel
		}
		if req.Goals != nil {
			profile.Goals = *req.Goals
		}
		if req.TargetWeight != nil {
			profile.TargetWeight = req.TargetWeight
		}
		if req.ActivityLevel != nil {
			profile.ActivityLevel = req.ActivityLevel
		}

		if exists {
			return tx.Save(&profile).Error
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func validateProfile(req models.UpsertProfileRequest) error {
	if req.FitnessLevel != nil && !slices.Contains(models.FitnessLevels, *req.FitnessLevel) {
		return invalid("Invalid fitness level")
	}
	if req.ActivityLevel != nil && !slices.Contains(models.ActivityLevels, *req.ActivityLevel) {
		return invalid("Invalid activity level")
	}
	if req.Goals != nil {
		for _, g := range *req.Goals {
			if !slices.Contains(models.FitnessGoals, g) {
				return invalid("Invalid goal: " + g)
			}
		}
	}
	for _, v := range []*float64{req.Height, req.Weight, req.TargetWeight} {
		if v != nil && *v <= 0 {
			return invalid("Measurements must be positive")
		}
	}
	if req.Age != nil && *req.Age <= 0 {
		return invalid("Age must be positive")
	}
	return nil
}

// LogWeight appends a weight entry stamped with the current time.
func (s *ProfileService) LogWeight(ctx context.Context, userID uuid.UUID, req models.LogWeightRequest) (*models.WeightEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if req.Weight <= 0 {
		return nil, invalid("Weight must be positive")
	}

	entry := models.WeightEntry{
		UserID: userID,
		Weight: req.Weight,
		Date:   s.opts.now().UTC(),
		Notes:  req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("log weight: %w", err)
	}
	return &entry, nil
}

// WeightProgress returns the entries of the last days days, oldest first. days <= 0
// means the default window of 30 days.
func (s *ProfileService) WeightProgress(ctx context.Context, userID uuid.UUID, days int) ([]models.WeightEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if days <= 0 {
		days = defaultWeightDays
	}
	cutoff := s.opts.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	entries := []models.WeightEntry{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, cutoff).
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("weight progress: %w", err)
	}
	return entries, nil
}
