package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	FitnessLevels  = []string{"beginner", "intermediate", "advanced"}
	FitnessGoals   = []string{"weight_loss", "muscle_gain", "endurance", "strength"}
	ActivityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}
)

// Profile holds a user's body stats and training goals. Heights are in cm, weights in kg.
type Profile struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Height        *float64  `json:"height"`
	Weight        *float64  `json:"weight"`
	Age           *int      `json:"age"`
	FitnessLevel  *string   `json:"fitnessLevel"`
	Goals         []string  `json:"goals" gorm:"serializer:json"`
	TargetWeight  *float64  `json:"targetWeight"`
	ActivityLevel *string   `json:"activityLevel"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type UpsertProfileRequest struct {
	Height        *float64  `json:"height"`
	Weight        *float64  `json:"weight"`
	Age           *int      `json:"age"`
	FitnessLevel  *string   `json:"fitnessLevel"`
	Goals         *[]string `json:"goals"`
	TargetWeight  *float64  `json:"targetWeight"`
	ActivityLevel *string   `json:"activityLevel"`
}

type WeightEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_weight_user_date"`
	Weight    float64   `json:"weight" gorm:"not null"`
	Date      time.Time `json:"date" gorm:"not null;index:idx_weight_user_date"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w *WeightEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type LogWeightRequest struct {
	Weight float64 `json:"weight"`
	Notes  *string `json:"notes"`
}
