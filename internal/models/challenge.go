package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
)

const (
	RoleCreator     = "creator"
	RoleParticipant = "participant"
)

type Challenge struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string      `json:"name" gorm:"not null"`
	Description string      `json:"description"`
	CreatedBy   uuid.UUID   `json:"createdBy" gorm:"type:uuid;index;not null"`
	StartDate   time.Time   `json:"startDate" gorm:"not null"`
	EndDate     time.Time   `json:"endDate" gorm:"not null"`
	IsPublic    bool        `json:"isPublic" gorm:"default:false"`
	InviteCode  string      `json:"inviteCode" gorm:"size:6;uniqueIndex;not null"`
	DailyTasks  []DailyTask `json:"dailyTasks" gorm:"serializer:json;not null"`
	Status      string      `json:"status" gorm:"not null;default:'pending'"` // pending, active, completed
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Participants is filled from ChallengeParticipant rows, creator first.
	Participants []uuid.UUID `json:"participants" gorm:"-"`
}

func (ch *Challenge) BeforeCreate(tx *gorm.DB) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	if ch.Status == "" {
		ch.Status = ChallengeStatusPending
	}
	return nil
}

// HasParticipant reports whether userID is in the loaded participant list.
func (ch *Challenge) HasParticipant(userID uuid.UUID) bool {
	for _, id := range ch.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// DailyTask is addressed by its position in Challenge.DailyTasks.
type DailyTask struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Target      *float64 `json:"target,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
}

type ChallengeParticipant struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChallengeID uuid.UUID `json:"challengeId" gorm:"type:uuid;not null;uniqueIndex:idx_challenge_participant"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_challenge_participant;index"`
	Role        string    `json:"role" gorm:"not null;default:'participant'"` // creator, participant
	JoinedAt    time.Time `json:"joinedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (cp *ChallengeParticipant) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	return nil
}

// Challenge DTOs
type CreateChallengeRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	IsPublic    bool        `json:"isPublic"`
	DailyTasks  []DailyTask `json:"dailyTasks"`
}

type CreateChallengeResponse struct {
	ChallengeID uuid.UUID `json:"challengeId"`
	InviteCode  string    `json:"inviteCode"`
}

type JoinChallengeRequest struct {
	InviteCode string `json:"inviteCode"`
}

// ChallengePreview is what an unauthenticated visitor sees for an invite code.
type ChallengePreview struct {
	Challenge
	CreatorName      string `json:"creatorName"`
	ParticipantCount int    `json:"participantCount"`
}

type ParticipantInfo struct {
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsCreator bool      `json:"isCreator"`
}
