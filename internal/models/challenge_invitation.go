package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type ChallengeInvitation struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ChallengeID uuid.UUID  `json:"challengeId" gorm:"type:uuid;index;not null"`
	InvitedBy   uuid.UUID  `json:"invitedBy" gorm:"type:uuid;not null"`
	InvitedUser uuid.UUID  `json:"invitedUser" gorm:"type:uuid;index;not null"`
	Status      string     `json:"status" gorm:"not null;default:'pending'"` // pending, accepted, declined
	SentAt      time.Time  `json:"sentAt"`
	RespondedAt *time.Time `json:"respondedAt"`
}

func (ci *ChallengeInvitation) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	if ci.Status == "" {
		ci.Status = InvitationPending
	}
	return nil
}

type InviteUserRequest struct {
	UserID uuid.UUID `json:"userId"`
}

type RespondInvitationRequest struct {
	Accept bool `json:"accept"`
}

// PendingInvitation is an invitation joined with what the invitee needs to decide.
type PendingInvitation struct {
	ChallengeInvitation
	Challenge   Challenge `json:"challenge"`
	InviterName string    `json:"inviterName"`
}
