package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationChallengeInvite    = "challenge_invite"
	NotificationInvitationAccepted = "invitation_accepted"
	NotificationInvitationDeclined = "invitation_declined"
	NotificationParticipantRemoved = "participant_removed"
	NotificationParticipantJoined  = "participant_joined"
)

type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Type      string    `json:"type" gorm:"not null"`
	Title     string    `json:"title" gorm:"not null"`
	Body      string    `json:"body"`
	Read      bool      `json:"read" gorm:"default:false"`
	Metadata  *string   `json:"metadata"` // JSON string for navigation context (challengeId, invitationId)
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Unread        int64          `json:"unread"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}
