package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityMemberJoined       = "member_joined"
	ActivityMemberLeft         = "member_left"
	ActivityMemberRemoved      = "member_removed"
	ActivityTaskCompleted      = "task_completed"
	ActivityInvitationAccepted = "invitation_accepted"
)

type ChallengeActivity struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ChallengeID uuid.UUID  `json:"challengeId" gorm:"type:uuid;index;not null"`
	UserID      uuid.UUID  `json:"userId" gorm:"type:uuid;not null"`
	ActionType  string     `json:"actionType" gorm:"not null"`
	TargetID    *uuid.UUID `json:"targetId" gorm:"type:uuid"` // removed user, completed task's progress record
	Metadata    *string    `json:"metadata"`                  // JSON string for extra context
	CreatedAt   time.Time  `json:"createdAt"`
}

func (a *ChallengeActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ActivityPage struct {
	Activities []ChallengeActivity `json:"activities"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}
