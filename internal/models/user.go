package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Password    string         `json:"-"`
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	AvatarURL   string         `json:"avatarUrl"`
	FCMToken    string         `json:"-" gorm:"column:fcm_token"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Summary resolves the profile fields other users may see.
func (u *User) Summary() UserSummary {
	s := UserSummary{ID: u.ID}
	switch {
	case u.DisplayName != "":
		s.DisplayName = &u.DisplayName
	case u.Name != "":
		s.DisplayName = &u.Name
	}
	if u.Email != "" {
		s.ContactID = &u.Email
	}
	return s
}

// UserSummary is the public view of a user. Both fields are optional.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName *string   `json:"displayName,omitempty"`
	ContactID   *string   `json:"contactId,omitempty"`
}

// Name returns the display name, then the contact id, then fallback.
func (s UserSummary) Name(fallback string) string {
	if s.DisplayName != nil && *s.DisplayName != "" {
		return *s.DisplayName
	}
	if s.ContactID != nil && *s.ContactID != "" {
		return *s.ContactID
	}
	return fallback
}

// Auth DTOs
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	Name        *string `json:"name"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
