package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pushTimeout = 10 * time.Second

// NotificationService stores user notifications and mirrors them to the user's
// device when a Pusher is configured.
type NotificationService struct {
	db     *gorm.DB
	log    *zap.Logger
	pusher Pusher
	wg     sync.WaitGroup
}

// NewNotificationService returns a service that only stores notifications when
// pusher is nil.
func NewNotificationService(db *gorm.DB, log *zap.Logger, pusher Pusher) *NotificationService {
	return &NotificationService{db: db, log: log, pusher: pusher}
}

// Notify stores a notification for userID and pushes it in the background.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) error {
	notif := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	var pushData map[string]string
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("encode notification metadata: %w", err)
		}
		m := string(data)
		notif.Metadata = &m

		pushData = make(map[string]string, len(metadata)+1)
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
		pushData["type"] = notifType
	}

	db := s.db.WithContext(ctx)
	if err := db.Create(&notif).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if s.pusher == nil {
		return nil
	}

	var user models.User
	err := db.Select("id", "fcm_token").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.FCMToken == "") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load device token: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := s.pusher.Push(pctx, user.FCMToken, title, body, pushData); err != nil {
			s.log.Warn("push notification failed", zap.Stringer("userId", userID), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every in-flight push has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*models.NotificationPage, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)
	page, limit, offset := pageBounds(page, limit)

	notifications := []models.Notification{}
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	var total, unread int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread).Error; err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	return &models.NotificationPage{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Page:          page,
		Limit:         limit,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
