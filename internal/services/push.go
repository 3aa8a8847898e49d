package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Pusher delivers one push message to a device token.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMPusher sends push notifications through Firebase Cloud Messaging.
type FCMPusher struct {
	client *messaging.Client
}

// InitPush builds an FCMPusher from a service account file. It returns nil when no
// account is configured or Firebase cannot be initialised; push is then disabled and
// notifications are only stored.
func InitPush(ctx context.Context, serviceAccountPath string, log *zap.Logger) *FCMPusher {
	if serviceAccountPath == "" {
		log.Info("fcm: no service account configured, push notifications disabled")
		return nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Warn("fcm: failed to initialize firebase app", zap.Error(err))
		return nil
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warn("fcm: failed to get messaging client", zap.Error(err))
		return nil
	}

	log.Info("fcm: push notifications enabled")
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := p.client.Send(ctx, msg)
	return err
}
