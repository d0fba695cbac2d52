package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/gringo-delivery/backend/internal/apperrors"
)

// Sender is the push delivery contract consumed by the notification service.
// Both methods are fire-and-forget from the service's perspective: errors
// come back so they can be logged and counted, never propagated further.
type Sender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
	SendCallStylePush(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMSender implements Sender over Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender creates a new FCMSender
func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

// SendPush sends a standard device notification
func (s *FCMSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("%w: push token is empty", apperrors.ErrValidation)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: fcm send: %v", apperrors.ErrUpstream, err)
	}
	return nil
}

// SendCallStylePush sends a full-screen-intent notification modeled like an
// incoming call: data-only payload at high priority so the app can render
// its own ringing screen even in the background.
func (s *FCMSender) SendCallStylePush(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("%w: fcm token is empty", apperrors.ErrValidation)
	}

	payload := map[string]string{
		"title":            title,
		"body":             body,
		"fullScreenIntent": "true",
	}
	for k, v := range data {
		payload[k] = v
	}

	msg := &messaging.Message{
		Token: token,
		Data:  payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Category:         "INCOMING_CALL",
				},
			},
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: fcm call-style send: %v", apperrors.ErrUpstream, err)
	}
	return nil
}
