package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rezzmoAPI/internal/types/notification"
)

// PushProvider sends one intent's worth of pushes to a set of device
// tokens and reports which tokens the provider considers dead.
// internal/notification.FCMService is the real implementation.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) (invalidTokens []string, err error)
}

// NotificationService is the Notifier collaborator: it owns token lookup,
// provider calls, invalid-token pruning and the audit log. Callers hand it
// an intent and walk away.
type NotificationService struct {
	store NotificationStore
	push  PushProvider
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// SetPushProvider injects the FCM client from main. Without a provider the
// service still records audit rows, so the app's in-app inbox keeps working
// when FCM credentials are absent.
func (s *NotificationService) SetPushProvider(push PushProvider) {
	s.push = push
}

func (s *NotificationService) Notify(ctx context.Context, intent *notification.PushIntent) error {
	tokens, err := s.store.ListActiveDeviceTokens(ctx, intent.UserID)
	if err != nil {
		return fmt.Errorf("device token fetch failed: %w", err)
	}

	var pushErr error
	if s.push != nil && len(tokens) > 0 {
		invalid, err := s.push.SendPush(ctx, tokens, intent.Title, intent.Body, intent.Data)
		pushErr = err

		// A token reported unregistered is dead for good; deactivate it so
		// the next send does not waste a call on it.
		if len(invalid) > 0 {
			if derr := s.store.DeactivateDeviceTokens(ctx, invalid); derr != nil {
				log.Printf("Failed to deactivate %d invalid tokens: %v", len(invalid), derr)
			} else {
				log.Printf("Deactivated %d invalid tokens for user %s", len(invalid), intent.UserID)
			}
		}
	}

	audit := &notification.Notification{
		UserID: intent.UserID,
		Type:   intent.Type,
		Title:  intent.Title,
		Body:   intent.Body,
		Data:   intent.Data,
		IsRead: false,
		SentAt: time.Now(),
	}
	if err := s.store.InsertNotification(ctx, audit); err != nil {
		log.Printf("Failed to record notification for user %s: %v", intent.UserID, err)
	}

	if pushErr != nil {
		return fmt.Errorf("push delivery failed: %w", pushErr)
	}
	return nil
}

// RegisterDevice upserts an FCM token for the calling user.
func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req notification.RegisterDeviceRequest) error {
	userID, err := s.store.GetUserIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.store.UpsertDeviceToken(ctx, userID, req.Token, req.Platform)
}
