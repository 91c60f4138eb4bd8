package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeStreakReminder    Type = "streak_reminder"
	TypeMissionCompleted  Type = "mission_completed"
	TypeBadgeUnlocked     Type = "badge_unlocked"
	TypeChallengeInvite   Type = "challenge_invite"
	TypeSocialInteraction Type = "social_interaction"
)

// DeviceToken is one registered FCM token for a user.
type DeviceToken struct {
	Token    string `json:"token" db:"fcm_token"`
	Platform string `json:"platform" db:"device_type"` // "ios" or "android"
}

// PushIntent is what the engine hands to the Notifier. It says nothing
// about delivery; tokens, retries and pruning are the Notifier's problem.
type PushIntent struct {
	UserID uuid.UUID      `json:"user_id"`
	Type   Type           `json:"type"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// Notification is the persisted audit record of a dispatched push.
type Notification struct {
	ID     uuid.UUID      `json:"id" db:"id"`
	UserID uuid.UUID      `json:"user_id" db:"user_id"`
	Type   Type           `json:"type" db:"type"`
	Title  string         `json:"title" db:"title"`
	Body   string         `json:"body" db:"body"`
	Data   map[string]any `json:"data,omitempty" db:"data"`
	IsRead bool           `json:"is_read" db:"is_read"`
	SentAt time.Time      `json:"sent_at" db:"sent_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
