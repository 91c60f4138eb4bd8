package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rezzmoAPI/internal/types/mission"
	"rezzmoAPI/internal/types/notification"
	"rezzmoAPI/internal/types/profile"
)

// Store is the persistence surface the gamification engine needs.
// PgStore implements it against Postgres; tests use an in-memory fake.
type Store interface {
	// InsertMissions persists the missions and returns them with their
	// generated identities filled in.
	InsertMissions(ctx context.Context, missions []*mission.Mission) ([]*mission.Mission, error)
	// CountMissionsInWindow reports how many missions of the period already
	// start at the given window start. Used as the re-run guard.
	CountMissionsInWindow(ctx context.Context, period mission.Period, start time.Time) (int, error)
	ListActiveUsers(ctx context.Context) ([]*profile.Profile, error)
	InsertUserMissions(ctx context.Context, assignments []*mission.UserMission) error
	// ExpireUserMissions flips every active assignment whose mission window
	// ended strictly before the cutoff to expired, returning the row count.
	ExpireUserMissions(ctx context.Context, before time.Time) (int64, error)
	ListAllProfiles(ctx context.Context) ([]*profile.Profile, error)
	UpdateProfileStreak(ctx context.Context, userID uuid.UUID, currentStreak, longestStreak int, updatedAt time.Time) error

	GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error)
	ListUserMissions(ctx context.Context, userID uuid.UUID) ([]*mission.UserMissionDetail, error)
}

// NotificationStore is the slice of persistence the Notifier needs:
// the device registry and the notification audit log.
type NotificationStore interface {
	ListActiveDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
	DeactivateDeviceTokens(ctx context.Context, tokens []string) error
	InsertNotification(ctx context.Context, n *notification.Notification) error
	UpsertDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error
	GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error)
}
