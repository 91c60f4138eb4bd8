package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rezzmoAPI/internal/types/mission"
	"rezzmoAPI/internal/types/notification"
	"rezzmoAPI/internal/types/profile"
)

// memStore is an in-memory Store/NotificationStore for deterministic tests.
type memStore struct {
	mu sync.Mutex

	missions      []*mission.Mission
	userMissions  []*mission.UserMission
	profiles      []*profile.Profile
	tokens        map[uuid.UUID][]notification.DeviceToken
	deactivated   []string
	notifications []*notification.Notification
	clerkIDs      map[string]uuid.UUID

	insertMissionsErr     error
	listActiveErr         error
	insertUserMissionsErr error
	listProfilesErr       error
	// per-user streak update failure injection
	failStreakUpdateFor map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		tokens:              make(map[uuid.UUID][]notification.DeviceToken),
		clerkIDs:            make(map[string]uuid.UUID),
		failStreakUpdateFor: make(map[uuid.UUID]bool),
	}
}

func (s *memStore) InsertMissions(ctx context.Context, missions []*mission.Mission) ([]*mission.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertMissionsErr != nil {
		return nil, s.insertMissionsErr
	}
	for _, m := range missions {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		s.missions = append(s.missions, m)
	}
	return missions, nil
}

func (s *memStore) CountMissionsInWindow(ctx context.Context, period mission.Period, start time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.missions {
		if m.Period == period && m.StartDate.Equal(start) {
			count++
		}
	}
	return count, nil
}

func (s *memStore) ListActiveUsers(ctx context.Context) ([]*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listActiveErr != nil {
		return nil, s.listActiveErr
	}
	var active []*profile.Profile
	for _, p := range s.profiles {
		if p.Status == profile.StatusActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *memStore) InsertUserMissions(ctx context.Context, assignments []*mission.UserMission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertUserMissionsErr != nil {
		return s.insertUserMissionsErr
	}
	s.userMissions = append(s.userMissions, assignments...)
	return nil
}

func (s *memStore) ExpireUserMissions(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ends := make(map[uuid.UUID]time.Time, len(s.missions))
	for _, m := range s.missions {
		ends[m.ID] = m.EndDate
	}

	var count int64
	for _, um := range s.userMissions {
		end, ok := ends[um.MissionID]
		if ok && um.Status == mission.StatusActive && end.Before(before) {
			um.Status = mission.StatusExpired
			count++
		}
	}
	return count, nil
}

func (s *memStore) ListAllProfiles(ctx context.Context) ([]*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listProfilesErr != nil {
		return nil, s.listProfilesErr
	}
	out := make([]*profile.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out, nil
}

func (s *memStore) UpdateProfileStreak(ctx context.Context, userID uuid.UUID, currentStreak, longestStreak int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStreakUpdateFor[userID] {
		return fmt.Errorf("injected update failure for %s", userID)
	}
	for _, p := range s.profiles {
		if p.ID == userID {
			p.CurrentStreak = currentStreak
			p.LongestStreak = longestStreak
			p.UpdatedAt = updatedAt
			return nil
		}
	}
	return fmt.Errorf("profile %s not found", userID)
}

func (s *memStore) GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.clerkIDs[clerkID]
	if !ok {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s", clerkID)
	}
	return id, nil
}

func (s *memStore) ListUserMissions(ctx context.Context, userID uuid.UUID) ([]*mission.UserMissionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[uuid.UUID]*mission.Mission, len(s.missions))
	for _, m := range s.missions {
		byID[m.ID] = m
	}

	var details []*mission.UserMissionDetail
	for _, um := range s.userMissions {
		if um.UserID != userID {
			continue
		}
		d := &mission.UserMissionDetail{UserMission: *um}
		if m, ok := byID[um.MissionID]; ok {
			d.Mission = *m
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *memStore) ListActiveDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID], nil
}

func (s *memStore) DeactivateDeviceTokens(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivated = append(s.deactivated, tokens...)
	return nil
}

func (s *memStore) InsertNotification(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *memStore) UpsertDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tokens[userID] {
		if t.Token == token {
			s.tokens[userID][i].Platform = platform
			return nil
		}
	}
	s.tokens[userID] = append(s.tokens[userID], notification.DeviceToken{Token: token, Platform: platform})
	return nil
}

// recordingNotifier captures intents instead of delivering them.
type recordingNotifier struct {
	mu      sync.Mutex
	intents []*notification.PushIntent
	err     error
}

func (n *recordingNotifier) Notify(ctx context.Context, intent *notification.PushIntent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.intents = append(n.intents, intent)
	return nil
}

func (n *recordingNotifier) recorded() []*notification.PushIntent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*notification.PushIntent, len(n.intents))
	copy(out, n.intents)
	return out
}

// fakePushProvider stands in for FCM in Notifier tests.
type fakePushProvider struct {
	invalid []string
	err     error
	sentTo  [][]notification.DeviceToken
}

func (p *fakePushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) ([]string, error) {
	p.sentTo = append(p.sentTo, tokens)
	return p.invalid, p.err
}

func testProfile(streak, longest int, lastWorkout *time.Time, tz string) *profile.Profile {
	return &profile.Profile{
		ID:              uuid.New(),
		Email:           "test@example.com",
		Status:          profile.StatusActive,
		CurrentStreak:   streak,
		LongestStreak:   longest,
		LastWorkoutDate: lastWorkout,
		Timezone:        tz,
	}
}

func timePtr(t time.Time) *time.Time { return &t }
