package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rezzmoAPI/internal/types/mission"
	"rezzmoAPI/internal/types/notification"
	"rezzmoAPI/internal/types/profile"
)

// PgStore is the Postgres implementation of Store and NotificationStore.
type PgStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PgStore)(nil)
var _ NotificationStore = (*PgStore)(nil)

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) InsertMissions(ctx context.Context, missions []*mission.Mission) ([]*mission.Mission, error) {
	if len(missions) == 0 {
		return missions, nil
	}

	query := `
	INSERT INTO missions (id, type, category, title, description, target_value, xp_reward, criteria_json, start_date, end_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	now := time.Now()
	for _, m := range missions {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.CreatedAt = now

		var criteriaJSON []byte
		if m.Criteria != nil {
			var err error
			criteriaJSON, err = json.Marshal(m.Criteria)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal mission criteria: %w", err)
			}
		}

		batch.Queue(query,
			m.ID, m.Period, m.Category, m.Title, m.Description,
			m.TargetValue, m.XPReward, criteriaJSON, m.StartDate, m.EndDate, m.CreatedAt,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range missions {
		if _, err := results.Exec(); err != nil {
			return nil, fmt.Errorf("failed to insert missions: %w", err)
		}
	}

	return missions, nil
}

func (s *PgStore) CountMissionsInWindow(ctx context.Context, period mission.Period, start time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM missions WHERE type = $1 AND start_date = $2`
	if err := s.db.QueryRow(ctx, query, period, start).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count missions in window: %w", err)
	}
	return count, nil
}

func (s *PgStore) ListActiveUsers(ctx context.Context) ([]*profile.Profile, error) {
	query := `
	SELECT id, email, status, current_streak, longest_streak, last_workout_date, COALESCE(timezone, ''), created_at, updated_at
	FROM profiles
	WHERE status = $1
	`
	return s.queryProfiles(ctx, query, profile.StatusActive)
}

func (s *PgStore) ListAllProfiles(ctx context.Context) ([]*profile.Profile, error) {
	query := `
	SELECT id, email, status, current_streak, longest_streak, last_workout_date, COALESCE(timezone, ''), created_at, updated_at
	FROM profiles
	`
	return s.queryProfiles(ctx, query)
}

func (s *PgStore) queryProfiles(ctx context.Context, query string, args ...any) ([]*profile.Profile, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p := &profile.Profile{}
		err := rows.Scan(
			&p.ID, &p.Email, &p.Status, &p.CurrentStreak, &p.LongestStreak,
			&p.LastWorkoutDate, &p.Timezone, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	return profiles, nil
}

func (s *PgStore) InsertUserMissions(ctx context.Context, assignments []*mission.UserMission) error {
	if len(assignments) == 0 {
		return nil
	}

	query := `
	INSERT INTO user_missions (id, user_id, mission_id, progress, status, assigned_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, um := range assignments {
		if um.ID == uuid.Nil {
			um.ID = uuid.New()
		}
		batch.Queue(query, um.ID, um.UserID, um.MissionID, um.Progress, um.Status, um.AssignedAt)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range assignments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert user missions: %w", err)
		}
	}
	return nil
}

func (s *PgStore) ExpireUserMissions(ctx context.Context, before time.Time) (int64, error) {
	query := `
	UPDATE user_missions um
	SET status = $1
	FROM missions m
	WHERE um.mission_id = m.id
	  AND um.status = $2
	  AND m.end_date < $3
	`
	result, err := s.db.Exec(ctx, query, mission.StatusExpired, mission.StatusActive, before)
	if err != nil {
		return 0, fmt.Errorf("failed to expire user missions: %w", err)
	}
	return result.RowsAffected(), nil
}

func (s *PgStore) UpdateProfileStreak(ctx context.Context, userID uuid.UUID, currentStreak, longestStreak int, updatedAt time.Time) error {
	query := `
	UPDATE profiles
	SET current_streak = $2, longest_streak = $3, updated_at = $4
	WHERE id = $1
	`
	result, err := s.db.Exec(ctx, query, userID, currentStreak, longestStreak, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update streak for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

func (s *PgStore) GetUserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found for clerk_id %s", clerkID)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

func (s *PgStore) ListUserMissions(ctx context.Context, userID uuid.UUID) ([]*mission.UserMissionDetail, error) {
	query := `
	SELECT um.id, um.user_id, um.mission_id, um.progress, um.status, um.completed_at, um.assigned_at,
	       m.id, m.type, m.category, m.title, m.description, m.target_value, m.xp_reward, m.criteria_json, m.start_date, m.end_date, m.created_at
	FROM user_missions um
	JOIN missions m ON m.id = um.mission_id
	WHERE um.user_id = $1
	ORDER BY um.assigned_at DESC, m.end_date ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user missions: %w", err)
	}
	defer rows.Close()

	var details []*mission.UserMissionDetail
	for rows.Next() {
		d := &mission.UserMissionDetail{}
		var criteriaJSON []byte
		err := rows.Scan(
			&d.ID, &d.UserID, &d.MissionID, &d.Progress, &d.Status, &d.CompletedAt, &d.AssignedAt,
			&d.Mission.ID, &d.Mission.Period, &d.Mission.Category, &d.Mission.Title, &d.Mission.Description,
			&d.Mission.TargetValue, &d.Mission.XPReward, &criteriaJSON,
			&d.Mission.StartDate, &d.Mission.EndDate, &d.Mission.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user mission: %w", err)
		}
		if len(criteriaJSON) > 0 {
			json.Unmarshal(criteriaJSON, &d.Mission.Criteria)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user missions: %w", err)
	}
	return details, nil
}

func (s *PgStore) ListActiveDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	query := `
	SELECT fcm_token, COALESCE(device_type, '')
	FROM user_devices
	WHERE user_id = $1 AND is_active = true
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *PgStore) DeactivateDeviceTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	query := `UPDATE user_devices SET is_active = false, updated_at = NOW() WHERE fcm_token = ANY($1)`
	if _, err := s.db.Exec(ctx, query, tokens); err != nil {
		return fmt.Errorf("failed to deactivate device tokens: %w", err)
	}
	return nil
}

func (s *PgStore) InsertNotification(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	dataJSON, _ := json.Marshal(n.Data)

	query := `
	INSERT INTO notifications (id, user_id, type, title, body, data, is_read, sent_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Body, dataJSON, n.IsRead, n.SentAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *PgStore) UpsertDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	query := `
	INSERT INTO user_devices (id, user_id, fcm_token, device_type, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, true, NOW(), NOW())
	ON CONFLICT (fcm_token)
	DO UPDATE SET user_id = $2, device_type = $4, is_active = true, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, uuid.New(), userID, token, platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
