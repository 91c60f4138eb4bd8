package helpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL must be set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestDB removes rows created by SeedTestProfile runs
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM profiles WHERE email LIKE 'test%@example.com'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	_, err = pool.Exec(ctx, "DELETE FROM missions WHERE created_at < NOW() AND title LIKE '[test]%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test missions: %v", err)
	}
	pool.Close()
}

// SeedTestProfile inserts an active profile with the given streak state and
// returns its id
func SeedTestProfile(t *testing.T, pool *pgxpool.Pool, currentStreak, longestStreak int, lastWorkout *time.Time, timezone string) uuid.UUID {
	ctx := context.Background()
	id := uuid.New()

	query := `
	INSERT INTO profiles (id, email, status, current_streak, longest_streak, last_workout_date, timezone, created_at, updated_at)
	VALUES ($1, $2, 'active', $3, $4, $5, $6, NOW(), NOW())
	`
	email := "test_" + id.String()[:8] + "@example.com"
	_, err := pool.Exec(ctx, query, id, email, currentStreak, longestStreak, lastWorkout, timezone)
	if err != nil {
		t.Fatalf("Failed to seed test profile: %v", err)
	}
	return id
}
