package profile

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Profile is the slice of a user the gamification engine cares about.
// Streak fields are mutated only by the streak evaluator;
// last_workout_date is written by the workout recording flow.
type Profile struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Status          Status     `json:"status" db:"status"`
	CurrentStreak   int        `json:"current_streak" db:"current_streak"`
	LongestStreak   int        `json:"longest_streak" db:"longest_streak"`
	LastWorkoutDate *time.Time `json:"last_workout_date,omitempty" db:"last_workout_date"`
	Timezone        string     `json:"timezone" db:"timezone"` // IANA name, "" means UTC
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
