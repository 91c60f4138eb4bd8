package mission

import (
	"time"

	"github.com/google/uuid"
)

type Period string
type Category string
type Status string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"

	CategoryWorkout   Category = "workout"
	CategoryStreak    Category = "streak"
	CategorySocial    Category = "social"
	CategoryChallenge Category = "challenge"
	CategoryNutrition Category = "nutrition"

	// UserMission status is a one-way machine: active -> completed,
	// or active -> expired. Never backwards.
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Criteria is opaque metadata interpreted by the progress trackers
// (e.g. {"metric": "calories"}). The engine only stores and forwards it.
type Criteria map[string]any

// Template is a catalog entry. Templates never carry dates; the selector
// stamps concrete windows when it instantiates a Mission from one.
type Template struct {
	Period      Period   `json:"period"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TargetValue int      `json:"target_value"`
	XPReward    int      `json:"xp_reward"`
	Criteria    Criteria `json:"criteria,omitempty"`
}

// Mission is a persisted instance of a Template for one run window.
// Immutable once inserted; end_date is exclusive.
type Mission struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Period      Period    `json:"period" db:"type"`
	Category    Category  `json:"category" db:"category"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	TargetValue int       `json:"target_value" db:"target_value"`
	XPReward    int       `json:"xp_reward" db:"xp_reward"`
	Criteria    Criteria  `json:"criteria,omitempty" db:"criteria_json"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type UserMission struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	MissionID   uuid.UUID  `json:"mission_id" db:"mission_id"`
	Progress    int        `json:"progress" db:"progress"`
	Status      Status     `json:"status" db:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	AssignedAt  time.Time  `json:"assigned_at" db:"assigned_at"`
}

// UserMissionDetail joins an assignment with its mission for the app's
// mission board.
type UserMissionDetail struct {
	UserMission
	Mission Mission `json:"mission"`
}
