package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"rezzmoAPI/internal/types/notification"
	"rezzmoAPI/internal/types/profile"
)

type StreakTransition string

const (
	StreakMaintained  StreakTransition = "maintained"
	StreakIncremented StreakTransition = "incremented"
	StreakBroken      StreakTransition = "broken"
)

// StreakStats summarizes one evaluation pass over all profiles.
type StreakStats struct {
	TotalUsers      int `json:"total_users"`
	Maintained      int `json:"streaks_maintained"`
	Incremented     int `json:"streaks_incremented"`
	Broken          int `json:"streaks_broken"`
	Updated         int `json:"total_updated"`
	Failed          int `json:"update_failures"`
	RemindersQueued int `json:"reminders_queued"`
}

// StreakService recomputes every user's workout streak once per tick.
// Users are independent, so evaluation runs on a small worker pool; a
// failed update for one user is logged and skipped, never fatal.
type StreakService struct {
	store      Store
	dispatcher *NotificationDispatcher
	workers    int
}

func NewStreakService(store Store, dispatcher *NotificationDispatcher) *StreakService {
	return &StreakService{
		store:      store,
		dispatcher: dispatcher,
		workers:    5, // matches the pool's connection headroom
	}
}

// EvaluateStreak applies the streak state machine to p in place and
// reports the transition taken. Deterministic given (profile, now).
//
//	worked out today      -> maintained, streak unchanged
//	worked out yesterday  -> incremented
//	older than yesterday,
//	or never              -> broken, streak reset to 0
//
// Days are counted between local midnights in the user's timezone,
// falling back to UTC when the IANA name does not resolve. The
// midnight-to-midnight span is 23h or 25h on DST transition days, so
// the quotient is rounded, never truncated.
func EvaluateStreak(now time.Time, p *profile.Profile) StreakTransition {
	loc := time.UTC
	if p.Timezone != "" {
		if l, err := time.LoadLocation(p.Timezone); err == nil {
			loc = l
		}
	}

	localNow := now.In(loc)
	y, m, d := localNow.Date()
	localMidnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	daysSince := -1 // sentinel: never worked out
	if p.LastWorkoutDate != nil {
		lw := p.LastWorkoutDate.In(loc)
		ly, lm, ld := lw.Date()
		lastMidnight := time.Date(ly, lm, ld, 0, 0, 0, 0, loc)
		daysSince = int(math.Round(localMidnight.Sub(lastMidnight).Hours() / 24))
	}

	var transition StreakTransition
	switch {
	case p.LastWorkoutDate != nil && daysSince <= 0:
		transition = StreakMaintained
	case daysSince == 1:
		transition = StreakIncremented
		p.CurrentStreak++
	default:
		transition = StreakBroken
		p.CurrentStreak = 0
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	return transition
}

// EvaluateAll runs the state machine over every profile and persists the
// result, queueing a streak reminder for each user who just lost a
// nonzero streak. Only the initial profile fetch can fail the pass.
func (s *StreakService) EvaluateAll(ctx context.Context, now time.Time) (*StreakStats, error) {
	profiles, err := s.store.ListAllProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}

	stats := &StreakStats{TotalUsers: len(profiles)}
	if len(profiles) == 0 {
		return stats, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan *profile.Profile)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				s.evaluateOne(ctx, now, p, stats, &mu)
			}
		}()
	}

	for _, p := range profiles {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	log.Printf("Streak evaluation: %d users, %d maintained, %d incremented, %d broken, %d failed",
		stats.TotalUsers, stats.Maintained, stats.Incremented, stats.Broken, stats.Failed)
	return stats, nil
}

func (s *StreakService) evaluateOne(ctx context.Context, now time.Time, p *profile.Profile, stats *StreakStats, mu *sync.Mutex) {
	priorStreak := p.CurrentStreak
	transition := EvaluateStreak(now, p)

	// Persist even on maintain so updated_at reflects the pass.
	if err := s.store.UpdateProfileStreak(ctx, p.ID, p.CurrentStreak, p.LongestStreak, now); err != nil {
		log.Printf("Streak update failed for user %s: %v", p.ID, err)
		mu.Lock()
		stats.Failed++
		mu.Unlock()
		return
	}

	notified := false
	if transition == StreakBroken && priorStreak > 0 {
		notified = s.dispatcher.Enqueue(streakReminderIntent(p, priorStreak))
	}

	mu.Lock()
	defer mu.Unlock()
	stats.Updated++
	switch transition {
	case StreakMaintained:
		stats.Maintained++
	case StreakIncremented:
		stats.Incremented++
	case StreakBroken:
		stats.Broken++
	}
	if notified {
		stats.RemindersQueued++
	}
}

// streakReminderIntent builds the push for a user whose streak just broke.
// References the pre-break length: that is the number they lost.
func streakReminderIntent(p *profile.Profile, lostStreak int) *notification.PushIntent {
	return &notification.PushIntent{
		UserID: p.ID,
		Type:   notification.TypeStreakReminder,
		Title:  fmt.Sprintf("Don't lose your %d-day streak!", lostStreak),
		Body:   "Complete a quick workout to keep your streak alive.",
		Data: map[string]any{
			"type":           string(notification.TypeStreakReminder),
			"current_streak": lostStreak,
		},
	}
}
