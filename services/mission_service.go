package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"rezzmoAPI/internal/catalog"
	"rezzmoAPI/internal/types/mission"
)

// How many missions each run draws from a period's pool.
var selectionSize = map[mission.Period]int{
	mission.PeriodDaily:   3,
	mission.PeriodWeekly:  3,
	mission.PeriodMonthly: 2,
}

// MissionService owns the mission lifecycle: selecting templates into
// concrete windowed missions, fanning them out to active users, and
// expiring assignments whose window has elapsed.
type MissionService struct {
	store Store
	rng   *rand.Rand
}

// NewMissionService builds the service. The rand source is injectable so
// tests can pin exact selections; pass nil for time-seeded production use.
func NewMissionService(store Store, rng *rand.Rand) *MissionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MissionService{store: store, rng: rng}
}

// PeriodWindow computes the mission window for a period anchored at now:
// start is midnight of now's day in now's location, end is exclusive.
func PeriodWindow(now time.Time, period mission.Period) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch period {
	case mission.PeriodWeekly:
		end = start.AddDate(0, 0, 7)
	case mission.PeriodMonthly:
		end = addCalendarMonth(start)
	default:
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}

// addCalendarMonth is AddDate(0, 1, 0) with short-month clamping instead of
// normalization: Jan 31 + 1 month is Feb 28 (or 29), not Mar 2.
func addCalendarMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfNext := time.Date(y, m+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// SelectMissions draws a bounded random subset of the period's catalog and
// stamps concrete windows. Pure with respect to persistence; no identities
// are assigned here.
func (s *MissionService) SelectMissions(now time.Time, period mission.Period) []*mission.Mission {
	pool := catalog.ForPeriod(period)
	if len(pool) == 0 {
		return nil
	}

	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	count := selectionSize[period]
	if count > len(pool) {
		count = len(pool)
	}

	start, end := PeriodWindow(now, period)

	missions := make([]*mission.Mission, 0, count)
	for _, tmpl := range pool[:count] {
		missions = append(missions, &mission.Mission{
			Period:      tmpl.Period,
			Category:    tmpl.Category,
			Title:       tmpl.Title,
			Description: tmpl.Description,
			TargetValue: tmpl.TargetValue,
			XPReward:    tmpl.XPReward,
			Criteria:    tmpl.Criteria,
			StartDate:   start,
			EndDate:     end,
		})
	}
	return missions
}

// AssignMissions persists the missions, then creates one assignment per
// (active user, mission) pair. Returns the number of users reached.
// Any store failure aborts the whole mission phase; a retried tick can
// leave missions without assignments, which is why the orchestrator's
// run guard checks the window before selecting again.
func (s *MissionService) AssignMissions(ctx context.Context, missions []*mission.Mission, now time.Time) (int, error) {
	if len(missions) == 0 {
		return 0, nil
	}

	inserted, err := s.store.InsertMissions(ctx, missions)
	if err != nil {
		return 0, fmt.Errorf("mission insert failed: %w", err)
	}

	users, err := s.store.ListActiveUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("active user fetch failed: %w", err)
	}
	if len(users) == 0 {
		log.Println("Mission assignment: no active users")
		return 0, nil
	}

	assignments := make([]*mission.UserMission, 0, len(users)*len(inserted))
	for _, u := range users {
		for _, m := range inserted {
			assignments = append(assignments, &mission.UserMission{
				ID:         uuid.New(),
				UserID:     u.ID,
				MissionID:  m.ID,
				Progress:   0,
				Status:     mission.StatusActive,
				AssignedAt: now,
			})
		}
	}

	if err := s.store.InsertUserMissions(ctx, assignments); err != nil {
		return 0, fmt.Errorf("assignment insert failed: %w", err)
	}

	log.Printf("Mission assignment: %d missions to %d users (%d rows)", len(inserted), len(users), len(assignments))
	return len(users), nil
}

// ExpireMissions transitions every active assignment whose window ended
// before now. State-based, so re-running it is a no-op.
func (s *MissionService) ExpireMissions(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.store.ExpireUserMissions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mission expiry failed: %w", err)
	}
	if count > 0 {
		log.Printf("Mission expiry: %d assignments expired", count)
	}
	return count, nil
}

// GetUserMissions returns the caller's mission board.
func (s *MissionService) GetUserMissions(ctx context.Context, clerkID string) ([]*mission.UserMissionDetail, error) {
	userID, err := s.store.GetUserIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.ListUserMissions(ctx, userID)
}
