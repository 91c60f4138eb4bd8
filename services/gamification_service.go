package services

import (
	"context"
	"log"
	"time"

	"rezzmoAPI/internal/types/mission"
	"rezzmoAPI/middleware"
)

// MissionCounts reports the mission phase of one run.
type MissionCounts struct {
	Daily         int   `json:"daily"`
	Weekly        int   `json:"weekly"`
	Monthly       int   `json:"monthly"`
	Total         int   `json:"total"`
	UsersAssigned int   `json:"users_assigned"`
	Expired       int64 `json:"expired"`
}

// RunSummary is the result of one scheduled invocation.
type RunSummary struct {
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Missions  MissionCounts `json:"missions"`
	Streaks   *StreakStats  `json:"streaks,omitempty"`
}

// GamificationService sequences the daily cycle: mission selection per
// eligible period, assignment fan-out, expiry, then streak evaluation.
// The mission phase is fail-fast; streak evaluation tolerates per-user
// failures and only aborts if the profile fetch itself fails.
type GamificationService struct {
	missions *MissionService
	streaks  *StreakService
	store    Store
}

func NewGamificationService(store Store, missions *MissionService, streaks *StreakService) *GamificationService {
	return &GamificationService{
		missions: missions,
		streaks:  streaks,
		store:    store,
	}
}

// duePeriods reports which mission periods this tick should generate:
// daily always, weekly on Mondays, monthly on the 1st.
func duePeriods(now time.Time) []mission.Period {
	periods := []mission.Period{mission.PeriodDaily}
	if now.Weekday() == time.Monday {
		periods = append(periods, mission.PeriodWeekly)
	}
	if now.Day() == 1 {
		periods = append(periods, mission.PeriodMonthly)
	}
	return periods
}

// RunDailyCycle executes one full gamification tick at now. The caller is
// expected to invoke it at most once per scheduled slot; the per-period
// window guard below additionally makes a retried tick a no-op for
// periods that already generated.
func (g *GamificationService) RunDailyCycle(ctx context.Context, now time.Time) *RunSummary {
	summary := &RunSummary{Timestamp: now}
	log.Printf("Gamification cycle starting at %s", now.Format(time.RFC3339))

	var selected []*mission.Mission
	for _, period := range duePeriods(now) {
		start, _ := PeriodWindow(now, period)

		existing, err := g.store.CountMissionsInWindow(ctx, period, start)
		if err != nil {
			return g.fail(summary, err)
		}
		if existing > 0 {
			log.Printf("Skipping %s missions: %d already generated for window starting %s",
				period, existing, start.Format("2006-01-02"))
			continue
		}

		periodMissions := g.missions.SelectMissions(now, period)
		selected = append(selected, periodMissions...)

		n := len(periodMissions)
		switch period {
		case mission.PeriodDaily:
			summary.Missions.Daily = n
		case mission.PeriodWeekly:
			summary.Missions.Weekly = n
		case mission.PeriodMonthly:
			summary.Missions.Monthly = n
		}
		middleware.MissionsGenerated.WithLabelValues(string(period)).Add(float64(n))
	}
	summary.Missions.Total = len(selected)

	if len(selected) > 0 {
		users, err := g.missions.AssignMissions(ctx, selected, now)
		if err != nil {
			return g.fail(summary, err)
		}
		summary.Missions.UsersAssigned = users
		middleware.UserMissionsAssigned.Add(float64(users * len(selected)))
	}

	// Expiry runs every tick, missions generated or not.
	expired, err := g.missions.ExpireMissions(ctx, now)
	if err != nil {
		return g.fail(summary, err)
	}
	summary.Missions.Expired = expired
	middleware.UserMissionsExpired.Add(float64(expired))

	stats, err := g.streaks.EvaluateAll(ctx, now)
	if err != nil {
		return g.fail(summary, err)
	}
	summary.Streaks = stats
	observeStreakStats(stats)

	summary.Success = true
	log.Printf("Gamification cycle complete: %d missions, %d users assigned, %d expired, %d streaks broken",
		summary.Missions.Total, summary.Missions.UsersAssigned, summary.Missions.Expired, stats.Broken)
	return summary
}

// RunStreakCycle evaluates streaks only, for deployments that schedule the
// streak pass separately from mission generation.
func (g *GamificationService) RunStreakCycle(ctx context.Context, now time.Time) *RunSummary {
	summary := &RunSummary{Timestamp: now}

	stats, err := g.streaks.EvaluateAll(ctx, now)
	if err != nil {
		return g.fail(summary, err)
	}
	summary.Streaks = stats
	observeStreakStats(stats)

	summary.Success = true
	return summary
}

func (g *GamificationService) fail(summary *RunSummary, err error) *RunSummary {
	log.Printf("Gamification cycle aborted: %v", err)
	summary.Success = false
	summary.Error = err.Error()
	return summary
}

func observeStreakStats(stats *StreakStats) {
	middleware.StreakTransitions.WithLabelValues("maintained").Add(float64(stats.Maintained))
	middleware.StreakTransitions.WithLabelValues("incremented").Add(float64(stats.Incremented))
	middleware.StreakTransitions.WithLabelValues("broken").Add(float64(stats.Broken))
}
