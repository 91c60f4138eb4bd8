package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"rezzmoAPI/internal/types/mission"
)

func newTestCycle(store *memStore) (*GamificationService, *NotificationDispatcher) {
	notifier := &recordingNotifier{}
	d := NewNotificationDispatcher(notifier)
	missions := NewMissionService(store, rand.New(rand.NewSource(7)))
	streaks := NewStreakService(store, d)
	return NewGamificationService(store, missions, streaks), d
}

func TestRunDailyCycleWeekdayGeneratesDailyOnly(t *testing.T) {
	store := newMemStore()
	store.profiles = append(store.profiles, testProfile(0, 0, nil, "UTC"))
	svc, d := newTestCycle(store)

	// a plain Wednesday, mid-month
	now := time.Date(2025, time.June, 11, 0, 5, 0, 0, time.UTC)
	summary := svc.RunDailyCycle(context.Background(), now)
	d.Stop()

	if !summary.Success {
		t.Fatalf("cycle failed: %s", summary.Error)
	}
	if summary.Missions.Daily != 3 || summary.Missions.Weekly != 0 || summary.Missions.Monthly != 0 {
		t.Errorf("daily=%d weekly=%d monthly=%d, want 3/0/0",
			summary.Missions.Daily, summary.Missions.Weekly, summary.Missions.Monthly)
	}
	if summary.Missions.Total != 3 {
		t.Errorf("total = %d, want 3", summary.Missions.Total)
	}
	if summary.Streaks == nil {
		t.Fatal("summary is missing streak stats")
	}
}

func TestRunDailyCycleMondayFirstOfMonthGeneratesAllPeriods(t *testing.T) {
	store := newMemStore()
	store.profiles = append(store.profiles, testProfile(0, 0, nil, "UTC"))
	svc, d := newTestCycle(store)

	// 1 Sep 2025 is a Monday and the 1st: all three periods in one run
	now := time.Date(2025, time.September, 1, 0, 5, 0, 0, time.UTC)
	summary := svc.RunDailyCycle(context.Background(), now)
	d.Stop()

	if !summary.Success {
		t.Fatalf("cycle failed: %s", summary.Error)
	}
	if summary.Missions.Daily != 3 || summary.Missions.Weekly != 3 || summary.Missions.Monthly != 2 {
		t.Errorf("daily=%d weekly=%d monthly=%d, want 3/3/2",
			summary.Missions.Daily, summary.Missions.Weekly, summary.Missions.Monthly)
	}
	if summary.Missions.Total != 8 {
		t.Errorf("total = %d, want 8", summary.Missions.Total)
	}
	if summary.Missions.UsersAssigned != 1 {
		t.Errorf("users assigned = %d, want 1", summary.Missions.UsersAssigned)
	}
	if len(store.userMissions) != 8 {
		t.Errorf("assignment rows = %d, want 8", len(store.userMissions))
	}
}

func TestRunDailyCycleRetrySkipsGeneratedPeriods(t *testing.T) {
	store := newMemStore()
	store.profiles = append(store.profiles, testProfile(0, 0, nil, "UTC"))
	svc, d := newTestCycle(store)
	defer d.Stop()

	now := time.Date(2025, time.June, 11, 0, 5, 0, 0, time.UTC)

	first := svc.RunDailyCycle(context.Background(), now)
	if !first.Success {
		t.Fatalf("first run failed: %s", first.Error)
	}

	// retried tick in the same window must not double-insert
	second := svc.RunDailyCycle(context.Background(), now.Add(10*time.Minute))
	if !second.Success {
		t.Fatalf("second run failed: %s", second.Error)
	}
	if second.Missions.Total != 0 {
		t.Errorf("retried run generated %d missions, want 0", second.Missions.Total)
	}
	if len(store.missions) != 3 {
		t.Errorf("store holds %d missions after retry, want 3", len(store.missions))
	}
	if len(store.userMissions) != 3 {
		t.Errorf("store holds %d assignments after retry, want 3", len(store.userMissions))
	}
}

func TestRunDailyCycleAssignmentFailureIsFatal(t *testing.T) {
	store := newMemStore()
	store.profiles = append(store.profiles, testProfile(0, 0, nil, "UTC"))
	store.insertUserMissionsErr = errors.New("connection reset")
	svc, d := newTestCycle(store)
	defer d.Stop()

	now := time.Date(2025, time.June, 11, 0, 5, 0, 0, time.UTC)
	summary := svc.RunDailyCycle(context.Background(), now)

	if summary.Success {
		t.Fatal("cycle reported success despite assignment failure")
	}
	if summary.Error == "" {
		t.Error("summary is missing the error message")
	}
	// fail-fast: streak evaluation never ran
	if summary.Streaks != nil {
		t.Error("streak phase ran after a fatal mission-phase error")
	}
}

func TestRunDailyCycleExpiryRunsWithoutNewMissions(t *testing.T) {
	store := newMemStore()
	store.profiles = append(store.profiles, testProfile(0, 0, nil, "UTC"))
	svc, d := newTestCycle(store)
	defer d.Stop()

	day1 := time.Date(2025, time.June, 11, 0, 5, 0, 0, time.UTC)
	if s := svc.RunDailyCycle(context.Background(), day1); !s.Success {
		t.Fatalf("day1 run failed: %s", s.Error)
	}

	// same-window retry: generation is skipped but expiry still sweeps.
	// Nothing has ended yet, so 0 expired.
	retry := svc.RunDailyCycle(context.Background(), day1.Add(time.Hour))
	if retry.Missions.Expired != 0 {
		t.Errorf("retry expired %d, want 0", retry.Missions.Expired)
	}

	// two days later the daily window has elapsed
	day3 := day1.AddDate(0, 0, 2)
	summary := svc.RunDailyCycle(context.Background(), day3)
	if !summary.Success {
		t.Fatalf("day3 run failed: %s", summary.Error)
	}
	if summary.Missions.Expired != 3 {
		t.Errorf("expired = %d, want 3", summary.Missions.Expired)
	}
}

func TestRunStreakCycleIndependent(t *testing.T) {
	store := newMemStore()
	broken := testProfile(6, 6, timePtr(time.Date(2025, time.June, 8, 9, 0, 0, 0, time.UTC)), "UTC")
	store.profiles = append(store.profiles, broken)
	svc, d := newTestCycle(store)

	now := time.Date(2025, time.June, 11, 12, 0, 0, 0, time.UTC)
	summary := svc.RunStreakCycle(context.Background(), now)
	d.Stop()

	if !summary.Success {
		t.Fatalf("streak cycle failed: %s", summary.Error)
	}
	if summary.Streaks.Broken != 1 {
		t.Errorf("broken = %d, want 1", summary.Streaks.Broken)
	}
	// missions untouched
	if summary.Missions.Total != 0 || len(store.missions) != 0 {
		t.Error("streak cycle generated missions")
	}
}

func TestRunStreakCycleProfileFetchFailure(t *testing.T) {
	store := newMemStore()
	store.listProfilesErr = errors.New("relation does not exist")
	svc, d := newTestCycle(store)
	defer d.Stop()

	summary := svc.RunStreakCycle(context.Background(), time.Now().UTC())
	if summary.Success {
		t.Fatal("streak cycle reported success despite fetch failure")
	}
	if summary.Error == "" {
		t.Error("summary is missing the error message")
	}
}

func TestDuePeriods(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want []mission.Period
	}{
		{
			"plain weekday",
			time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), // Wednesday the 11th
			[]mission.Period{mission.PeriodDaily},
		},
		{
			"monday",
			time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
			[]mission.Period{mission.PeriodDaily, mission.PeriodWeekly},
		},
		{
			"first of month",
			time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), // a Tuesday
			[]mission.Period{mission.PeriodDaily, mission.PeriodMonthly},
		},
		{
			"monday the first",
			time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
			[]mission.Period{mission.PeriodDaily, mission.PeriodWeekly, mission.PeriodMonthly},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := duePeriods(tc.now)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
