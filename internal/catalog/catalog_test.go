package catalog

import (
	"testing"

	"rezzmoAPI/internal/types/mission"
)

func TestPoolSizes(t *testing.T) {
	for _, p := range []mission.Period{mission.PeriodDaily, mission.PeriodWeekly, mission.PeriodMonthly} {
		if got := len(ForPeriod(p)); got != 5 {
			t.Errorf("%s pool has %d templates, want 5", p, got)
		}
	}
}

func TestUnknownPeriodReturnsNil(t *testing.T) {
	if got := ForPeriod(mission.Period("hourly")); got != nil {
		t.Errorf("unknown period returned %v, want nil", got)
	}
}

func TestTemplatesAreWellFormed(t *testing.T) {
	for _, p := range []mission.Period{mission.PeriodDaily, mission.PeriodWeekly, mission.PeriodMonthly} {
		for _, tmpl := range ForPeriod(p) {
			if tmpl.Period != p {
				t.Errorf("%q: period = %s, want %s", tmpl.Title, tmpl.Period, p)
			}
			if tmpl.Title == "" || tmpl.Description == "" {
				t.Errorf("template in %s pool has empty title or description", p)
			}
			if tmpl.TargetValue <= 0 {
				t.Errorf("%q: target_value = %d, want > 0", tmpl.Title, tmpl.TargetValue)
			}
			if tmpl.XPReward <= 0 {
				t.Errorf("%q: xp_reward = %d, want > 0", tmpl.Title, tmpl.XPReward)
			}
		}
	}
}

func TestForPeriodReturnsCopies(t *testing.T) {
	a := ForPeriod(mission.PeriodDaily)
	a[0], a[1] = a[1], a[0]
	a[0].Title = "mutated"

	b := ForPeriod(mission.PeriodDaily)
	for _, tmpl := range b {
		if tmpl.Title == "mutated" {
			t.Fatal("mutating a returned slice leaked into the pool")
		}
	}
}
