// Package catalog holds the static mission template pools the selector
// draws from each run. Editing a pool changes what can be generated from
// the next tick onward; already-persisted missions are unaffected.
package catalog

import "rezzmoAPI/internal/types/mission"

var daily = []mission.Template{
	{
		Period:      mission.PeriodDaily,
		Category:    mission.CategoryWorkout,
		Title:       "Complete Your First Workout",
		Description: "Start your day strong! Complete at least 1 workout today.",
		TargetValue: 1,
		XPReward:    50,
	},
	{
		Period:      mission.PeriodDaily,
		Category:    mission.CategoryWorkout,
		Title:       "Burn 200 Calories",
		Description: "Burn at least 200 calories through exercise today.",
		TargetValue: 200,
		XPReward:    75,
		Criteria:    mission.Criteria{"metric": "calories"},
	},
	{
		Period:      mission.PeriodDaily,
		Category:    mission.CategoryWorkout,
		Title:       "Exercise for 20 Minutes",
		Description: "Commit to at least 20 minutes of exercise today.",
		TargetValue: 20,
		XPReward:    60,
		Criteria:    mission.Criteria{"metric": "duration_minutes"},
	},
	{
		Period:      mission.PeriodDaily,
		Category:    mission.CategoryStreak,
		Title:       "Maintain Your Streak",
		Description: "Don't break your streak! Complete a workout today.",
		TargetValue: 1,
		XPReward:    100,
	},
	{
		Period:      mission.PeriodDaily,
		Category:    mission.CategorySocial,
		Title:       "Boost 3 Friends",
		Description: "Send encouragement to 3 friends today.",
		TargetValue: 3,
		XPReward:    40,
		Criteria:    mission.Criteria{"action": "boost"},
	},
}

var weekly = []mission.Template{
	{
		Period:      mission.PeriodWeekly,
		Category:    mission.CategoryWorkout,
		Title:       "Complete 5 Workouts This Week",
		Description: "Workout at least 5 days this week to stay consistent.",
		TargetValue: 5,
		XPReward:    250,
	},
	{
		Period:      mission.PeriodWeekly,
		Category:    mission.CategoryWorkout,
		Title:       "Try 3 Different Workout Types",
		Description: "Explore variety! Complete workouts from 3 different categories.",
		TargetValue: 3,
		XPReward:    200,
		Criteria:    mission.Criteria{"metric": "workout_variety"},
	},
	{
		Period:      mission.PeriodWeekly,
		Category:    mission.CategoryWorkout,
		Title:       "Exercise for 150 Minutes",
		Description: "Reach the WHO recommendation of 150 minutes of exercise.",
		TargetValue: 150,
		XPReward:    300,
		Criteria:    mission.Criteria{"metric": "total_duration_minutes"},
	},
	{
		Period:      mission.PeriodWeekly,
		Category:    mission.CategorySocial,
		Title:       "Join a Circle Challenge",
		Description: "Participate in at least 1 circle challenge this week.",
		TargetValue: 1,
		XPReward:    150,
		Criteria:    mission.Criteria{"action": "join_circle_challenge"},
	},
	{
		Period:      mission.PeriodWeekly,
		Category:    mission.CategoryChallenge,
		Title:       "Complete 2 Challenges",
		Description: "Join and complete 2 community challenges this week.",
		TargetValue: 2,
		XPReward:    200,
	},
}

var monthly = []mission.Template{
	{
		Period:      mission.PeriodMonthly,
		Category:    mission.CategoryWorkout,
		Title:       "Complete 20 Workouts This Month",
		Description: "Stay active all month long! Complete 20 workouts.",
		TargetValue: 20,
		XPReward:    1000,
	},
	{
		Period:      mission.PeriodMonthly,
		Category:    mission.CategoryStreak,
		Title:       "Achieve a 30-Day Streak",
		Description: "The ultimate consistency challenge! Work out every day this month.",
		TargetValue: 30,
		XPReward:    1500,
	},
	{
		Period:      mission.PeriodMonthly,
		Category:    mission.CategoryWorkout,
		Title:       "Burn 5,000 Calories",
		Description: "Torch 5,000 calories through exercise this month.",
		TargetValue: 5000,
		XPReward:    1200,
		Criteria:    mission.Criteria{"metric": "total_calories"},
	},
	{
		Period:      mission.PeriodMonthly,
		Category:    mission.CategorySocial,
		Title:       "Create a Training Circle",
		Description: "Build community! Create and invite 5+ members to a training circle.",
		TargetValue: 5,
		XPReward:    800,
		Criteria:    mission.Criteria{"action": "create_circle_with_members"},
	},
	{
		Period:      mission.PeriodMonthly,
		Category:    mission.CategoryChallenge,
		Title:       "Win 3 Challenges",
		Description: "Compete and win! Finish in the top 3 of any 3 challenges.",
		TargetValue: 3,
		XPReward:    1000,
		Criteria:    mission.Criteria{"metric": "challenge_top_3"},
	},
}

// ForPeriod returns a copy of the template pool for the given period.
// Callers may reorder the returned slice freely.
func ForPeriod(p mission.Period) []mission.Template {
	var src []mission.Template
	switch p {
	case mission.PeriodDaily:
		src = daily
	case mission.PeriodWeekly:
		src = weekly
	case mission.PeriodMonthly:
		src = monthly
	default:
		return nil
	}
	out := make([]mission.Template, len(src))
	copy(out, src)
	return out
}
