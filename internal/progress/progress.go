package progress

import (
	"math"
	"time"

	"github.com/google/uuid"

	"habitHiveAPI/internal/streak"
)

// DayStat is one day of the trailing-week tracker.
type DayStat struct {
	Date           time.Time `json:"date"`
	CompletionRate int       `json:"completion_rate"`
	CompletedCount int       `json:"completed_count"`
	TotalEligible  int       `json:"total_eligible"`
}

// HabitProgress is the long-run view of a single habit.
type HabitProgress struct {
	UserHabitID      uuid.UUID `json:"user_habit_id"`
	DaysActive       int       `json:"days_active"`
	TotalCompletions int       `json:"total_completions"`
	SuccessRate      int       `json:"success_rate"`
	Last7Days        []bool    `json:"last_7_days"`
}

// DayHabitCounts holds per-day completion counts per habit, keyed by
// streak.DayKey then habit id.
type DayHabitCounts map[string]map[uuid.UUID]int

// BuildWeeklyTracker computes the 7 trailing DayStats ending today,
// oldest first. A habit is eligible on a day only if it already existed
// (createdAt on or before that day); a day with no eligible habits
// reports a zero rate.
func BuildWeeklyTracker(createdAt map[uuid.UUID]time.Time, counts DayHabitCounts, today time.Time) []DayStat {
	days := make([]DayStat, 0, 7)
	end := streak.StartOfDay(today)

	for offset := -6; offset <= 0; offset++ {
		d := end.AddDate(0, 0, offset)
		key := streak.DayKey(d)

		eligible := 0
		completed := 0
		for id, created := range createdAt {
			if streak.StartOfDay(created).After(d) {
				continue
			}
			eligible++
			if counts[key][id] > 0 {
				completed++
			}
		}

		rate := 0
		if eligible > 0 {
			rate = roundPercent(completed, eligible)
		}

		days = append(days, DayStat{
			Date:           d,
			CompletionRate: rate,
			CompletedCount: completed,
			TotalEligible:  eligible,
		})
	}

	return days
}

// BuildHabitProgress computes the all-time stats for one habit from its
// per-day completion counts. SuccessRate is completion events over
// elapsed days, which is deliberately not the qualifying-day metric the
// streak uses.
func BuildHabitProgress(habitID uuid.UUID, createdAt time.Time, perDay map[string]int, today time.Time) HabitProgress {
	end := streak.StartOfDay(today)
	start := streak.StartOfDay(createdAt)

	daysActive := int(end.Sub(start).Hours()/24) + 1
	if daysActive < 1 {
		daysActive = 1
	}

	total := 0
	for _, n := range perDay {
		total += n
	}

	last7 := make([]bool, 0, 7)
	for offset := -6; offset <= 0; offset++ {
		d := end.AddDate(0, 0, offset)
		last7 = append(last7, perDay[streak.DayKey(d)] > 0)
	}

	return HabitProgress{
		UserHabitID:      habitID,
		DaysActive:       daysActive,
		TotalCompletions: total,
		SuccessRate:      roundPercent(total, daysActive),
		Last7Days:        last7,
	}
}

func roundPercent(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}
