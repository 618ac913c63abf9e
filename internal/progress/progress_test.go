package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"habitHiveAPI/internal/streak"
)

var today = time.Date(2026, 3, 14, 20, 15, 0, 0, time.UTC)

func dayKey(offset int) string {
	return streak.DayKey(today.AddDate(0, 0, offset))
}

func TestWeeklyTrackerSevenOrderedDays(t *testing.T) {
	id := uuid.New()
	created := map[uuid.UUID]time.Time{id: today.AddDate(0, 0, -30)}

	days := BuildWeeklyTracker(created, DayHabitCounts{}, today)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	for i, d := range days {
		want := streak.StartOfDay(today).AddDate(0, 0, i-6)
		if !d.Date.Equal(want) {
			t.Errorf("day %d: expected %v, got %v", i, want, d.Date)
		}
	}
	if !days[6].Date.Equal(streak.StartOfDay(today)) {
		t.Errorf("last day should be today")
	}
}

func TestWeeklyTrackerZeroEligibleIsZeroRate(t *testing.T) {
	// habit created today: every earlier day has no eligible habits
	id := uuid.New()
	created := map[uuid.UUID]time.Time{id: today}

	days := BuildWeeklyTracker(created, DayHabitCounts{}, today)
	for i := 0; i < 6; i++ {
		if days[i].TotalEligible != 0 || days[i].CompletionRate != 0 {
			t.Errorf("day %d: expected no eligible habits and rate 0, got %+v", i, days[i])
		}
	}
	if days[6].TotalEligible != 1 {
		t.Errorf("today should have 1 eligible habit, got %d", days[6].TotalEligible)
	}
}

func TestWeeklyTrackerEligibilityByCreationDate(t *testing.T) {
	// one habit created today with no completions, one created 3 days
	// ago completed yesterday only
	newHabit := uuid.New()
	oldHabit := uuid.New()
	created := map[uuid.UUID]time.Time{
		newHabit: today,
		oldHabit: today.AddDate(0, 0, -3),
	}
	counts := DayHabitCounts{
		dayKey(-1): {oldHabit: 1},
	}

	days := BuildWeeklyTracker(created, counts, today)

	yesterday := days[5]
	if yesterday.TotalEligible != 1 {
		t.Errorf("yesterday: expected 1 eligible habit, got %d", yesterday.TotalEligible)
	}
	if yesterday.CompletedCount != 1 {
		t.Errorf("yesterday: expected 1 completed habit, got %d", yesterday.CompletedCount)
	}
	if yesterday.CompletionRate != 100 {
		t.Errorf("yesterday: expected rate 100, got %d", yesterday.CompletionRate)
	}

	todayStat := days[6]
	if todayStat.TotalEligible != 2 || todayStat.CompletedCount != 0 || todayStat.CompletionRate != 0 {
		t.Errorf("today: expected 2 eligible, 0 completed, rate 0, got %+v", todayStat)
	}
}

func TestWeeklyTrackerRounding(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	longAgo := today.AddDate(0, 0, -20)
	created := map[uuid.UUID]time.Time{a: longAgo, b: longAgo, c: longAgo}
	counts := DayHabitCounts{
		dayKey(0): {a: 2}, // 1 of 3 -> 33
	}

	days := BuildWeeklyTracker(created, counts, today)
	if days[6].CompletionRate != 33 {
		t.Errorf("expected rounded rate 33, got %d", days[6].CompletionRate)
	}

	counts[dayKey(0)][b] = 1 // 2 of 3 -> 67
	days = BuildWeeklyTracker(created, counts, today)
	if days[6].CompletionRate != 67 {
		t.Errorf("expected rounded rate 67, got %d", days[6].CompletionRate)
	}
}

func TestWeeklyTrackerIsPure(t *testing.T) {
	id := uuid.New()
	created := map[uuid.UUID]time.Time{id: today.AddDate(0, 0, -10)}
	counts := DayHabitCounts{
		dayKey(0):  {id: 2},
		dayKey(-2): {id: 1},
	}

	first := BuildWeeklyTracker(created, counts, today)
	second := BuildWeeklyTracker(created, counts, today)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("day %d differs between identical calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestHabitProgressCounts(t *testing.T) {
	id := uuid.New()
	created := today.AddDate(0, 0, -9) // 10 days active inclusive
	perDay := map[string]int{
		dayKey(0):  2,
		dayKey(-1): 1,
		dayKey(-4): 2,
	}

	p := BuildHabitProgress(id, created, perDay, today)
	if p.DaysActive != 10 {
		t.Errorf("expected 10 days active, got %d", p.DaysActive)
	}
	if p.TotalCompletions != 5 {
		t.Errorf("expected 5 total completions, got %d", p.TotalCompletions)
	}
	if p.SuccessRate != 50 {
		t.Errorf("expected success rate 50, got %d", p.SuccessRate)
	}

	wantLast7 := []bool{false, false, true, false, false, true, true}
	for i, want := range wantLast7 {
		if p.Last7Days[i] != want {
			t.Errorf("last7[%d]: expected %v, got %v", i, want, p.Last7Days[i])
		}
	}
}

func TestHabitProgressCreatedToday(t *testing.T) {
	id := uuid.New()
	p := BuildHabitProgress(id, today, map[string]int{dayKey(0): 1}, today)
	if p.DaysActive != 1 {
		t.Errorf("expected 1 day active, got %d", p.DaysActive)
	}
	if p.SuccessRate != 100 {
		t.Errorf("expected success rate 100, got %d", p.SuccessRate)
	}
}
