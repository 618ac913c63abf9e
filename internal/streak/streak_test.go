package streak

import (
	"testing"
	"time"
)

var today = time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC)

func day(offset int) string {
	return DayKey(today.AddDate(0, 0, offset))
}

func TestCurrentEmptyLedger(t *testing.T) {
	if got := Current(map[string]int{}, 1, today); got != 0 {
		t.Errorf("expected 0 streak for empty ledger, got %d", got)
	}
}

func TestCurrentSingleDayToday(t *testing.T) {
	counts := map[string]int{day(0): 1}
	if got := Current(counts, 1, today); got != 1 {
		t.Errorf("expected streak 1, got %d", got)
	}
}

func TestCurrentTodayNotYetQualifyingKeepsStreakLive(t *testing.T) {
	// three qualifying days ending yesterday, nothing logged today
	counts := map[string]int{
		day(-3): 1,
		day(-2): 1,
		day(-1): 1,
	}
	if got := Current(counts, 1, today); got != 3 {
		t.Errorf("expected streak 3 while today is pending, got %d", got)
	}
}

func TestCurrentTodayQualifyingExtendsStreak(t *testing.T) {
	counts := map[string]int{
		day(-2): 1,
		day(-1): 1,
		day(0):  1,
	}
	if got := Current(counts, 1, today); got != 3 {
		t.Errorf("expected streak 3, got %d", got)
	}
}

func TestCurrentGapBreaksStreak(t *testing.T) {
	// long run broken two days ago, nothing since
	counts := map[string]int{
		day(-6): 1,
		day(-5): 1,
		day(-4): 1,
		day(-3): 1,
	}
	if got := Current(counts, 1, today); got != 0 {
		t.Errorf("expected streak 0 after a skipped day, got %d", got)
	}
}

func TestCurrentResetsToOneAfterGap(t *testing.T) {
	// old run, gap, qualified again today
	counts := map[string]int{
		day(-5): 1,
		day(-4): 1,
		day(0):  1,
	}
	if got := Current(counts, 1, today); got != 1 {
		t.Errorf("expected streak to restart at 1 after a gap, got %d", got)
	}
}

func TestCurrentTimesPerDayTarget(t *testing.T) {
	// target 3: yesterday qualified, today has only 2 so far
	counts := map[string]int{
		day(-1): 3,
		day(0):  2,
	}
	if got := Current(counts, 3, today); got != 1 {
		t.Errorf("expected streak 1 with today below target, got %d", got)
	}

	counts[day(0)] = 3
	if got := Current(counts, 3, today); got != 2 {
		t.Errorf("expected streak 2 once today meets target, got %d", got)
	}
}

func TestCurrentOverTargetStillOneDay(t *testing.T) {
	counts := map[string]int{day(0): 7}
	if got := Current(counts, 3, today); got != 1 {
		t.Errorf("over-target day should count once, got %d", got)
	}
}

func TestQualifies(t *testing.T) {
	cases := []struct {
		count, target int
		want          bool
	}{
		{0, 1, false},
		{1, 1, true},
		{2, 3, false},
		{3, 3, true},
		{5, 3, true},
		{1, 0, true}, // target clamps to 1
	}
	for _, c := range cases {
		if got := Qualifies(c.count, c.target); got != c.want {
			t.Errorf("Qualifies(%d, %d) = %v, want %v", c.count, c.target, got, c.want)
		}
	}
}

func TestDayKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 3, 15, 2, 0, 0, 0, loc) // still 2026-03-14 UTC
	if got := DayKey(local); got != "2026-03-14" {
		t.Errorf("expected UTC bucketing, got %s", got)
	}
}
