package streak

import (
	"time"
)

// DayKey buckets a timestamp into its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay returns midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Qualifies reports whether a day's completion count meets the habit's
// daily target.
func Qualifies(count, timesPerDay int) bool {
	if timesPerDay < 1 {
		timesPerDay = 1
	}
	return count >= timesPerDay
}

// Current recomputes the live streak from per-day completion counts
// (keyed by DayKey). It walks backward from today and counts contiguous
// qualifying days. Today is allowed to be not-yet-qualifying without
// breaking a streak that ended yesterday; the first non-qualifying day
// before that stops the walk. After a gap the next qualifying day
// restarts the streak at 1.
func Current(counts map[string]int, timesPerDay int, today time.Time) int {
	day := StartOfDay(today)

	if !Qualifies(counts[DayKey(day)], timesPerDay) {
		// today hasn't met the target yet, the chain may still end yesterday
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for Qualifies(counts[DayKey(day)], timesPerDay) {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}
