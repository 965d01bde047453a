package service

import "time"

// WeekStartOf normalizes a timestamp to the Monday 00:00:00 of its containing
// week, in the timestamp's own location. The result is the grouping key for
// all weekly aggregation, so it must be stable for any instant within a week.
func WeekStartOf(t time.Time) time.Time {
	// Weekday is Sunday-based; shift so Monday maps to 0.
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// inWeek reports whether ts falls inside the half-open window
// [weekStart, weekStart+7d).
func inWeek(ts, weekStart time.Time) bool {
	return !ts.Before(weekStart) && ts.Before(weekStart.AddDate(0, 0, 7))
}
