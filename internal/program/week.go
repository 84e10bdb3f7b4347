// Package program resolves program weeks and the content a user is eligible for.
package program

import "time"

// CivilDay returns the UTC calendar day of t at midnight.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from start to ref (negative if ref is earlier).
func DaysBetween(start, ref time.Time) int {
	return int(CivilDay(ref).Sub(CivilDay(start)).Hours() / 24)
}

// ResolveWeek returns the 1-based program week of ref for a program starting
// on start. 0 means not started. maxWeeks > 0 clamps the result.
func ResolveWeek(start, ref time.Time, maxWeeks int) int {
	days := DaysBetween(start, ref)
	if days < 0 {
		return 0
	}
	week := days/7 + 1
	if maxWeeks > 0 && week > maxWeeks {
		return maxWeeks
	}
	return week
}

// CanUpdateVariants reports whether ref is strictly before the start date.
func CanUpdateVariants(start, ref time.Time) bool {
	return DaysBetween(start, ref) < 0
}

// WeekStart returns the Monday of t's week as a UTC date.
func WeekStart(t time.Time) time.Time {
	d := CivilDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
