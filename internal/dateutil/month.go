package dateutil

import (
	"fmt"
	"time"
)

// MonthStart returns midnight on the first day of t's month, in t's location
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns midnight on the last day of t's month
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths shifts t's month by n calendar months. The result is always
// the first of the month so that Jan 31 + 1 never overflows into March.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// MonthBounds returns the first and last date keys of t's month
func MonthBounds(t time.Time) (string, string) {
	return MonthStart(t).Format(KeyLayout), MonthEnd(t).Format(KeyLayout)
}

// ParseMonth parses "YYYY-MM" into the first day of that month in loc
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// SameMonth reports whether key falls inside the month starting at month
func SameMonth(key string, month time.Time) bool {
	t, err := ParseKey(key, month.Location())
	if err != nil {
		return false
	}
	return t.Year() == month.Year() && t.Month() == month.Month()
}
