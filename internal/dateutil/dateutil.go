// Package dateutil converts between calendar dates and YYYY-MM-DD keys and
// computes the D-N countdown labels shown next to tasks and schedules.
package dateutil

import (
	"fmt"
	"strconv"
	"time"
)

// KeyLayout is the canonical date key layout
const KeyLayout = "2006-01-02"

// MonthLayout is used for month identifiers such as "2025-11"
const MonthLayout = "2006-01"

// Clock returns the current time. Tests inject fixed clocks.
type Clock func() time.Time

// SystemClock is the process wall clock
var SystemClock Clock = time.Now

// ToDateKey returns the local calendar date of t as YYYY-MM-DD.
// The hour, minute and second of t never affect the result.
func ToDateKey(t time.Time) string {
	return KeyIn(t, time.Local)
}

// KeyIn returns the calendar date of t as seen in loc
func KeyIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(KeyLayout)
}

// Today returns today's date key according to clock
func Today(clock Clock) string {
	if clock == nil {
		clock = SystemClock
	}
	return ToDateKey(clock())
}

// ParseKey parses a YYYY-MM-DD key as midnight in loc
func ParseKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(key) != len(KeyLayout) {
		return time.Time{}, fmt.Errorf("invalid date key %q", key)
	}
	t, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// ValidKey reports whether key is a well-formed YYYY-MM-DD date
func ValidKey(key string) bool {
	_, err := ParseKey(key, time.UTC)
	return err == nil
}

// DayDiff returns target minus today in whole days. Both keys are
// compared at UTC midnight so daylight saving shifts cannot skew the count.
func DayDiff(todayKey, targetKey string) (int, error) {
	today, err := ParseKey(todayKey, time.UTC)
	if err != nil {
		return 0, err
	}
	target, err := ParseKey(targetKey, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(target.Sub(today).Hours() / 24), nil
}

// Label is a relative day marker such as "D-3" or "D+2"
type Label struct {
	Text  string `json:"label"`
	Value int    `json:"value"`
}

// LabelFor builds the label for a day difference. Future dates count down
// with a D- prefix, past dates count up with D+.
func LabelFor(value int) Label {
	switch {
	case value == 0:
		return Label{Text: "D-DAY", Value: 0}
	case value > 0:
		return Label{Text: "D-" + strconv.Itoa(value), Value: value}
	default:
		return Label{Text: "D+" + strconv.Itoa(-value), Value: value}
	}
}

// RelativeDayLabel computes the label of targetKey relative to todayKey
func RelativeDayLabel(todayKey, targetKey string) (Label, error) {
	diff, err := DayDiff(todayKey, targetKey)
	if err != nil {
		return Label{}, err
	}
	return LabelFor(diff), nil
}

// AddDays shifts a date key by n days
func AddDays(key string, n int) (string, error) {
	t, err := ParseKey(key, time.UTC)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(KeyLayout), nil
}
