package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/dayboard/internal/dateutil"
)

// parseDate accepts YYYY-MM-DD, today, tomorrow, yesterday and +N/-N day
// offsets. An empty string is today.
func parseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	today := dateutil.KeyIn(now, time.Local)
	switch strings.ToLower(s) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return dateutil.AddDays(today, 1)
	case "yesterday":
		return dateutil.AddDays(today, -1)
	}

	if s[0] == '+' || s[0] == '-' {
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", fmt.Errorf("invalid day offset %q", s)
		}
		return dateutil.AddDays(today, n)
	}
	if !dateutil.ValidKey(s) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return s, nil
}

// dDay formats the countdown of date, or "" for undated tasks
func dDay(today, date string) string {
	if date == "" {
		return ""
	}
	label, err := dateutil.RelativeDayLabel(today, date)
	if err != nil {
		return ""
	}
	return label.Text
}
