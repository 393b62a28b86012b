package dateutil

import (
	"time"

	"golang.org/x/text/language"
)

var weekdayTags = []language.Tag{language.English, language.Korean}

var weekdayNames = [][7]string{
	{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	{"일", "월", "화", "수", "목", "금", "토"},
}

var weekdayMatcher = language.NewMatcher(weekdayTags)

// WeekdayShort returns the short weekday name of t for the given locale.
// Unsupported locales fall back to English.
func WeekdayShort(t time.Time, tag language.Tag) string {
	_, idx, conf := weekdayMatcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return weekdayNames[idx][t.Weekday()]
}

// WeekdayHeader returns the seven short names starting from Sunday
func WeekdayHeader(tag language.Tag) [7]string {
	_, idx, conf := weekdayMatcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return weekdayNames[idx]
}

// ParseLocale parses a BCP 47 locale string, defaulting to English
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}
