package controller

import (
	"strings"

	"github.com/existflow/dayboard/internal/model"
)

var (
	dailyHints = []string{
		"매일", "날마다", "루틴", "습관", "운동", "스트레칭", "명상", "일기",
		"daily", "every day", "everyday", "each day", "routine", "habit", "workout",
	}
	deadlineHints = []string{
		"마감", "까지", "제출", "기한", "신청", "납부",
		"deadline", "due", "until", "submit", "expires",
	}
)

// SuggestType guesses a task type from its title. Titles with neither
// kind of hint are DAY tasks.
func SuggestType(title string) model.TaskType {
	s := strings.ToLower(title)
	for _, h := range dailyHints {
		if strings.Contains(s, h) {
			return model.TypeDaily
		}
	}
	for _, h := range deadlineHints {
		if strings.Contains(s, h) {
			return model.TypeDue
		}
	}
	return model.TypeDay
}

// Draft is the state of the create form
type Draft struct {
	Title       string
	Type        model.TaskType
	Date        string
	Memo        string
	Links       []string
	TypeTouched bool
}

// NewDraft starts a DAY task on date
func NewDraft(date string) Draft {
	return Draft{Type: model.TypeDay, Date: date}
}

// SetTitle updates the title and, until the user picked a type, the
// suggested type
func (d *Draft) SetTitle(title string) {
	d.Title = title
	if !d.TypeTouched {
		d.Type = SuggestType(title)
	}
}

// SetType records an explicit type choice; suggestions stop afterwards
func (d *Draft) SetType(t model.TaskType) {
	d.Type = t
	d.TypeTouched = true
}

// DateEnabled reports whether the date field applies to the current type
func (d Draft) DateEnabled() bool {
	return d.Type.Dated()
}

// Task converts the draft to a new open task without a manual position
func (d Draft) Task() model.Task {
	t := model.Task{
		Title: strings.TrimSpace(d.Title),
		Type:  d.Type,
		Memo:  d.Memo,
		Links: append([]string{}, d.Links...),
	}
	if d.DateEnabled() {
		t.Date = d.Date
	}
	return t
}
