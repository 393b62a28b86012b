package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskType is the category that decides where a task is shown
type TaskType string

const (
	TypeDay   TaskType = "DAY"   // Pinned to one date
	TypeDue   TaskType = "DUE"   // Deadline, counts down to its date
	TypeDaily TaskType = "DAILY" // Recurring, shown every day
)

// UntitledPlaceholder is displayed for tasks with an empty title
const UntitledPlaceholder = "(untitled)"

// Valid reports whether t is a known task type
func (t TaskType) Valid() bool {
	switch t {
	case TypeDay, TypeDue, TypeDaily:
		return true
	}
	return false
}

// Dated reports whether tasks of this type carry a date
func (t TaskType) Dated() bool {
	return t == TypeDay || t == TypeDue
}

// ParseTaskType parses a task type, accepting any letter case
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown task type %q", s)}
	}
	return t, nil
}

// Task represents a single unit of work
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        TaskType  `json:"type"`
	Memo        string    `json:"memo"`
	Links       []string  `json:"links"`
	IsCompleted bool      `json:"is_completed"`
	SortOrder   *int      `json:"sort_order"`
	Date        string    `json:"date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DateKey returns the task date, empty for DAILY tasks
func (t Task) DateKey() string {
	if t.Type == TypeDaily {
		return ""
	}
	return t.Date
}

// DisplayTitle returns the title or a placeholder when it is empty
func (t Task) DisplayTitle() string {
	if strings.TrimSpace(t.Title) == "" {
		return UntitledPlaceholder
	}
	return t.Title
}

// Clone returns a deep copy so that callers can mutate links freely
func (t Task) Clone() Task {
	c := t
	if t.Links != nil {
		c.Links = append([]string(nil), t.Links...)
	}
	if t.SortOrder != nil {
		v := *t.SortOrder
		c.SortOrder = &v
	}
	return c
}

// IsOverdue returns true for DUE tasks whose date is before today
func (t Task) IsOverdue(today string) bool {
	return t.Type == TypeDue && t.Date != "" && t.Date < today
}

// IsUpcoming returns true for DUE tasks dated today or later
func (t Task) IsUpcoming(today string) bool {
	return t.Type == TypeDue && t.Date != "" && t.Date >= today
}

// SortKey orders tasks by sort_order with nil last, then by id
func SortKey(a, b Task) bool {
	switch {
	case a.SortOrder != nil && b.SortOrder != nil:
		if *a.SortOrder != *b.SortOrder {
			return *a.SortOrder < *b.SortOrder
		}
	case a.SortOrder != nil:
		return true
	case b.SortOrder != nil:
		return false
	}
	return a.ID < b.ID
}

// DateKeyOrder orders tasks by date then id
func DateKeyOrder(a, b Task) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.ID < b.ID
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
