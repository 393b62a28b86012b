package model

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError describes input rejected before any remote call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validDate(key string) bool {
	if len(key) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", key)
	return err == nil
}

// ValidateNewTask checks a task about to be created
func ValidateNewTask(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	return validateTaskShape(t)
}

// ValidateTask checks an existing task after a patch was applied.
// Empty titles are allowed here; they render as a placeholder.
func ValidateTask(t Task) error {
	return validateTaskShape(t)
}

func validateTaskShape(t Task) error {
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown task type %q", t.Type)}
	}
	if t.Type.Dated() && !validDate(t.Date) {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%s task needs a YYYY-MM-DD date, got %q", t.Type, t.Date)}
	}
	if t.SortOrder != nil && *t.SortOrder < 0 {
		return &ValidationError{Field: "sort_order", Reason: "must not be negative"}
	}
	return nil
}

// ValidateSchedule checks a schedule before it is written
func ValidateSchedule(s Schedule) error {
	if !validDate(s.Date) {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", s.Date)}
	}
	if strings.TrimSpace(s.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	return nil
}
