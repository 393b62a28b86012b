package model

import "time"

// Schedule is a calendar note. It is an annotation layer on the
// calendar and never converts to or from a Task.
type Schedule struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateKey returns the schedule date
func (s Schedule) DateKey() string {
	return s.Date
}

// DisplayTitle returns the title or a placeholder when it is empty
func (s Schedule) DisplayTitle() string {
	if s.Title == "" {
		return UntitledPlaceholder
	}
	return s.Title
}
