// Package preview derives the short "upcoming" lists shown beside the
// calendar. Nothing here is cached; callers recompute on every change.
package preview

import (
	"sort"

	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
)

// DefaultMax is the number of entries shown when no limit is configured
const DefaultMax = 3

// Dated is anything placed on a calendar date
type Dated interface {
	DateKey() string
}

// Entry is an item with its countdown label
type Entry[T Dated] struct {
	Item  T              `json:"item"`
	Label dateutil.Label `json:"d_day"`
}

// Upcoming keeps items dated today or later, sorted by date, truncated to
// max. A max of zero or less means DefaultMax.
func Upcoming[T Dated](items []T, today string, max int) []Entry[T] {
	if max <= 0 {
		max = DefaultMax
	}

	kept := make([]T, 0, len(items))
	for _, it := range items {
		key := it.DateKey()
		if key == "" || key < today {
			continue
		}
		kept = append(kept, it)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].DateKey() < kept[j].DateKey() })
	if len(kept) > max {
		kept = kept[:max]
	}

	out := make([]Entry[T], 0, len(kept))
	for _, it := range kept {
		label, err := dateutil.RelativeDayLabel(today, it.DateKey())
		if err != nil {
			continue
		}
		out = append(out, Entry[T]{Item: it, Label: label})
	}
	return out
}

// Panel is the pair of upcoming lists for the sidebar
type Panel struct {
	Schedules []Entry[model.Schedule] `json:"schedules"`
	Due       []Entry[model.Task]     `json:"due"`
}

// Build computes both sidebar lists. Only DUE tasks are considered for the
// task list.
func Build(schedules []model.Schedule, tasks []model.Task, today string, max int) Panel {
	var due []model.Task
	for _, t := range tasks {
		if t.Type == model.TypeDue {
			due = append(due, t)
		}
	}
	return Panel{
		Schedules: Upcoming(schedules, today, max),
		Due:       Upcoming(due, today, max),
	}
}
