// Package aggregate merges DAILY, DAY and DUE tasks and calendar schedules
// into per-day buckets for the calendar and the day view.
package aggregate

import (
	"sort"

	"github.com/existflow/dayboard/internal/model"
)

// Bucket holds everything shown on one calendar day. DAILY tasks are never
// bucketed because they apply to every day.
type Bucket struct {
	Day           []model.Task `json:"day"`
	Due           []model.Task `json:"due"`
	ScheduleCount int          `json:"schedule_count"`
}

// Input is the set of independently fetched collections for a date range
type Input struct {
	Daily     []model.Task
	Day       []model.Task
	Due       []model.Task
	Schedules []model.Schedule

	// Start and End bound the viewed range inclusively. Empty means unbounded.
	Start string
	End   string
	Today string
}

// Result is the aggregated view of an Input
type Result struct {
	Buckets     map[string]*Bucket
	Schedules   map[string][]model.Schedule
	Daily       []model.Task
	UpcomingDue []model.Task
}

// Build aggregates the input. Only dates that carry at least one DAY, DUE
// or schedule entry inside the range get a bucket.
func Build(in Input) Result {
	res := Result{
		Buckets:   map[string]*Bucket{},
		Schedules: map[string][]model.Schedule{},
		Daily:     append([]model.Task{}, in.Daily...),
	}
	sort.SliceStable(res.Daily, func(i, j int) bool { return model.SortKey(res.Daily[i], res.Daily[j]) })

	bucket := func(key string) *Bucket {
		b, ok := res.Buckets[key]
		if !ok {
			b = &Bucket{}
			res.Buckets[key] = b
		}
		return b
	}

	for _, t := range in.Day {
		if t.Type != model.TypeDay || !in.contains(t.Date) {
			continue
		}
		b := bucket(t.Date)
		b.Day = append(b.Day, t)
	}

	for _, t := range in.Due {
		if t.Type != model.TypeDue || t.Date == "" {
			continue
		}
		if in.Today != "" && t.Date >= in.Today {
			res.UpcomingDue = append(res.UpcomingDue, t)
		}
		if !in.contains(t.Date) {
			continue
		}
		b := bucket(t.Date)
		b.Due = append(b.Due, t)
	}

	for _, s := range in.Schedules {
		if s.Date == "" || !in.contains(s.Date) {
			continue
		}
		bucket(s.Date).ScheduleCount++
		res.Schedules[s.Date] = append(res.Schedules[s.Date], s)
	}

	for _, b := range res.Buckets {
		sort.SliceStable(b.Day, func(i, j int) bool { return model.SortKey(b.Day[i], b.Day[j]) })
		sort.SliceStable(b.Due, func(i, j int) bool { return b.Due[i].ID < b.Due[j].ID })
	}
	sort.SliceStable(res.UpcomingDue, func(i, j int) bool {
		return model.DateKeyOrder(res.UpcomingDue[i], res.UpcomingDue[j])
	})
	for key := range res.Schedules {
		items := res.Schedules[key]
		sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	}

	return res
}

func (in Input) contains(key string) bool {
	if in.Start != "" && key < in.Start {
		return false
	}
	if in.End != "" && key > in.End {
		return false
	}
	return true
}

// Bucket returns the bucket for key, or an empty bucket when the day has
// no entries.
func (r Result) Bucket(key string) Bucket {
	if b, ok := r.Buckets[key]; ok {
		return *b
	}
	return Bucket{}
}

// Counts returns the chip counts of the day
func (b Bucket) Counts() (day, due, schedules int) {
	return len(b.Day), len(b.Due), b.ScheduleCount
}
