package aggregate

import "github.com/existflow/dayboard/internal/model"

// Counter tracks completion progress of the selected date's DAY tasks.
// It is adjusted incrementally on local edits and rebuilt with CountDay
// after a reload.
type Counter struct {
	All  int `json:"all_count"`
	Done int `json:"done_count"`
}

// CountDay derives a counter from a day's task list
func CountDay(tasks []model.Task) Counter {
	var c Counter
	for _, t := range tasks {
		c = c.Add(t)
	}
	return c
}

// Add accounts for a task joining the list
func (c Counter) Add(t model.Task) Counter {
	c.All++
	if t.IsCompleted {
		c.Done++
	}
	return c
}

// Remove accounts for a task leaving the list
func (c Counter) Remove(t model.Task) Counter {
	if c.All > 0 {
		c.All--
	}
	if t.IsCompleted && c.Done > 0 {
		c.Done--
	}
	return c
}

// Toggle accounts for a completion flip; completed is the new value
func (c Counter) Toggle(completed bool) Counter {
	if completed {
		if c.Done < c.All {
			c.Done++
		}
	} else if c.Done > 0 {
		c.Done--
	}
	return c
}

// Percent returns completion as 0..100
func (c Counter) Percent() int {
	if c.All == 0 {
		return 0
	}
	return c.Done * 100 / c.All
}
