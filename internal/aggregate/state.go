package aggregate

import (
	"sort"

	"github.com/existflow/dayboard/internal/model"
)

// State is the client-side cache of loaded tasks and schedules, keyed by id.
// Every method returns a new State; entries of other ids are never touched,
// so an optimistic edit to one task cannot drop another's.
type State struct {
	tasks     map[string]model.Task
	schedules map[string]model.Schedule
}

// NewState returns an empty state
func NewState() State {
	return State{
		tasks:     map[string]model.Task{},
		schedules: map[string]model.Schedule{},
	}
}

func (s State) clone() State {
	out := State{
		tasks:     make(map[string]model.Task, len(s.tasks)),
		schedules: make(map[string]model.Schedule, len(s.schedules)),
	}
	for id, t := range s.tasks {
		out.tasks[id] = t
	}
	for id, sc := range s.schedules {
		out.schedules[id] = sc
	}
	return out
}

// Task returns the task with id
func (s State) Task(id string) (model.Task, bool) {
	t, ok := s.tasks[id]
	return t.Clone(), ok
}

// Schedule returns the schedule with id
func (s State) Schedule(id string) (model.Schedule, bool) {
	sc, ok := s.schedules[id]
	return sc, ok
}

// UpsertTasks inserts or replaces tasks by id
func (s State) UpsertTasks(tasks ...model.Task) State {
	out := s.clone()
	for _, t := range tasks {
		out.tasks[t.ID] = t.Clone()
	}
	return out
}

// ReplaceTasks drops every task matching stale and inserts fresh. It is
// used when a range is re-fetched.
func (s State) ReplaceTasks(stale func(model.Task) bool, fresh []model.Task) State {
	out := s.clone()
	for id, t := range out.tasks {
		if stale(t) {
			delete(out.tasks, id)
		}
	}
	for _, t := range fresh {
		out.tasks[t.ID] = t.Clone()
	}
	return out
}

// ApplyPatch merges a patch into one task. The second result is false
// when the task is not loaded.
func (s State) ApplyPatch(id string, patch model.TaskPatch) (State, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return s, false
	}
	out := s.clone()
	out.tasks[id] = patch.Apply(t)
	return out, true
}

// RemoveTask drops a task
func (s State) RemoveTask(id string) State {
	if _, ok := s.tasks[id]; !ok {
		return s
	}
	out := s.clone()
	delete(out.tasks, id)
	return out
}

// UpsertSchedules inserts or replaces schedules by id
func (s State) UpsertSchedules(items ...model.Schedule) State {
	out := s.clone()
	for _, sc := range items {
		out.schedules[sc.ID] = sc
	}
	return out
}

// ReplaceSchedules drops every schedule matching stale and inserts fresh
func (s State) ReplaceSchedules(stale func(model.Schedule) bool, fresh []model.Schedule) State {
	out := s.clone()
	for id, sc := range out.schedules {
		if stale(sc) {
			delete(out.schedules, id)
		}
	}
	for _, sc := range fresh {
		out.schedules[sc.ID] = sc
	}
	return out
}

// ApplySchedulePatch merges a patch into one schedule
func (s State) ApplySchedulePatch(id string, patch model.SchedulePatch) (State, bool) {
	sc, ok := s.schedules[id]
	if !ok {
		return s, false
	}
	out := s.clone()
	out.schedules[id] = patch.Apply(sc)
	return out, true
}

// RemoveSchedule drops a schedule
func (s State) RemoveSchedule(id string) State {
	if _, ok := s.schedules[id]; !ok {
		return s
	}
	out := s.clone()
	delete(out.schedules, id)
	return out
}

// Tasks returns the loaded tasks matching keep, ordered by id
func (s State) Tasks(keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if keep == nil || keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Schedules returns the loaded schedules matching keep, by date then id
func (s State) Schedules(keep func(model.Schedule) bool) []model.Schedule {
	var out []model.Schedule
	for _, sc := range s.schedules {
		if keep == nil || keep(sc) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DayList returns the DAY tasks of date in manual order
func (s State) DayList(date string) []model.Task {
	out := s.Tasks(func(t model.Task) bool { return t.Type == model.TypeDay && t.Date == date })
	sort.SliceStable(out, func(i, j int) bool { return model.SortKey(out[i], out[j]) })
	return out
}

// Input splits the loaded entities into aggregation input
func (s State) Input(start, end, today string) Input {
	in := Input{Start: start, End: end, Today: today}
	for _, t := range s.Tasks(nil) {
		switch t.Type {
		case model.TypeDaily:
			in.Daily = append(in.Daily, t)
		case model.TypeDay:
			in.Day = append(in.Day, t)
		case model.TypeDue:
			in.Due = append(in.Due, t)
		}
	}
	in.Schedules = s.Schedules(nil)
	return in
}

// Result aggregates the current state over [start, end]. Because the
// buckets are derived from task state, a type or date change moves the
// task without leaving a stale copy behind.
func (s State) Result(start, end, today string) Result {
	return Build(s.Input(start, end, today))
}
