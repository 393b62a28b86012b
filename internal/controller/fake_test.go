package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
)

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeTimers collects debounce callbacks until the test fires them
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (ft *fakeTimers) AfterFunc(_ time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{f: f}
	ft.timers = append(ft.timers, t)
	return t
}

func (ft *fakeTimers) active() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	n := 0
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (ft *fakeTimers) fire() {
	ft.mu.Lock()
	var due []*fakeTimer
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	ft.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type update struct {
	id    string
	patch model.TaskPatch
}

type fakeStore struct {
	mu        sync.Mutex
	tasks     map[string]model.Task
	schedules map[string]model.Schedule
	updates   []update
	deletes   []string
	seq       int

	failUpdate error
	failDelete error
	failFetch  error
	onFetch    func()
}

func newFakeStore(tasks ...model.Task) *fakeStore {
	s := &fakeStore{tasks: map[string]model.Task{}, schedules: map[string]model.Schedule{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeStore) filter(keep func(model.Task) bool) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return model.SortKey(out[i], out[j]) })
	return out
}

func (s *fakeStore) FetchTasksByDate(_ context.Context, date string, typ model.TaskType) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool { return t.Type == typ && t.Date == date }), nil
}

func (s *fakeStore) FetchTasksFrom(_ context.Context, typ model.TaskType, start string) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool { return t.Type == typ && t.Date >= start }), nil
}

func (s *fakeStore) FetchTasksInRange(_ context.Context, typ model.TaskType, start, end string) ([]model.Task, error) {
	return s.filter(func(t model.Task) bool { return t.Type == typ && t.Date >= start && t.Date <= end }), nil
}

func (s *fakeStore) FetchDailyTasks(ctx context.Context) ([]model.Task, error) {
	if hook := s.onFetch; hook != nil {
		s.onFetch = nil
		hook()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failFetch != nil {
		return nil, s.failFetch
	}
	return s.filter(func(t model.Task) bool { return t.Type == model.TypeDaily }), nil
}

func (s *fakeStore) schedulesWhere(keep func(model.Schedule) bool) []model.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Schedule
	for _, sc := range s.schedules {
		if keep(sc) {
			out = append(out, sc)
		}
	}
	return out
}

func (s *fakeStore) FetchSchedulesInRange(_ context.Context, start, end string) ([]model.Schedule, error) {
	return s.schedulesWhere(func(sc model.Schedule) bool { return sc.Date >= start && sc.Date <= end }), nil
}

func (s *fakeStore) FetchSchedulesFrom(_ context.Context, start string, _ int) ([]model.Schedule, error) {
	return s.schedulesWhere(func(sc model.Schedule) bool { return sc.Date >= start }), nil
}

func (s *fakeStore) CreateTask(_ context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t.ID = fmt.Sprintf("new-%d", s.seq)
	s.tasks[t.ID] = t
	return t, nil
}

func (s *fakeStore) UpdateTask(_ context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return model.Task{}, s.failUpdate
	}
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, gateway.ErrNotFound
	}
	s.updates = append(s.updates, update{id: id, patch: patch})
	t = patch.Apply(t)
	s.tasks[id] = t
	return t, nil
}

func (s *fakeStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	s.deletes = append(s.deletes, id)
	delete(s.tasks, id)
	return nil
}

func (s *fakeStore) CreateSchedule(_ context.Context, sc model.Schedule) (model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sc.ID = fmt.Sprintf("sched-%d", s.seq)
	s.schedules[sc.ID] = sc
	return sc, nil
}

func (s *fakeStore) UpdateSchedule(_ context.Context, id string, patch model.SchedulePatch) (model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[id]
	if !ok {
		return model.Schedule{}, gateway.ErrNotFound
	}
	sc = patch.Apply(sc)
	s.schedules[id] = sc
	return sc, nil
}

func (s *fakeStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.schedules, id)
	return nil
}

// put stores t behind the controller's back, as another client would
func (s *fakeStore) put(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}
