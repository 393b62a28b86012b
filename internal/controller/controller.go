// Package controller applies task and schedule mutations optimistically to
// the loaded state and persists them through the gateway: field edits are
// debounced per id, toggles and deletes are sent at once and rolled back
// when the store rejects them.
package controller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/existflow/dayboard/internal/aggregate"
	"github.com/existflow/dayboard/internal/calendar"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
)

// DefaultDebounce is the autosave delay after the last edit of an entity
const DefaultDebounce = 500 * time.Millisecond

// ErrStaleLoad is returned by Load when a newer load replaced it
var ErrStaleLoad = errors.New("load superseded by a newer request")

// Store is the subset of the gateway the controller needs
type Store interface {
	FetchTasksByDate(ctx context.Context, date string, typ model.TaskType) ([]model.Task, error)
	FetchTasksFrom(ctx context.Context, typ model.TaskType, start string) ([]model.Task, error)
	FetchTasksInRange(ctx context.Context, typ model.TaskType, start, end string) ([]model.Task, error)
	FetchDailyTasks(ctx context.Context) ([]model.Task, error)
	FetchSchedulesInRange(ctx context.Context, start, end string) ([]model.Schedule, error)
	FetchSchedulesFrom(ctx context.Context, start string, limit int) ([]model.Schedule, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	CreateSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error)
	UpdateSchedule(ctx context.Context, id string, patch model.SchedulePatch) (model.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// Timer is a stoppable pending callback
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Debounce  time.Duration
	Clock     dateutil.Clock
	AfterFunc AfterFunc

	// OnError receives failures of background and optimistic writes
	OnError func(err error)
	// OnChange is called after the state changed outside a direct call,
	// e.g. when a debounced write completed
	OnChange func()
}

// Controller owns the loaded state of one client
type Controller struct {
	store Store
	opts  Options

	mu       sync.Mutex
	state    aggregate.State
	selected string
	start    string
	end      string
	counter  aggregate.Counter
	pending  map[string]*pendingWrite
	closed   bool

	loader calendar.Loader
}

// New creates a controller with today selected
func New(store Store, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = dateutil.SystemClock
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = systemAfterFunc
	}
	return &Controller{
		store:    store,
		opts:     opts,
		state:    aggregate.NewState(),
		selected: dateutil.Today(opts.Clock),
		pending:  map[string]*pendingWrite{},
	}
}

// Today returns today's date key from the controller clock
func (c *Controller) Today() string {
	return dateutil.Today(c.opts.Clock)
}

// State returns the current state snapshot
func (c *Controller) State() aggregate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selected returns the selected date key
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Counter returns the completion counter of the selected date
func (c *Controller) Counter() aggregate.Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// Range returns the loaded date range
func (c *Controller) Range() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start, c.end
}

// Result aggregates the loaded range
func (c *Controller) Result() aggregate.Result {
	today := c.Today()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Result(c.start, c.end, today)
}

// Day is everything shown for the selected date
type Day struct {
	Date      string            `json:"date"`
	Daily     []model.Task      `json:"daily"`
	Day       []model.Task      `json:"day"`
	Due       []model.Task      `json:"due"`
	Schedules []model.Schedule  `json:"schedules"`
	Counter   aggregate.Counter `json:"counter"`
}

// Day returns the selected date's lists
func (c *Controller) Day() Day {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dayOf(c.state, c.selected, c.counter)
}

func dayOf(s aggregate.State, date string, counter aggregate.Counter) Day {
	daily := s.Tasks(func(t model.Task) bool { return t.Type == model.TypeDaily })
	return Day{
		Date:  date,
		Daily: sortManual(daily),
		Day:   s.DayList(date),
		Due: s.Tasks(func(t model.Task) bool {
			return t.Type == model.TypeDue && t.Date == date
		}),
		Schedules: s.Schedules(func(sc model.Schedule) bool { return sc.Date == date }),
		Counter:   counter,
	}
}

// Select changes the selected date and recounts its DAY tasks. The caller
// loads the surrounding month when the date is outside the loaded range.
func (c *Controller) Select(date string) error {
	if !dateutil.ValidKey(date) {
		return &model.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = date
	c.recount()
	return nil
}

// InRange reports whether date lies inside the loaded range
func (c *Controller) InRange(date string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start != "" && date >= c.start && date <= c.end
}

// Load fetches everything needed to show [start, end]: DAILY tasks, DAY
// tasks and schedules of the range, DUE tasks and schedules from the
// earlier of start and today for the upcoming lists. A load started later
// wins; an overtaken load returns ErrStaleLoad without touching state.
func (c *Controller) Load(ctx context.Context, month time.Time) error {
	start, end := dateutil.MonthBounds(month)
	ticket := c.loader.Begin(ctx, month)
	ctx = ticket.Ctx

	from := start
	if today := c.Today(); today < from {
		from = today
	}

	daily, err := c.store.FetchDailyTasks(ctx)
	if err != nil {
		return c.loadErr(ticket, err)
	}
	day, err := c.store.FetchTasksInRange(ctx, model.TypeDay, start, end)
	if err != nil {
		return c.loadErr(ticket, err)
	}
	due, err := c.store.FetchTasksFrom(ctx, model.TypeDue, from)
	if err != nil {
		return c.loadErr(ticket, err)
	}
	inRange, err := c.store.FetchSchedulesInRange(ctx, start, end)
	if err != nil {
		return c.loadErr(ticket, err)
	}
	upcoming, err := c.store.FetchSchedulesFrom(ctx, from, 0)
	if err != nil {
		return c.loadErr(ticket, err)
	}

	fresh := make([]model.Task, 0, len(daily)+len(day)+len(due))
	fresh = append(fresh, daily...)
	fresh = append(fresh, day...)
	fresh = append(fresh, due...)

	// Accept and apply under one lock so a newer load always writes last.
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loader.Accept(ticket) {
		return ErrStaleLoad
	}
	c.replaceTasks(func(t model.Task) bool {
		switch t.Type {
		case model.TypeDaily:
			return true
		case model.TypeDay:
			return t.Date >= start && t.Date <= end
		case model.TypeDue:
			return t.Date >= from
		}
		return false
	}, fresh)
	c.replaceSchedules(func(s model.Schedule) bool {
		return s.Date >= from || (s.Date >= start && s.Date <= end)
	}, append(inRange, upcoming...))
	c.start, c.end = start, end
	c.recount()
	return nil
}

// loadErr reports a fetch failure, or ErrStaleLoad when a newer load
// cancelled this one
func (c *Controller) loadErr(ticket calendar.Ticket, err error) error {
	if !c.loader.Accept(ticket) {
		return ErrStaleLoad
	}
	return err
}

// refreshDay re-fetches the DAY list of one date
func (c *Controller) refreshDay(ctx context.Context, date string) error {
	if date == "" {
		return nil
	}
	fresh, err := c.store.FetchTasksByDate(ctx, date, model.TypeDay)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceTasks(func(t model.Task) bool {
		return t.Type == model.TypeDay && t.Date == date
	}, fresh)
	c.recount()
	return nil
}

// refreshDue re-fetches the DUE tasks from the start of the loaded range
func (c *Controller) refreshDue(ctx context.Context) error {
	c.mu.Lock()
	from := c.start
	c.mu.Unlock()
	if today := c.Today(); from == "" || today < from {
		from = today
	}

	fresh, err := c.store.FetchTasksFrom(ctx, model.TypeDue, from)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceTasks(func(t model.Task) bool {
		return t.Type == model.TypeDue && t.Date >= from
	}, fresh)
	c.recount()
	return nil
}

// replaceTasks swaps fetched rows in and re-applies edits that have not
// been written yet, so a refresh never reverts what the user just typed.
// Callers hold c.mu.
func (c *Controller) replaceTasks(stale func(model.Task) bool, fresh []model.Task) {
	c.state = c.state.ReplaceTasks(stale, fresh)
	for _, t := range fresh {
		if p, ok := c.pending[taskKey(t.ID)]; ok {
			c.state, _ = c.state.ApplyPatch(t.ID, p.task)
		}
	}
}

func (c *Controller) replaceSchedules(stale func(model.Schedule) bool, fresh []model.Schedule) {
	c.state = c.state.ReplaceSchedules(stale, fresh)
	for _, s := range fresh {
		if p, ok := c.pending[scheduleKey(s.ID)]; ok {
			c.state, _ = c.state.ApplySchedulePatch(s.ID, p.sched)
		}
	}
}

// recount rebuilds the counter of the selected date. Callers hold c.mu.
func (c *Controller) recount() {
	c.counter = aggregate.CountDay(c.state.DayList(c.selected))
}

// onSelected reports whether t is counted for the selected date.
// Callers hold c.mu.
func (c *Controller) onSelected(t model.Task) bool {
	return t.Type == model.TypeDay && t.Date == c.selected
}

func (c *Controller) notify(err error) {
	if err != nil && c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}

func sortManual(tasks []model.Task) []model.Task {
	out := append([]model.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool { return model.SortKey(out[i], out[j]) })
	return out
}
