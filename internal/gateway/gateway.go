// Package gateway is the data-access layer over the tasks and schedule
// collections. It issues narrow, purpose-built queries and turns loosely
// typed backend rows into validated model values.
package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
)

// Gateway maps UI needs onto backend queries
type Gateway struct {
	backend Backend
}

// New creates a gateway over the given backend
func New(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Backend returns the underlying row store
func (g *Gateway) Backend() Backend {
	return g.backend
}

var (
	byManualOrder = Query{Order: []Order{{Column: "sort_order"}, {Column: "id"}}}
	byDate        = Query{Order: []Order{{Column: "date"}, {Column: "id"}}}
)

// FetchTasksByDate returns tasks of one type on one date in manual order
func (g *Gateway) FetchTasksByDate(ctx context.Context, date string, typ model.TaskType) ([]model.Task, error) {
	const op = "fetch tasks by date"
	if err := checkDate(op, date); err != nil {
		return nil, err
	}
	q := byManualOrder.Where("type", OpEq, string(typ)).Where("date", OpEq, date)
	return g.selectTasks(ctx, op, q)
}

// FetchTasksFrom returns tasks of one type dated start or later
func (g *Gateway) FetchTasksFrom(ctx context.Context, typ model.TaskType, start string) ([]model.Task, error) {
	const op = "fetch tasks from date"
	if err := checkDate(op, start); err != nil {
		return nil, err
	}
	q := byDate.Where("type", OpEq, string(typ)).Where("date", OpGte, start)
	return g.selectTasks(ctx, op, q)
}

// FetchDailyTasks returns all DAILY tasks in manual order
func (g *Gateway) FetchDailyTasks(ctx context.Context) ([]model.Task, error) {
	q := byManualOrder.Where("type", OpEq, string(model.TypeDaily))
	return g.selectTasks(ctx, "fetch daily tasks", q)
}

// FetchTasksInRange returns tasks of one type dated within [start, end]
func (g *Gateway) FetchTasksInRange(ctx context.Context, typ model.TaskType, start, end string) ([]model.Task, error) {
	const op = "fetch tasks in range"
	if err := checkRange(op, start, end); err != nil {
		return nil, err
	}
	q := byDate.Where("type", OpEq, string(typ)).Where("date", OpGte, start).Where("date", OpLte, end)
	return g.selectTasks(ctx, op, q)
}

// FetchSchedulesInRange returns schedules dated within [start, end]
func (g *Gateway) FetchSchedulesInRange(ctx context.Context, start, end string) ([]model.Schedule, error) {
	const op = "fetch schedules in range"
	if err := checkRange(op, start, end); err != nil {
		return nil, err
	}
	q := byDate.Where("date", OpGte, start).Where("date", OpLte, end)
	return g.selectSchedules(ctx, op, q)
}

// FetchSchedulesFrom returns up to limit schedules dated start or later.
// A zero limit returns all of them.
func (g *Gateway) FetchSchedulesFrom(ctx context.Context, start string, limit int) ([]model.Schedule, error) {
	const op = "fetch schedules from date"
	if err := checkDate(op, start); err != nil {
		return nil, err
	}
	q := byDate.Where("date", OpGte, start).Range(0, limit)
	return g.selectSchedules(ctx, op, q)
}

// GetTask fetches a single task by id
func (g *Gateway) GetTask(ctx context.Context, id string) (model.Task, error) {
	const op = "get task"
	tasks, err := g.selectTasks(ctx, op, Query{}.Where("id", OpEq, id).Range(0, 1))
	if err != nil {
		return model.Task{}, err
	}
	if len(tasks) == 0 {
		return model.Task{}, &Error{Op: op, Kind: KindNotFound, Err: ErrNotFound}
	}
	return tasks[0], nil
}

// GetSchedule fetches a single schedule by id
func (g *Gateway) GetSchedule(ctx context.Context, id string) (model.Schedule, error) {
	const op = "get schedule"
	items, err := g.selectSchedules(ctx, op, Query{}.Where("id", OpEq, id).Range(0, 1))
	if err != nil {
		return model.Schedule{}, err
	}
	if len(items) == 0 {
		return model.Schedule{}, &Error{Op: op, Kind: KindNotFound, Err: ErrNotFound}
	}
	return items[0], nil
}

// CreateTask inserts a new task. The backend assigns id and timestamps.
func (g *Gateway) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	const op = "create task"
	if t.Type == model.TypeDaily {
		t.Date = ""
	}
	if err := model.ValidateNewTask(t); err != nil {
		return model.Task{}, validationErr(op, err)
	}
	row, err := g.backend.Insert(ctx, CollectionTasks, TaskRow(t))
	if err != nil {
		return model.Task{}, wrap(op, err)
	}
	created, err := ParseTask(row)
	if err != nil {
		return model.Task{}, malformedErr(op, err)
	}
	return created, nil
}

// UpdateTask applies a partial update and returns the stored task
func (g *Gateway) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	const op = "update task"
	if strings.TrimSpace(id) == "" {
		return model.Task{}, validationErr(op, &model.ValidationError{Field: "id", Reason: "required"})
	}
	if err := checkTaskPatch(patch); err != nil {
		return model.Task{}, validationErr(op, err)
	}
	row, err := g.backend.Update(ctx, CollectionTasks, id, TaskPatchRow(patch))
	if err != nil {
		return model.Task{}, wrap(op, err)
	}
	updated, err := ParseTask(row)
	if err != nil {
		return model.Task{}, malformedErr(op, err)
	}
	return updated, nil
}

// DeleteTask removes a task
func (g *Gateway) DeleteTask(ctx context.Context, id string) error {
	const op = "delete task"
	if strings.TrimSpace(id) == "" {
		return validationErr(op, &model.ValidationError{Field: "id", Reason: "required"})
	}
	return wrap(op, g.backend.Delete(ctx, CollectionTasks, id))
}

// CreateSchedule inserts a new schedule
func (g *Gateway) CreateSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error) {
	const op = "create schedule"
	if err := model.ValidateSchedule(s); err != nil {
		return model.Schedule{}, validationErr(op, err)
	}
	row, err := g.backend.Insert(ctx, CollectionSchedule, ScheduleRow(s))
	if err != nil {
		return model.Schedule{}, wrap(op, err)
	}
	created, err := ParseSchedule(row)
	if err != nil {
		return model.Schedule{}, malformedErr(op, err)
	}
	return created, nil
}

// UpdateSchedule applies a partial update and returns the stored schedule
func (g *Gateway) UpdateSchedule(ctx context.Context, id string, patch model.SchedulePatch) (model.Schedule, error) {
	const op = "update schedule"
	if strings.TrimSpace(id) == "" {
		return model.Schedule{}, validationErr(op, &model.ValidationError{Field: "id", Reason: "required"})
	}
	if patch.Date != nil && !dateutil.ValidKey(*patch.Date) {
		return model.Schedule{}, validationErr(op, &model.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"})
	}
	row, err := g.backend.Update(ctx, CollectionSchedule, id, SchedulePatchRow(patch))
	if err != nil {
		return model.Schedule{}, wrap(op, err)
	}
	updated, err := ParseSchedule(row)
	if err != nil {
		return model.Schedule{}, malformedErr(op, err)
	}
	return updated, nil
}

// DeleteSchedule removes a schedule
func (g *Gateway) DeleteSchedule(ctx context.Context, id string) error {
	const op = "delete schedule"
	if strings.TrimSpace(id) == "" {
		return validationErr(op, &model.ValidationError{Field: "id", Reason: "required"})
	}
	return wrap(op, g.backend.Delete(ctx, CollectionSchedule, id))
}

func (g *Gateway) selectTasks(ctx context.Context, op string, q Query) ([]model.Task, error) {
	rows, err := g.backend.Select(ctx, CollectionTasks, q)
	if err != nil {
		return nil, wrap(op, err)
	}
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		t, err := ParseTask(row)
		if err != nil {
			return nil, malformedErr(op, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (g *Gateway) selectSchedules(ctx context.Context, op string, q Query) ([]model.Schedule, error) {
	rows, err := g.backend.Select(ctx, CollectionSchedule, q)
	if err != nil {
		return nil, wrap(op, err)
	}
	items := make([]model.Schedule, 0, len(rows))
	for _, row := range rows {
		s, err := ParseSchedule(row)
		if err != nil {
			return nil, malformedErr(op, err)
		}
		items = append(items, s)
	}
	return items, nil
}

func checkDate(op, key string) error {
	if !dateutil.ValidKey(key) {
		return validationErr(op, &model.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD, got " + key})
	}
	return nil
}

func checkRange(op, start, end string) error {
	if err := checkDate(op, start); err != nil {
		return err
	}
	if err := checkDate(op, end); err != nil {
		return err
	}
	if end < start {
		return validationErr(op, errors.New("range end is before start"))
	}
	return nil
}

func checkTaskPatch(p model.TaskPatch) error {
	if p.IsEmpty() {
		return &model.ValidationError{Field: "patch", Reason: "nothing to update"}
	}
	if p.Type != nil && !p.Type.Valid() {
		return &model.ValidationError{Field: "type", Reason: "unknown task type " + string(*p.Type)}
	}
	if p.Date != nil && !dateutil.ValidKey(*p.Date) {
		return &model.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD, got " + *p.Date}
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return &model.ValidationError{Field: "sort_order", Reason: "must not be negative"}
	}
	return nil
}
