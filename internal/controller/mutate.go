package controller

import (
	"context"
	"fmt"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
)

// Create inserts the draft as a new open, unordered task
func (c *Controller) Create(ctx context.Context, d Draft) (model.Task, error) {
	if c.isClosed() {
		return model.Task{}, ErrClosed
	}
	t := d.Task()
	if err := model.ValidateNewTask(t); err != nil {
		return model.Task{}, err
	}

	created, err := c.store.CreateTask(ctx, t)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	c.mu.Lock()
	c.state = c.state.UpsertTasks(created)
	if c.onSelected(created) {
		c.counter = c.counter.Add(created)
	}
	c.mu.Unlock()
	return created, nil
}

// ToggleComplete flips the completion flag at once and writes it. The flip
// is reverted when the write fails.
func (c *Controller) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	c.mu.Lock()
	cur, ok := c.state.Task(id)
	if !ok {
		c.mu.Unlock()
		return model.Task{}, fmt.Errorf("task %s is not loaded", id)
	}
	done := !cur.IsCompleted
	c.state, _ = c.state.ApplyPatch(id, model.TaskPatch{IsCompleted: &done})
	if c.onSelected(cur) {
		c.counter = c.counter.Toggle(done)
	}
	c.mu.Unlock()

	saved, err := c.store.UpdateTask(ctx, id, model.TaskPatch{IsCompleted: &done})
	if err != nil {
		c.mu.Lock()
		if now, ok := c.state.Task(id); ok && now.IsCompleted == done {
			c.state, _ = c.state.ApplyPatch(id, model.TaskPatch{IsCompleted: &cur.IsCompleted})
			if c.onSelected(now) {
				c.counter = c.counter.Toggle(cur.IsCompleted)
			}
		}
		c.mu.Unlock()
		err = fmt.Errorf("failed to update task %s: %w", id, err)
		c.notify(err)
		return model.Task{}, err
	}

	return saved, nil
}

// Delete removes the task locally, cancels its pending autosave and
// deletes it remotely. On failure the task and counters are restored. The
// task's date is re-fetched either way.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	c.cancel(taskKey(id))
	cur, ok := c.state.Task(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("task %s is not loaded", id)
	}
	c.state = c.state.RemoveTask(id)
	if c.onSelected(cur) {
		c.counter = c.counter.Remove(cur)
	}
	c.mu.Unlock()

	err := c.store.DeleteTask(ctx, id)
	if err != nil && !gateway.IsNotFound(err) {
		c.mu.Lock()
		c.state = c.state.UpsertTasks(cur)
		if c.onSelected(cur) {
			c.counter = c.counter.Add(cur)
		}
		c.mu.Unlock()
		err = fmt.Errorf("failed to delete task %s: %w", id, err)
		c.notify(err)
		return err
	}

	switch cur.Type {
	case model.TypeDay:
		c.notify(c.refreshDay(ctx, cur.Date))
	case model.TypeDue:
		c.notify(c.refreshDue(ctx))
	}
	return nil
}

// Reorder moves the DAY task at index from to index to within date's list
// and stamps every task with its 1-based position. Only rows whose
// position changed are written.
func (c *Controller) Reorder(ctx context.Context, date string, from, to int) error {
	c.mu.Lock()
	list := c.state.DayList(date)
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		c.mu.Unlock()
		return &model.ValidationError{Field: "index", Reason: fmt.Sprintf("out of range for %d tasks", len(list))}
	}

	moved := list[from]
	list = append(list[:from], list[from+1:]...)
	list = append(list[:to], append([]model.Task{moved}, list[to:]...)...)

	type write struct {
		id  string
		pos int
	}
	var writes []write
	for i, t := range list {
		pos := i + 1
		if t.SortOrder != nil && *t.SortOrder == pos {
			continue
		}
		c.state, _ = c.state.ApplyPatch(t.ID, model.TaskPatch{SortOrder: &pos})
		writes = append(writes, write{id: t.ID, pos: pos})
	}
	c.mu.Unlock()

	for _, w := range writes {
		pos := w.pos
		if _, err := c.store.UpdateTask(ctx, w.id, model.TaskPatch{SortOrder: &pos}); err != nil {
			err = fmt.Errorf("failed to reorder task %s: %w", w.id, err)
			c.notify(err)
			c.notify(c.refreshDay(ctx, date))
			return err
		}
	}
	return nil
}

// ConvertDueToDay turns a DUE task into a DAY task on date with no manual
// position, then re-fetches both lists.
func (c *Controller) ConvertDueToDay(ctx context.Context, id, date string) (model.Task, error) {
	day := model.TypeDay
	return c.convert(ctx, id, model.TypeDue, model.TaskPatch{
		Type:           &day,
		Date:           &date,
		ClearSortOrder: true,
	})
}

// MoveDayToDue turns a DAY task into a DUE task keeping its date
func (c *Controller) MoveDayToDue(ctx context.Context, id string) (model.Task, error) {
	due := model.TypeDue
	return c.convert(ctx, id, model.TypeDay, model.TaskPatch{
		Type:           &due,
		ClearSortOrder: true,
	})
}

func (c *Controller) convert(ctx context.Context, id string, want model.TaskType, patch model.TaskPatch) (model.Task, error) {
	c.mu.Lock()
	cur, ok := c.state.Task(id)
	if !ok {
		c.mu.Unlock()
		return model.Task{}, fmt.Errorf("task %s is not loaded", id)
	}
	if cur.Type != want {
		c.mu.Unlock()
		return model.Task{}, &model.ValidationError{Field: "type", Reason: fmt.Sprintf("task is %s, not %s", cur.Type, want)}
	}
	next := patch.Apply(cur)
	if err := model.ValidateTask(next); err != nil {
		c.mu.Unlock()
		return model.Task{}, err
	}
	if p, ok := c.pending[taskKey(id)]; ok {
		// The conversion wins over queued edits of the same fields.
		p.task = p.task.Merge(patch)
	}
	c.state = c.state.UpsertTasks(next)
	c.recount()
	c.mu.Unlock()

	saved, err := c.store.UpdateTask(ctx, id, patch)
	if err != nil {
		c.mu.Lock()
		c.state = c.state.UpsertTasks(cur)
		c.recount()
		c.mu.Unlock()
		err = fmt.Errorf("failed to convert task %s: %w", id, err)
		c.notify(err)
		return model.Task{}, err
	}

	c.notify(c.refreshDay(ctx, saved.Date))
	if cur.Date != saved.Date {
		c.notify(c.refreshDay(ctx, cur.Date))
	}
	c.notify(c.refreshDue(ctx))
	return saved, nil
}

// CreateSchedule inserts a schedule
func (c *Controller) CreateSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error) {
	if c.isClosed() {
		return model.Schedule{}, ErrClosed
	}
	if err := model.ValidateSchedule(s); err != nil {
		return model.Schedule{}, err
	}
	created, err := c.store.CreateSchedule(ctx, s)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to create schedule: %w", err)
	}
	c.mu.Lock()
	c.state = c.state.UpsertSchedules(created)
	c.mu.Unlock()
	return created, nil
}

// DeleteSchedule removes a schedule, restoring it when the store fails
func (c *Controller) DeleteSchedule(ctx context.Context, id string) error {
	c.mu.Lock()
	c.cancel(scheduleKey(id))
	cur, ok := c.state.Schedule(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("schedule %s is not loaded", id)
	}
	c.state = c.state.RemoveSchedule(id)
	c.mu.Unlock()

	if err := c.store.DeleteSchedule(ctx, id); err != nil && !gateway.IsNotFound(err) {
		c.mu.Lock()
		c.state = c.state.UpsertSchedules(cur)
		c.mu.Unlock()
		err = fmt.Errorf("failed to delete schedule %s: %w", id, err)
		c.notify(err)
		return err
	}
	return nil
}
