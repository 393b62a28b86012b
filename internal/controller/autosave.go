package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/dayboard/internal/model"
)

// pendingWrite is the not yet persisted part of one entity's edits. Each
// entity id has its own timer; rearming bumps seq so an already fired
// timer of an older arm does nothing.
type pendingWrite struct {
	id       string
	schedule bool
	task     model.TaskPatch
	sched    model.SchedulePatch
	timer    Timer
	seq      uint64

	// fromDate and fromType are the task's values before the first
	// queued edit, for refreshing the buckets it leaves
	fromDate string
	fromType model.TaskType
}

func taskKey(id string) string     { return "task:" + id }
func scheduleKey(id string) string { return "schedule:" + id }

// ErrClosed is returned for edits and creates after Close
var ErrClosed = errors.New("controller closed")

// Edit applies patch to the task locally at once and schedules the remote
// write. Edits to the same task inside the debounce window are merged into
// one write carrying the latest values.
func (c *Controller) Edit(id string, patch model.TaskPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	cur, ok := c.state.Task(id)
	if !ok {
		return fmt.Errorf("task %s is not loaded", id)
	}
	if err := checkEdit(cur, patch); err != nil {
		return err
	}

	c.state, _ = c.state.ApplyPatch(id, patch)
	c.recount()

	p := c.arm(taskKey(id), id, false)
	if p.task.IsEmpty() {
		p.fromDate, p.fromType = cur.Date, cur.Type
	}
	p.task = p.task.Merge(patch)
	return nil
}

// EditSchedule is the schedule counterpart of Edit
func (c *Controller) EditSchedule(id string, patch model.SchedulePatch) error {
	if patch.IsEmpty() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	cur, ok := c.state.Schedule(id)
	if !ok {
		return fmt.Errorf("schedule %s is not loaded", id)
	}
	if err := model.ValidateSchedule(patch.Apply(cur)); err != nil {
		return err
	}

	c.state, _ = c.state.ApplySchedulePatch(id, patch)

	p := c.arm(scheduleKey(id), id, true)
	p.sched = p.sched.Merge(patch)
	return nil
}

// checkEdit rejects edits that would leave the task invalid. Type changes
// go through ConvertDueToDay and MoveDayToDue, which also reset the
// position and date; DAILY tasks never change type.
func checkEdit(cur model.Task, patch model.TaskPatch) error {
	if patch.Type != nil && *patch.Type != cur.Type {
		if cur.Type == model.TypeDaily || *patch.Type == model.TypeDaily {
			return &model.ValidationError{Field: "type", Reason: "DAILY tasks cannot be converted"}
		}
		return &model.ValidationError{Field: "type", Reason: "convert the task to change its type"}
	}
	return model.ValidateTask(patch.Apply(cur))
}

// arm (re)starts the debounce timer of key. Callers hold c.mu.
func (c *Controller) arm(key, id string, schedule bool) *pendingWrite {
	p, ok := c.pending[key]
	if !ok {
		p = &pendingWrite{id: id, schedule: schedule}
		c.pending[key] = p
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	seq := p.seq
	p.timer = c.opts.AfterFunc(c.opts.Debounce, func() { c.fire(key, seq) })
	return p
}

// fire sends the pending write of key if it is still the latest arm
func (c *Controller) fire(key string, seq uint64) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok || p.seq != seq || c.closed {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	if err := c.send(context.Background(), p); err != nil {
		c.notify(err)
	}
	c.changed()
}

// cancel drops the pending write of key. Callers hold c.mu.
func (c *Controller) cancel(key string) {
	if p, ok := c.pending[key]; ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(c.pending, key)
	}
}

// send persists a pending write and folds the stored row back into state.
// Edits made while the write was in flight stay on top of the stored row.
func (c *Controller) send(ctx context.Context, p *pendingWrite) error {
	if p.schedule {
		saved, err := c.store.UpdateSchedule(ctx, p.id, p.sched)
		if err != nil {
			return fmt.Errorf("failed to save schedule %s: %w", p.id, err)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.state.Schedule(p.id); !ok {
			return nil
		}
		c.state = c.state.UpsertSchedules(saved)
		if next, ok := c.pending[scheduleKey(p.id)]; ok {
			c.state, _ = c.state.ApplySchedulePatch(p.id, next.sched)
		}
		return nil
	}

	saved, err := c.store.UpdateTask(ctx, p.id, p.task)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", p.id, err)
	}
	c.mu.Lock()
	if _, ok := c.state.Task(p.id); !ok {
		c.mu.Unlock()
		return nil
	}
	c.state = c.state.UpsertTasks(saved)
	if next, ok := c.pending[taskKey(p.id)]; ok {
		c.state, _ = c.state.ApplyPatch(p.id, next.task)
	}
	c.recount()
	c.mu.Unlock()

	if p.task.Date == nil && !p.task.ClearDate && p.task.Type == nil {
		return nil
	}
	// the task may have left or joined a bucket
	var errs []error
	if p.fromType == model.TypeDay {
		errs = append(errs, c.refreshDay(ctx, p.fromDate))
	}
	if saved.Type == model.TypeDay && saved.Date != p.fromDate {
		errs = append(errs, c.refreshDay(ctx, saved.Date))
	}
	if p.fromType == model.TypeDue || saved.Type == model.TypeDue {
		errs = append(errs, c.refreshDue(ctx))
	}
	return errors.Join(errs...)
}

// Pending reports whether the task or schedule id has an unsent edit
func (c *Controller) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, task := c.pending[taskKey(id)]
	_, sched := c.pending[scheduleKey(id)]
	return task || sched
}

// Flush sends every pending write now
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	writes := make([]*pendingWrite, 0, len(c.pending))
	for key, p := range c.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		writes = append(writes, p)
		delete(c.pending, key)
	}
	c.mu.Unlock()

	var errs []error
	for _, p := range writes {
		if err := c.send(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close cancels all pending writes. Further edits fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.pending {
		c.cancel(key)
	}
	c.closed = true
	c.loader.Stop()
}
