package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/dayboard/internal/controller"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/internal/model"
)

// tickMsg is sent every minute so the today marker follows the clock
type tickMsg time.Time

// loadedMsg reports a finished month load
type loadedMsg struct {
	month time.Time
	err   error
}

// resultMsg reports a finished mutation
type resultMsg struct {
	text string
	err  error
}

// changedMsg is sent when a background write changed the state
type changedMsg struct{}

// writeErrMsg carries a background write failure
type writeErrMsg struct{ err error }

// Init loads the viewed month and starts listening for background changes
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.loadCmd(m.view.Month()), m.waitForChange(), m.waitForError())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadCmd(month time.Time) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		return loadedMsg{month: month, err: ctl.Load(context.Background(), month)}
	}
}

// waitForChange listens for background state changes
func (m Model) waitForChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	ch := m.opts.Changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// waitForError listens for background write failures
func (m Model) waitForError() tea.Cmd {
	if m.opts.Errors == nil {
		return nil
	}
	ch := m.opts.Errors
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return writeErrMsg{err: err}
	}
}

// mutate runs fn off the UI goroutine and reports its outcome
func mutate(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := fn(context.Background())
		return resultMsg{text: text, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case loadedMsg:
		if errors.Is(msg.err, controller.ErrStaleLoad) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			logger.Error("Failed to load month", logger.F("error", msg.err))
			m.fail(msg.err)
		}
		m.clampCursor()
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.fail(msg.err)
		} else if msg.text != "" {
			m.notice(msg.text)
		}
		m.clampCursor()
		return m, nil

	case changedMsg:
		m.clampCursor()
		return m, m.waitForChange()

	case writeErrMsg:
		m.fail(msg.err)
		return m, m.waitForError()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeAddTask, ModeAddSchedule, ModeEditTitle:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.PrevDay):
		return m.shiftDays(-1)

	case key.Matches(msg, keys.NextDay):
		return m.shiftDays(1)

	case key.Matches(msg, keys.PrevWeek):
		return m.shiftDays(-7)

	case key.Matches(msg, keys.NextWeek):
		return m.shiftDays(7)

	case key.Matches(msg, keys.PrevMonth):
		m.view.Prev()
		return m.selectDate(dateutil.MonthStart(m.view.Month()).Format(dateutil.KeyLayout))

	case key.Matches(msg, keys.NextMonth):
		m.view.Next()
		return m.selectDate(dateutil.MonthStart(m.view.Month()).Format(dateutil.KeyLayout))

	case key.Matches(msg, keys.Today):
		return m.selectDate(m.ctl.Today())

	case key.Matches(msg, keys.Refresh):
		m.loading = true
		m.notice("Reloading...")
		return m, m.loadCmd(m.view.Month())

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Toggle):
		return m.handleToggle()

	case key.Matches(msg, keys.Add):
		return m.startAddTask()

	case key.Matches(msg, keys.Schedule):
		return m.startAddSchedule()

	case key.Matches(msg, keys.Edit):
		return m.startEditTitle()

	case key.Matches(msg, keys.Delete):
		return m.handleDelete()

	case key.Matches(msg, keys.Paste):
		return m.handlePaste()

	case key.Matches(msg, keys.Convert):
		return m.handleConvert()

	case key.Matches(msg, keys.ToDue):
		return m.handleToDue()

	case key.Matches(msg, keys.MoveUp):
		return m.handleReorder(-1)

	case key.Matches(msg, keys.MoveDown):
		return m.handleReorder(1)
	}

	return m, nil
}

func (m Model) shiftDays(n int) (tea.Model, tea.Cmd) {
	next, err := dateutil.AddDays(m.ctl.Selected(), n)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	return m.selectDate(next)
}

// selectDate moves the selection and loads a new month when the view
// left the loaded one
func (m Model) selectDate(date string) (tea.Model, tea.Cmd) {
	if err := m.view.Select(date); err != nil {
		m.fail(err)
		return m, nil
	}
	if err := m.ctl.Select(date); err != nil {
		m.fail(err)
		return m, nil
	}
	m.cursor = 0
	m.message = ""

	if month, ok := m.takeNavigation(); ok {
		m.loading = true
		return m, m.loadCmd(month)
	}
	if !m.ctl.InRange(date) {
		m.loading = true
		return m, m.loadCmd(m.view.Month())
	}
	return m, nil
}

// writable reports whether the session may edit, noting why not
func (m *Model) writable() bool {
	if m.opts.Session != nil && !m.opts.Session.IsPrivileged() {
		m.fail(errors.New("read-only: sign in with an admin account to edit"))
		return false
	}
	return true
}

func (m Model) handleToggle() (tea.Model, tea.Cmd) {
	it, ok := m.current()
	if !ok || it.isSched || !m.writable() {
		return m, nil
	}
	ctl := m.ctl
	return m, mutate(func(ctx context.Context) (string, error) {
		t, err := ctl.ToggleComplete(ctx, it.task.ID)
		if err != nil {
			return "", err
		}
		if t.IsCompleted {
			return "✓ Completed: " + t.DisplayTitle(), nil
		}
		return "○ Reopened: " + t.DisplayTitle(), nil
	})
}

func (m Model) handleDelete() (tea.Model, tea.Cmd) {
	it, ok := m.current()
	if !ok || !m.writable() {
		return m, nil
	}
	m.target = it
	if m.opts.ConfirmDelete {
		m.mode = ModeConfirmDelete
		return m, nil
	}
	return m, m.deleteCmd(it)
}

func (m Model) deleteCmd(it item) tea.Cmd {
	ctl := m.ctl
	return mutate(func(ctx context.Context) (string, error) {
		var err error
		if it.isSched {
			err = ctl.DeleteSchedule(ctx, it.schedule.ID)
		} else {
			err = ctl.Delete(ctx, it.task.ID)
		}
		if err != nil {
			return "", err
		}
		return "Deleted: " + it.title(), nil
	})
}

// updateConfirm handles the delete confirmation
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y", "enter":
		return m, m.deleteCmd(m.target)
	}
	m.notice("Cancelled")
	return m, nil
}

func (m Model) handlePaste() (tea.Model, tea.Cmd) {
	it, ok := m.current()
	if !ok || it.isSched || m.opts.ReadClipboard == nil || !m.writable() {
		return m, nil
	}
	text, err := m.opts.ReadClipboard()
	if err != nil {
		m.fail(fmt.Errorf("failed to read clipboard: %w", err))
		return m, nil
	}
	n, err := m.ctl.PasteLinks(it.task.ID, text)
	switch {
	case err != nil:
		m.fail(err)
	case n == 0:
		m.notice("No http(s) links in clipboard")
	default:
		m.notice(fmt.Sprintf("Attached %d link(s)", n))
	}
	return m, nil
}

func (m Model) handleConvert() (tea.Model, tea.Cmd) {
	it, ok := m.current()
	if !ok || it.isSched || it.task.Type != model.TypeDue || !m.writable() {
		return m, nil
	}
	ctl, date := m.ctl, m.ctl.Selected()
	return m, mutate(func(ctx context.Context) (string, error) {
		t, err := ctl.ConvertDueToDay(ctx, it.task.ID, date)
		if err != nil {
			return "", err
		}
		return "Planned for today's list: " + t.DisplayTitle(), nil
	})
}

func (m Model) handleToDue() (tea.Model, tea.Cmd) {
	it, ok := m.current()
	if !ok || it.isSched || it.task.Type != model.TypeDay || !m.writable() {
		return m, nil
	}
	ctl := m.ctl
	return m, mutate(func(ctx context.Context) (string, error) {
		t, err := ctl.MoveDayToDue(ctx, it.task.ID)
		if err != nil {
			return "", err
		}
		return "Now a deadline: " + t.DisplayTitle(), nil
	})
}

func (m Model) handleReorder(delta int) (tea.Model, tea.Cmd) {
	from, ok := m.dayIndex()
	if !ok || !m.writable() {
		return m, nil
	}
	to := from + delta
	if to < 0 || to >= len(m.ctl.Day().Day) {
		return m, nil
	}
	m.cursor += delta
	ctl, date := m.ctl, m.ctl.Selected()
	return m, mutate(func(ctx context.Context) (string, error) {
		return "", ctl.Reorder(ctx, date, from, to)
	})
}

func (m Model) startAddTask() (tea.Model, tea.Cmd) {
	if !m.writable() {
		return m, nil
	}
	m.mode = ModeAddTask
	m.draft = controller.NewDraft(m.ctl.Selected())
	m.input.Reset()
	m.input.Placeholder = "What needs doing?"
	m.input.Focus()
	return m, nil
}

func (m Model) startAddSchedule() (tea.Model, tea.Cmd) {
	if !m.writable() {
		return m, nil
	}
	m.mode = ModeAddSchedule
	m.input.Reset()
	m.input.Placeholder = "Schedule title"
	m.input.Focus()
	return m, nil
}

func (m Model) startEditTitle() (tea.Model, tea.Cmd) {
	it, ok := m.current()
	if !ok || !m.writable() {
		return m, nil
	}
	m.mode = ModeEditTitle
	m.target = it
	if it.isSched {
		m.input.SetValue(it.schedule.Title)
	} else {
		m.input.SetValue(it.task.Title)
	}
	m.input.Placeholder = ""
	m.input.CursorEnd()
	m.input.Focus()
	return m, nil
}

// updateInput handles typing in the add and edit modes
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.mode
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		if mode == ModeEditTitle {
			return m, m.flushCmd()
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		return m.submitInput(mode)

	case mode == ModeAddTask && key.Matches(msg, keys.Tab):
		m.draft.SetType(nextType(m.draft.Type))
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	if value == before {
		return m, cmd
	}

	switch mode {
	case ModeAddTask:
		m.draft.SetTitle(value)
	case ModeEditTitle:
		// every keystroke is saved, the controller collapses them
		var err error
		if m.target.isSched {
			err = m.ctl.EditSchedule(m.target.schedule.ID, model.SchedulePatch{Title: &value})
		} else {
			err = m.ctl.Edit(m.target.task.ID, model.TaskPatch{Title: &value})
		}
		if err != nil {
			m.fail(err)
		}
	}
	return m, cmd
}

// flushCmd writes pending edits right away
func (m Model) flushCmd() tea.Cmd {
	ctl := m.ctl
	return mutate(func(ctx context.Context) (string, error) {
		return "", ctl.Flush(ctx)
	})
}

func (m Model) submitInput(mode Mode) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	switch mode {
	case ModeAddTask:
		draft := m.draft
		m.draft = controller.Draft{}
		return m, mutate(func(ctx context.Context) (string, error) {
			t, err := ctl.Create(ctx, draft)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Added %s: %s", t.Type, t.DisplayTitle()), nil
		})

	case ModeAddSchedule:
		title, date := m.input.Value(), ctl.Selected()
		return m, mutate(func(ctx context.Context) (string, error) {
			s, err := ctl.CreateSchedule(ctx, model.Schedule{Date: date, Title: title})
			if err != nil {
				return "", err
			}
			return "Scheduled: " + s.DisplayTitle(), nil
		})

	case ModeEditTitle:
		return m, m.flushCmd()
	}
	return m, nil
}

// nextType cycles DAY → DUE → DAILY → DAY
func nextType(t model.TaskType) model.TaskType {
	switch t {
	case model.TypeDay:
		return model.TypeDue
	case model.TypeDue:
		return model.TypeDaily
	default:
		return model.TypeDay
	}
}
