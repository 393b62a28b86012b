package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/dayboard/internal/controller"
	"github.com/existflow/dayboard/internal/db"
	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/session"
)

func fixedNow() time.Time {
	return time.Date(2025, time.November, 5, 9, 30, 0, 0, time.Local)
}

type harness struct {
	m  Model
	gw *gateway.Gateway
}

func newHarness(t *testing.T, ident session.Identity, seed ...model.Task) *harness {
	t.Helper()
	ctx := context.Background()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	gw := gateway.New(database)
	for _, task := range seed {
		if _, err := gw.CreateTask(ctx, task); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	sess := session.New(session.Static(ident))
	if err := sess.Initialize(ctx); err != nil {
		t.Fatalf("session: %v", err)
	}
	t.Cleanup(sess.Teardown)

	ctl := controller.New(gw, controller.Options{Clock: fixedNow, Debounce: time.Hour})
	t.Cleanup(ctl.Close)

	h := &harness{gw: gw, m: NewModel(Options{
		Controller:    ctl,
		Session:       sess,
		Location:      time.Local,
		ConfirmDelete: true,
		ReadClipboard: func() (string, error) { return "see https://a.example and https://b.example", nil },
	})}
	h.send(tea.WindowSizeMsg{Width: 140, Height: 40})
	h.run(h.m.loadCmd(h.m.view.Month()))
	return h
}

// send feeds msg to the model and returns the produced command
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// run executes cmd and feeds its message back
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		h.send(msg)
	}
}

func (h *harness) press(k string) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	h.run(h.send(msg))
}

var editor = session.Identity{UserID: "u1", Name: "owner", Privileged: true}

func TestToggleUpdatesCounterAndStore(t *testing.T) {
	h := newHarness(t, editor,
		model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-05"},
		model.Task{Title: "review", Type: model.TypeDay, Date: "2025-11-05"},
	)

	if got := len(h.m.items()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}

	h.press("x")

	if c := h.m.ctl.Counter(); c.Done != 1 || c.All != 2 {
		t.Fatalf("counter = %+v, want 1/2", c)
	}
	if !strings.HasPrefix(h.m.message, "✓ Completed") {
		t.Fatalf("message = %q", h.m.message)
	}

	tasks, err := h.gw.FetchTasksByDate(context.Background(), "2025-11-05", model.TypeDay)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	done := 0
	for _, task := range tasks {
		if task.IsCompleted {
			done++
		}
	}
	if done != 1 {
		t.Fatalf("stored completed = %d, want 1", done)
	}
}

func TestReadOnlySessionCannotEdit(t *testing.T) {
	h := newHarness(t, session.Anonymous,
		model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-05"},
	)

	h.press("x")

	if !h.m.isError || !strings.Contains(h.m.message, "read-only") {
		t.Fatalf("message = %q, want read-only error", h.m.message)
	}
	if c := h.m.ctl.Counter(); c.Done != 0 {
		t.Fatalf("counter changed for visitor: %+v", c)
	}

	h.press("a")
	if h.m.mode != ModeNormal {
		t.Fatalf("mode = %v, visitor opened the add form", h.m.mode)
	}
}

func TestAddTaskSuggestsType(t *testing.T) {
	h := newHarness(t, editor)

	h.press("a")
	if h.m.mode != ModeAddTask {
		t.Fatalf("mode = %v, want add task", h.m.mode)
	}
	h.press("submit report deadline")
	if h.m.draft.Type != model.TypeDue {
		t.Fatalf("suggested type = %s, want DUE", h.m.draft.Type)
	}

	h.press("tab")
	if h.m.draft.Type != model.TypeDaily || !h.m.draft.TypeTouched {
		t.Fatalf("tab gave %s, want DAILY chosen", h.m.draft.Type)
	}
	h.press("enter")

	if h.m.mode != ModeNormal {
		t.Fatalf("mode = %v after submit", h.m.mode)
	}
	daily := h.m.ctl.Day().Daily
	if len(daily) != 1 || daily[0].Title != "submit report deadline" {
		t.Fatalf("daily = %+v", daily)
	}
}

func TestNavigationLoadsNewMonth(t *testing.T) {
	h := newHarness(t, editor,
		model.Task{Title: "october", Type: model.TypeDay, Date: "2025-10-31"},
	)

	h.press("l")
	if got := h.m.ctl.Selected(); got != "2025-11-06" {
		t.Fatalf("selected = %s, want 2025-11-06", got)
	}

	h.press("[")
	if got := h.m.ctl.Selected(); got != "2025-10-01" {
		t.Fatalf("selected = %s, want 2025-10-01", got)
	}
	if start, _ := h.m.ctl.Range(); start != "2025-10-01" {
		t.Fatalf("loaded range starts %s, want October", start)
	}

	h.press("t")
	if got := h.m.ctl.Selected(); got != "2025-11-05" {
		t.Fatalf("selected = %s, want today", got)
	}
	if start, _ := h.m.ctl.Range(); start != "2025-11-01" {
		t.Fatalf("loaded range starts %s, want November", start)
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	h := newHarness(t, editor,
		model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-05"},
	)

	h.press("d")
	if h.m.mode != ModeConfirmDelete {
		t.Fatalf("mode = %v, want confirm", h.m.mode)
	}
	h.press("n")
	if len(h.m.items()) != 1 {
		t.Fatal("task removed without confirmation")
	}

	h.press("d")
	h.press("y")
	if len(h.m.items()) != 0 {
		t.Fatalf("items = %d after delete", len(h.m.items()))
	}
}

func TestPasteAttachesLinks(t *testing.T) {
	h := newHarness(t, editor,
		model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-05"},
	)

	h.press("p")

	it, _ := h.m.current()
	if len(it.task.Links) != 2 {
		t.Fatalf("links = %v, want 2", it.task.Links)
	}
	if h.m.message != "Attached 2 link(s)" {
		t.Fatalf("message = %q", h.m.message)
	}
}

func TestReorderMovesWithinDay(t *testing.T) {
	h := newHarness(t, editor,
		model.Task{Title: "first", Type: model.TypeDay, Date: "2025-11-05", SortOrder: model.Ptr(1)},
		model.Task{Title: "second", Type: model.TypeDay, Date: "2025-11-05", SortOrder: model.Ptr(2)},
	)

	h.press("J")

	day := h.m.ctl.Day().Day
	if day[0].Title != "second" || day[1].Title != "first" {
		t.Fatalf("order = %s, %s", day[0].Title, day[1].Title)
	}
	if h.m.cursor != 1 {
		t.Fatalf("cursor = %d, want it to follow the task", h.m.cursor)
	}
}

func TestViewShowsMonthAndDay(t *testing.T) {
	h := newHarness(t, editor,
		model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-05"},
		model.Task{Title: "tax", Type: model.TypeDue, Date: "2025-11-07"},
	)

	out := h.m.View()
	for _, want := range []string{"November 2025", "write post", "D-DAY", "D-2", "tax"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
