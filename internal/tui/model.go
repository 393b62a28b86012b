package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"golang.org/x/text/language"

	"github.com/existflow/dayboard/internal/calendar"
	"github.com/existflow/dayboard/internal/controller"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/preview"
	"github.com/existflow/dayboard/internal/session"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeAddSchedule
	ModeEditTitle
	ModeConfirmDelete
	ModeHelp
)

// Options wires the TUI to an opened backend
type Options struct {
	Controller    *controller.Controller
	Session       *session.Session
	Location      *time.Location
	Locale        language.Tag
	PreviewLimit  int
	ConfirmDelete bool

	// Changes signals background state changes such as finished autosaves
	Changes <-chan struct{}
	// Errors carries failures of background writes
	Errors <-chan error
	// ReadClipboard returns the clipboard text
	ReadClipboard func() (string, error)
}

// item is one line of the day panel
type item struct {
	section  string
	task     model.Task
	schedule model.Schedule
	isSched  bool
}

func (it item) id() string {
	if it.isSched {
		return it.schedule.ID
	}
	return it.task.ID
}

func (it item) title() string {
	if it.isSched {
		return it.schedule.DisplayTitle()
	}
	return it.task.DisplayTitle()
}

// navigation records a month change requested by the calendar view
type navigation struct {
	month *time.Time
}

// Model is the main TUI model
type Model struct {
	opts   Options
	ctl    *controller.Controller
	view   *calendar.View
	nav    *navigation
	header [7]string

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Input
	input  textinput.Model
	draft  controller.Draft
	target item

	loading bool
	message string
	isError bool
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	logger.Info("Initializing TUI model")

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = preview.DefaultMax
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	ctl := opts.Controller
	nav := &navigation{}
	view := calendar.NewView(ctl.Selected(), opts.Location, time.Now())
	view.OnRangeChange(func(month time.Time, start, end string) {
		logger.Debug("Viewed month changed", logger.F("start", start), logger.F("end", end))
		m := month
		nav.month = &m
	})

	return Model{
		opts:   opts,
		ctl:    ctl,
		view:   view,
		nav:    nav,
		header: dateutil.WeekdayHeader(opts.Locale),
		mode:   ModeNormal,
		input:  ti,
	}
}

// items lists the selected day as DAILY, DAY, DUE then SCHEDULE lines
func (m Model) items() []item {
	day := m.ctl.Day()
	var out []item
	for _, t := range day.Daily {
		out = append(out, item{section: string(model.TypeDaily), task: t})
	}
	for _, t := range day.Day {
		out = append(out, item{section: string(model.TypeDay), task: t})
	}
	for _, t := range day.Due {
		out = append(out, item{section: string(model.TypeDue), task: t})
	}
	for _, s := range day.Schedules {
		out = append(out, item{section: "SCHEDULE", schedule: s, isSched: true})
	}
	return out
}

// current returns the item under the cursor
func (m Model) current() (item, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return item{}, false
	}
	return items[m.cursor], true
}

// dayIndex returns the position of the cursor within the DAY list
func (m Model) dayIndex() (int, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) || items[m.cursor].section != string(model.TypeDay) {
		return 0, false
	}
	idx := 0
	for i := 0; i < m.cursor; i++ {
		if items[i].section == string(model.TypeDay) {
			idx++
		}
	}
	return idx, true
}

func (m *Model) clampCursor() {
	n := len(m.items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// takeNavigation returns and clears a pending month change
func (m Model) takeNavigation() (time.Time, bool) {
	if m.nav.month == nil {
		return time.Time{}, false
	}
	month := *m.nav.month
	m.nav.month = nil
	return month, true
}

func (m *Model) notice(msg string) {
	m.message = msg
	m.isError = false
}

func (m *Model) fail(err error) {
	m.message = err.Error()
	m.isError = true
}
