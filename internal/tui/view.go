package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/dayboard/internal/calendar"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/preview"
)

// calendarWidth is the grid plus the column padding and border
const calendarWidth = 7*cellWidth + 3

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	calendarCol := m.renderCalendar()
	dayPanel := m.renderDay()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, calendarCol, dayPanel)

	switch m.mode {
	case ModeAddTask, ModeAddSchedule, ModeEditTitle, ModeConfirmDelete:
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderCalendar() string {
	month := m.view.Month()
	title := HeaderStyle.Render(month.Format("January 2006"))
	if m.loading {
		title += HelpStyle.Render(" loading...")
	}

	grid := calendar.BuildGrid(month, m.ctl.Result(), m.ctl.Today(), m.ctl.Selected())

	parts := []string{title, RenderGrid(grid, m.header), "", m.renderUpcoming()}
	return CalendarStyle.Render(strings.Join(parts, "\n"))
}

func (m Model) renderUpcoming() string {
	today := m.ctl.Today()
	state := m.ctl.State()
	panel := preview.Build(
		state.Schedules(nil),
		state.Tasks(func(t model.Task) bool { return t.Type == model.TypeDue }),
		today, m.opts.PreviewLimit,
	)

	var b strings.Builder
	b.WriteString(SectionStyle.Render("Upcoming schedules") + "\n")
	if len(panel.Schedules) == 0 {
		b.WriteString(HelpStyle.Render("  nothing planned") + "\n")
	}
	for _, e := range panel.Schedules {
		b.WriteString(fmt.Sprintf("  %s %s\n", LabelStyle.Render(padLabel(e.Label.Text)), truncate(e.Item.DisplayTitle(), 40)))
	}

	b.WriteString("\n" + SectionStyle.Render("Deadlines") + "\n")
	if len(panel.Due) == 0 {
		b.WriteString(HelpStyle.Render("  no deadlines") + "\n")
	}
	for _, e := range panel.Due {
		line := fmt.Sprintf("  %s %s", LabelStyle.Render(padLabel(e.Label.Text)), truncate(e.Item.DisplayTitle(), 40))
		if e.Item.IsCompleted {
			line = TaskDoneStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func padLabel(s string) string {
	return fmt.Sprintf("%-6s", s)
}

func (m Model) renderDay() string {
	day := m.ctl.Day()
	width := m.width - calendarWidth - 4
	if width < 30 {
		width = 30
	}

	var b strings.Builder

	heading := day.Date
	if t, err := dateutil.ParseKey(day.Date, m.opts.Location); err == nil {
		heading = fmt.Sprintf("%s (%s)", day.Date, dateutil.WeekdayShort(t, m.opts.Locale))
	}
	if label, err := dateutil.RelativeDayLabel(m.ctl.Today(), day.Date); err == nil {
		heading += "  " + LabelStyle.Render(label.Text)
	}
	b.WriteString(HeaderStyle.Render(heading) + "\n")

	c := day.Counter
	b.WriteString(fmt.Sprintf(" %s %d/%d (%d%%)\n\n", progressBar(c.Done, c.All, 20), c.Done, c.All, c.Percent()))

	items := m.items()
	if len(items) == 0 {
		b.WriteString(HelpStyle.Render(" Nothing on this day. Press 'a' to add a task.") + "\n")
	}

	section := ""
	for i, it := range items {
		if it.section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = it.section
			b.WriteString(SectionStyle.Render(section) + "\n")
		}
		b.WriteString(m.renderItem(it, i == m.cursor, width) + "\n")
	}

	return DayPanelStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderItem(it item, selected bool, width int) string {
	var line string
	if it.isSched {
		line = "◆ " + truncate(it.title(), width-6)
		if it.schedule.Content != "" {
			line += HelpStyle.Render(" …")
		}
	} else {
		check := "○"
		if it.task.IsCompleted {
			check = "✓"
		}
		line = check + " " + truncate(it.title(), width-12)
		if n := len(it.task.Links); n > 0 {
			line += HelpStyle.Render(fmt.Sprintf(" [%d]", n))
		}
		if m.ctl.Pending(it.task.ID) {
			line += HelpStyle.Render(" •")
		}
	}

	switch {
	case selected:
		return TaskItemSelectedStyle.Render(line)
	case !it.isSched && it.task.IsCompleted:
		return TaskDoneStyle.Render(line)
	default:
		return TaskItemStyle.Render(line)
	}
}

func (m Model) renderModal() string {
	var title, hint string
	switch m.mode {
	case ModeAddTask:
		title = "New task on " + m.ctl.Selected()
		date := "no date"
		if m.draft.DateEnabled() {
			date = m.draft.Date
		}
		hint = fmt.Sprintf("type: %s (%s)  tab: change type", m.draft.Type, date)
	case ModeAddSchedule:
		title = "New schedule on " + m.ctl.Selected()
		hint = "enter: save  esc: cancel"
	case ModeEditTitle:
		title = "Rename"
		hint = "changes are saved as you type"
	case ModeConfirmDelete:
		body := fmt.Sprintf("Delete %q?\n\n%s", truncate(m.target.title(), 40), HelpStyle.Render("y: delete  any other key: cancel"))
		return ModalStyle.Render(body)
	}

	body := HeaderStyle.Render(title) + "\n\n" + m.input.View() + "\n\n" + HelpStyle.Render(hint)
	return ModalStyle.Render(body)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	for _, k := range keys.helpBindings() {
		h := k.Help()
		b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
	}
	b.WriteString("\n" + HelpStyle.Render("press any key to close"))
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, b.String())
}

func (m Model) renderStatusBar() string {
	left := "?: help  a: add  x: done  q: quit"
	if m.opts.Session != nil && !m.opts.Session.IsPrivileged() {
		left = "read-only  " + left
	}
	if m.message != "" {
		if m.isError {
			left = ErrorStyle.Render(m.message)
		} else {
			left = m.message
		}
	}
	return StatusBarStyle.Width(m.width).Render(left)
}
