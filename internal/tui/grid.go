package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/dayboard/internal/calendar"
)

// cellWidth fits a day number and up to three chips
const cellWidth = 9

var chipGlyphs = map[calendar.ChipKind]struct {
	glyph string
	style lipgloss.Style
}{
	calendar.ChipDay:      {"●", ChipDayStyle},
	calendar.ChipDue:      {"!", ChipDueStyle},
	calendar.ChipSchedule: {"◆", ChipScheduleStyle},
}

// RenderGrid draws g as six rows of seven two-line cells under the
// weekday header
func RenderGrid(g calendar.Grid, header [7]string) string {
	head := make([]string, 0, 7)
	for _, name := range header {
		head = append(head, WeekdayStyle.Render(name))
	}

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, head...)}
	for _, row := range g.Rows() {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, renderCell(c))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c *calendar.Cell) string {
	if c == nil {
		return CellStyle.Render(" \n ")
	}

	style := CellStyle
	switch {
	case c.IsSelected:
		style = CellSelectedStyle
	case c.IsToday:
		style = CellTodayStyle
	}

	day := strconv.Itoa(c.Day)
	if c.IsToday {
		day += "*"
	}
	return style.Render(day + "\n" + renderChips(c.Chips))
}

func renderChips(chips []calendar.Chip) string {
	var b strings.Builder
	for _, chip := range chips {
		g, ok := chipGlyphs[chip.Kind]
		if !ok {
			continue
		}
		b.WriteString(g.style.Render(g.glyph + strconv.Itoa(chip.Count)))
	}
	if b.Len() == 0 {
		return " "
	}
	return b.String()
}
