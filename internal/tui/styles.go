package tui

import "github.com/charmbracelet/lipgloss"

// Color palette based on TUI design
var (
	// Chip colors
	ChipDayColor      = lipgloss.Color("#4ECDC4") // DAY - Teal
	ChipDueColor      = lipgloss.Color("#FF6B6B") // DUE - Red
	ChipScheduleColor = lipgloss.Color("#FFE66D") // SCHEDULE - Yellow

	// Status colors
	Completed = lipgloss.Color("#95E1A3") // Green
	Warning   = lipgloss.Color("#FFB347") // Orange
	Offline   = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Calendar column
	CalendarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(0, 1)

	// Day panel
	DayPanelStyle = lipgloss.NewStyle().
			Padding(0, 2)

	// Grid cells
	CellStyle = lipgloss.NewStyle().
			Width(cellWidth)

	CellTodayStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Foreground(Warning).
			Bold(true)

	CellSelectedStyle = lipgloss.NewStyle().
				Width(cellWidth).
				Background(Surface).
				Bold(true)

	WeekdayStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Foreground(TextMuted)

	// Chips
	ChipDayStyle      = lipgloss.NewStyle().Foreground(ChipDayColor)
	ChipDueStyle      = lipgloss.NewStyle().Foreground(ChipDueColor).Bold(true)
	ChipScheduleStyle = lipgloss.NewStyle().Foreground(ChipScheduleColor)

	// Section title in the day panel
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	// Task item
	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	// Countdown label
	LabelStyle = lipgloss.NewStyle().Foreground(Warning)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	ErrorStyle = lipgloss.NewStyle().Foreground(ChipDueColor)
)
