package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevDay   key.Binding
	NextDay   key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	Toggle    key.Binding
	Add       key.Binding
	Schedule  key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Paste     key.Binding
	Convert   key.Binding
	ToDue     key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Tab       key.Binding
	Enter     key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevDay:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous day")),
	NextDay:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
	PrevWeek:  key.NewBinding(key.WithKeys("pgup", "H"), key.WithHelp("H", "previous week")),
	NextWeek:  key.NewBinding(key.WithKeys("pgdown", "L"), key.WithHelp("L", "next week")),
	PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous month")),
	NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
	Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
	Toggle:    key.NewBinding(key.WithKeys("x", " ", "space"), key.WithHelp("x", "toggle done")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Schedule:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add schedule")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Paste:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste links")),
	Convert:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "DUE → DAY")),
	ToDue:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "DAY → DUE")),
	MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
	MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	Refresh:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "reload")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "change type")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
}

// helpBindings lists the bindings shown on the help screen, in order
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek, k.PrevMonth, k.NextMonth, k.Today,
		k.Toggle, k.Add, k.Schedule, k.Edit, k.Delete, k.Paste, k.Convert, k.ToDue,
		k.MoveUp, k.MoveDown, k.Refresh, k.Help, k.Quit,
	}
}
