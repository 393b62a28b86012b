// Package calendar lays out a month as a fixed 6x7 grid and tracks the
// viewed month and selected date.
package calendar

import (
	"time"

	"github.com/existflow/dayboard/internal/aggregate"
	"github.com/existflow/dayboard/internal/dateutil"
)

// Cells is the fixed number of cells in a month grid
const Cells = 42

// ChipKind identifies an indicator shown on a day cell
type ChipKind string

const (
	ChipDay      ChipKind = "DAY"
	ChipDue      ChipKind = "DUE"
	ChipSchedule ChipKind = "SCHEDULE"
)

// Chip is a non-zero count badge on a day cell
type Chip struct {
	Kind  ChipKind `json:"kind"`
	Count int      `json:"count"`
}

// Cell is one day of the grid
type Cell struct {
	Day        int    `json:"day"`
	Key        string `json:"key"`
	IsToday    bool   `json:"is_today"`
	IsSelected bool   `json:"is_selected"`
	Chips      []Chip `json:"chips"`
}

// Grid is a month laid out in six rows of seven days starting on Sunday.
// Cells before the 1st and after the last day are nil.
type Grid struct {
	Month string  `json:"month"`
	Cells []*Cell `json:"cells"`
}

// BuildGrid lays out month with counts taken from res. The grid always has
// 42 cells so its height does not change between months.
func BuildGrid(month time.Time, res aggregate.Result, today, selected string) Grid {
	first := dateutil.MonthStart(month)
	lead := int(first.Weekday())
	days := dateutil.DaysIn(first.Year(), first.Month())

	g := Grid{
		Month: first.Format(dateutil.MonthLayout),
		Cells: make([]*Cell, Cells),
	}
	for d := 1; d <= days; d++ {
		key := dateutil.KeyIn(first.AddDate(0, 0, d-1), first.Location())
		g.Cells[lead+d-1] = &Cell{
			Day:        d,
			Key:        key,
			IsToday:    key == today,
			IsSelected: key == selected,
			Chips:      chips(res.Bucket(key)),
		}
	}
	return g
}

func chips(b aggregate.Bucket) []Chip {
	day, due, sched := b.Counts()
	var out []Chip
	if day > 0 {
		out = append(out, Chip{Kind: ChipDay, Count: day})
	}
	if due > 0 {
		out = append(out, Chip{Kind: ChipDue, Count: due})
	}
	if sched > 0 {
		out = append(out, Chip{Kind: ChipSchedule, Count: sched})
	}
	return out
}

// Rows splits the grid into its six weeks
func (g Grid) Rows() [][]*Cell {
	rows := make([][]*Cell, 0, Cells/7)
	for i := 0; i < len(g.Cells); i += 7 {
		rows = append(rows, g.Cells[i:i+7])
	}
	return rows
}

// Cell returns the cell for a date key, nil when the key is not in the month
func (g Grid) Cell(key string) *Cell {
	for _, c := range g.Cells {
		if c != nil && c.Key == key {
			return c
		}
	}
	return nil
}
