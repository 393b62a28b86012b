package calendar

import (
	"time"

	"github.com/existflow/dayboard/internal/dateutil"
)

// RangeFunc is called with the bounds of a newly viewed month
type RangeFunc func(month time.Time, start, end string)

// View is the viewed month plus the selected date
type View struct {
	month    time.Time
	selected string
	onRange  RangeFunc
}

// NewView starts on the month containing selected. An invalid key falls
// back to the month of now.
func NewView(selected string, loc *time.Location, now time.Time) *View {
	t, err := dateutil.ParseKey(selected, loc)
	if err != nil {
		t = now.In(loc)
		selected = dateutil.KeyIn(t, loc)
	}
	return &View{month: dateutil.MonthStart(t), selected: selected}
}

// OnRangeChange registers the callback fired when the viewed month changes
func (v *View) OnRangeChange(fn RangeFunc) {
	v.onRange = fn
}

// Month returns the first day of the viewed month
func (v *View) Month() time.Time {
	return v.month
}

// Selected returns the selected date key
func (v *View) Selected() string {
	return v.selected
}

// Bounds returns the first and last date keys of the viewed month
func (v *View) Bounds() (string, string) {
	return dateutil.MonthBounds(v.month)
}

// Select sets the selected date. Selecting a day outside the viewed month
// moves the view to that month and fires the range callback.
func (v *View) Select(key string) error {
	t, err := dateutil.ParseKey(key, v.month.Location())
	if err != nil {
		return err
	}
	v.selected = key
	if !dateutil.SameMonth(key, v.month) {
		v.setMonth(dateutil.MonthStart(t))
	}
	return nil
}

// Prev moves the view back one calendar month
func (v *View) Prev() {
	v.setMonth(dateutil.AddMonths(v.month, -1))
}

// Next moves the view forward one calendar month
func (v *View) Next() {
	v.setMonth(dateutil.AddMonths(v.month, 1))
}

func (v *View) setMonth(m time.Time) {
	v.month = m
	if v.onRange != nil {
		start, end := dateutil.MonthBounds(m)
		v.onRange(m, start, end)
	}
}
