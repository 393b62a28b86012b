package tui

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/existflow/dayboard/internal/aggregate"
	"github.com/existflow/dayboard/internal/calendar"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
)

func TestRenderGrid(t *testing.T) {
	month := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	res := aggregate.Build(aggregate.Input{
		Start: "2025-11-01",
		End:   "2025-11-30",
		Today: "2025-11-05",
		Day:   []model.Task{{ID: "a", Title: "a", Type: model.TypeDay, Date: "2025-11-07"}},
		Due:   []model.Task{{ID: "b", Title: "b", Type: model.TypeDue, Date: "2025-11-07"}},
	})
	g := calendar.BuildGrid(month, res, "2025-11-05", "2025-11-07")

	out := RenderGrid(g, dateutil.WeekdayHeader(language.English))
	lines := strings.Split(out, "\n")
	// header plus six rows of two lines
	if len(lines) != 13 {
		t.Fatalf("lines = %d, want 13", len(lines))
	}
	for _, want := range []string{"Sun", "5*", "●1", "!1", "30"} {
		if !strings.Contains(out, want) {
			t.Errorf("grid missing %q", want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(1, 4, 8); got != "██░░░░░░" {
		t.Fatalf("got %q", got)
	}
	if got := progressBar(0, 0, 3); got != "░░░" {
		t.Fatalf("got %q", got)
	}
}
