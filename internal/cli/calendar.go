package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/calendar"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/preview"
	"github.com/existflow/dayboard/internal/tui"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar [YYYY-MM]",
	Aliases: []string{"cal"},
	Short:   "Print a month grid with task and schedule counts",
	Long: `Print the month as a 6x7 grid. Each day shows the number of DAY tasks (●),
DUE deadlines (!) and schedules (◆). Today is marked with *.

Examples:
  dayboard calendar
  dayboard cal 2025-11`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalendar,
}

var upcomingLimit int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List the next schedules and deadlines",
	Args:  cobra.NoArgs,
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().IntVarP(&upcomingLimit, "limit", "n", 0, "Entries per list (default from config)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	now := time.Now()
	month := dateutil.MonthStart(now)
	if len(args) == 1 {
		m, err := dateutil.ParseMonth(args[0], time.Local)
		if err != nil {
			return err
		}
		month = m
	}

	date := month.Format(dateutil.KeyLayout)
	if dateutil.SameMonth(dateutil.KeyIn(now, time.Local), month) {
		date = dateutil.KeyIn(now, time.Local)
	}

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		grid := calendar.BuildGrid(month, w.ctl.Result(), w.ctl.Today(), "")
		header := dateutil.WeekdayHeader(dateutil.ParseLocale(w.cfg.Locale))

		fmt.Printf("\n  %s\n\n", month.Format("January 2006"))
		fmt.Println(tui.RenderGrid(grid, header))
		fmt.Println()
		return nil
	})
}

func runUpcoming(cmd *cobra.Command, args []string) error {
	if upcomingLimit < 0 {
		return fmt.Errorf("limit must be positive")
	}
	limit := upcomingLimit
	if limit == 0 {
		limit = appConfig.PreviewLimit
	}

	today := dateutil.KeyIn(time.Now(), time.Local)
	return withWorkspace(today, func(ctx context.Context, w *workspace) error {
		state := w.ctl.State()
		panel := preview.Build(
			state.Schedules(nil),
			state.Tasks(func(t model.Task) bool { return t.Type == model.TypeDue }),
			w.ctl.Today(), limit,
		)

		fmt.Println("\n🗓  Upcoming schedules")
		if len(panel.Schedules) == 0 {
			fmt.Println("    (none)")
		}
		for _, e := range panel.Schedules {
			fmt.Printf("    %-6s  %s  %s\n", e.Label.Text, e.Item.Date, truncate(e.Item.DisplayTitle(), 40))
		}

		fmt.Println("\n⏰ Deadlines")
		if len(panel.Due) == 0 {
			fmt.Println("    (none)")
		}
		for _, e := range panel.Due {
			mark := " "
			if e.Item.IsCompleted {
				mark = "✓"
			}
			fmt.Printf("  %s %-6s  %s  %s\n", mark, e.Label.Text, e.Item.Date, truncate(e.Item.DisplayTitle(), 40))
		}
		fmt.Println()
		return nil
	})
}
