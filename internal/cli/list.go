package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/controller"
	"github.com/existflow/dayboard/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list [date]",
	Aliases: []string{"ls"},
	Short:   "Show the tasks and schedules of a day",
	Long: `Show DAILY, DAY and DUE tasks and schedules of one date (default today).

Examples:
  dayboard list
  dayboard list tomorrow
  dayboard ls 2025-11-07`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) == 1 {
		raw = args[0]
	}
	date, err := parseDate(raw, time.Now())
	if err != nil {
		return err
	}

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		printDay(w.ctl.Day(), w.ctl.Today())
		return nil
	})
}

func printDay(d controller.Day, today string) {
	header := fmt.Sprintf("📅 %s  %s", d.Date, dDay(today, d.Date))
	if d.Counter.All > 0 {
		header += fmt.Sprintf("  (%d/%d done, %d%%)", d.Counter.Done, d.Counter.All, d.Counter.Percent())
	}
	fmt.Printf("\n%s\n", header)
	fmt.Println(strings.Repeat("─", 60))

	printSection("DAILY", d.Daily, today)
	printSection("DAY", d.Day, today)
	printSection("DUE", d.Due, today)

	if len(d.Schedules) > 0 {
		fmt.Println("  SCHEDULE")
		for _, s := range d.Schedules {
			fmt.Printf("    •  %-8s  %s\n", shortID(s.ID), truncate(s.DisplayTitle(), 44))
		}
	}
	if len(d.Daily)+len(d.Day)+len(d.Due)+len(d.Schedules) == 0 {
		fmt.Println("  Nothing planned. Add a task with: dayboard add \"Your task\"")
	}
	fmt.Println()
}

func printSection(name string, tasks []model.Task, today string) {
	if len(tasks) == 0 {
		return
	}
	fmt.Printf("  %s\n", name)
	for i, t := range tasks {
		printTask(i+1, t, today)
	}
}

func printTask(num int, t model.Task, today string) {
	icon := "[ ]"
	if t.IsCompleted {
		icon = "[x]"
	}

	extra := ""
	if n := len(t.Links); n > 0 {
		extra = fmt.Sprintf("🔗%d", n)
	}

	fmt.Printf("  %2d %s  %-8s  %-40s  %-6s %s\n", num, icon, shortID(t.ID), truncate(t.DisplayTitle(), 40), dDay(today, t.Date), extra)
}

// shortID returns the first 8 characters of an id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
