package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/model"
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"sched"},
	Short:   "Manage calendar schedules",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a schedule",
	Long: `Add a schedule to a date.

Examples:
  dayboard schedule add "Meetup" -d 2025-11-07
  dayboard schedule add "Dinner" -d tomorrow --content "7pm downtown"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the schedules of a month",
	RunE:    runScheduleList,
}

var scheduleEditCmd = &cobra.Command{
	Use:   "edit [schedule-id]",
	Short: "Change a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleEdit,
}

var scheduleRmCmd = &cobra.Command{
	Use:   "rm [schedule-id]",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRm,
}

var (
	schedDate    string
	schedContent string
	schedTitle   string
	schedTo      string
)

func init() {
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleEditCmd)
	scheduleCmd.AddCommand(scheduleRmCmd)

	scheduleCmd.PersistentFlags().StringVarP(&schedDate, "date", "d", "", "Date (default today)")
	scheduleAddCmd.Flags().StringVarP(&schedContent, "content", "c", "", "Details")
	scheduleEditCmd.Flags().StringVar(&schedTitle, "title", "", "New title")
	scheduleEditCmd.Flags().StringVarP(&schedContent, "content", "c", "", "New details")
	scheduleEditCmd.Flags().StringVar(&schedTo, "to", "", "New date")
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDate(schedDate, time.Now())
	if err != nil {
		return err
	}
	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		if err := w.requireWrite(); err != nil {
			return err
		}
		s, err := w.ctl.CreateSchedule(ctx, model.Schedule{
			Date:    date,
			Title:   strings.Join(args, " "),
			Content: schedContent,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Scheduled on %s (%s): \"%s\"\n", s.Date, dDay(w.ctl.Today(), s.Date), s.DisplayTitle())
		return nil
	})
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	date, err := parseDate(schedDate, time.Now())
	if err != nil {
		return err
	}
	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		start, end := w.ctl.Range()
		items := w.ctl.State().Schedules(func(s model.Schedule) bool {
			return s.Date >= start && s.Date <= end
		})
		if len(items) == 0 {
			fmt.Printf("No schedules between %s and %s.\n", start, end)
			return nil
		}

		today := w.ctl.Today()
		fmt.Printf("\n🗓  %s\n", start[:7])
		fmt.Println(strings.Repeat("─", 60))
		for _, s := range items {
			fmt.Printf("  %s  %-6s  %-8s  %s\n", s.Date, dDay(today, s.Date), shortID(s.ID), truncate(s.DisplayTitle(), 36))
		}
		fmt.Println()
		return nil
	})
}

func runScheduleEdit(cmd *cobra.Command, args []string) error {
	date, err := parseDate(schedDate, time.Now())
	if err != nil {
		return err
	}

	var patch model.SchedulePatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &schedTitle
	}
	if flags.Changed("content") {
		patch.Content = &schedContent
	}
	if flags.Changed("to") {
		to, err := parseDate(schedTo, time.Now())
		if err != nil {
			return err
		}
		patch.Date = &to
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: use --title, --content or --to")
	}

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		s, err := w.findSchedule(args[0])
		if err != nil {
			return err
		}
		if err := w.requireWrite(); err != nil {
			return err
		}
		if err := w.ctl.EditSchedule(s.ID, patch); err != nil {
			return err
		}
		fmt.Printf("✎ Updated: \"%s\"\n", patch.Apply(s).DisplayTitle())
		return nil
	})
}

func runScheduleRm(cmd *cobra.Command, args []string) error {
	date, err := parseDate(schedDate, time.Now())
	if err != nil {
		return err
	}
	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		s, err := w.findSchedule(args[0])
		if err != nil {
			return err
		}
		if err := w.requireWrite(); err != nil {
			return err
		}
		if err := w.ctl.DeleteSchedule(ctx, s.ID); err != nil {
			return err
		}
		fmt.Printf("🗑️  Deleted: \"%s\"\n", s.DisplayTitle())
		return nil
	})
}
