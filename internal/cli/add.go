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

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a DAILY, DAY or DUE task. Without --type the type is guessed from
the title: routines become DAILY, deadlines become DUE.

Examples:
  dayboard add "Write the weekly post"
  dayboard add "Tax filing deadline" -d 2025-11-30
  dayboard add "Morning stretch" --type daily`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addType  string
	addDate  string
	addMemo  string
	addLinks []string
)

func init() {
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Task type (daily, day, due)")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Date (e.g., 'tomorrow', '+3', '2025-11-07')")
	addCmd.Flags().StringVarP(&addMemo, "memo", "m", "", "Memo text")
	addCmd.Flags().StringSliceVarP(&addLinks, "link", "l", nil, "Attach a link (repeatable)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDate(addDate, time.Now())
	if err != nil {
		return err
	}

	draft := controller.NewDraft(date)
	draft.SetTitle(strings.Join(args, " "))
	if cmd.Flags().Changed("type") {
		typ, err := model.ParseTaskType(strings.ToUpper(addType))
		if err != nil {
			return err
		}
		draft.SetType(typ)
	}
	draft.Memo = addMemo
	draft.Links = addLinks

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		if err := w.requireWrite(); err != nil {
			return err
		}
		task, err := w.ctl.Create(ctx, draft)
		if err != nil {
			return err
		}

		if task.Type == model.TypeDaily {
			fmt.Printf("✓ Added DAILY: \"%s\"\n", task.Title)
		} else {
			fmt.Printf("✓ Added %s on %s (%s): \"%s\"\n", task.Type, task.Date, dDay(w.ctl.Today(), task.Date), task.Title)
		}
		return nil
	})
}
