package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/model"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Mark a task as completed.

Examples:
  dayboard done 0192ab
  dayboard done 0192ab --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Change the title, memo, date or type of a task",
	Long: `Change fields of a task. DAY and DUE tasks may switch type; DAILY
tasks stay DAILY.

Examples:
  dayboard edit 0192ab --title "Publish post"
  dayboard edit 0192ab --type due --to 2025-11-30`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [position]",
	Short: "Move a DAY task to a position in its day",
	Long: `Reorder the DAY tasks of a date. Positions start at 1.

Examples:
  dayboard move 0192ab 1`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var convertCmd = &cobra.Command{
	Use:   "convert [task-id]",
	Short: "Turn a DUE task into a DAY task on --date, or a DAY task into a DUE task",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var (
	taskDate   string
	doneUndo   bool
	deleteYes  bool
	editTitle  string
	editMemo   string
	editType   string
	editTo     string
	convertFor string
)

func init() {
	for _, c := range []*cobra.Command{doneCmd, deleteCmd, editCmd, moveCmd, convertCmd} {
		c.Flags().StringVarP(&taskDate, "date", "d", "", "Date whose month holds the task (default today)")
	}
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Mark task as not done")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editMemo, "memo", "", "New memo")
	editCmd.Flags().StringVar(&editType, "type", "", "New type (day, due)")
	editCmd.Flags().StringVar(&editTo, "to", "", "New date")
	convertCmd.Flags().StringVar(&convertFor, "on", "", "Day to plan a DUE task on (default --date)")
}

func taskDateKey() (string, error) {
	return parseDate(taskDate, time.Now())
}

func runDone(cmd *cobra.Command, args []string) error {
	date, err := taskDateKey()
	if err != nil {
		return err
	}
	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		task, err := w.findTask(args[0])
		if err != nil {
			return err
		}
		if task.IsCompleted == !doneUndo {
			fmt.Printf("Nothing to do: \"%s\" is already %s\n", task.DisplayTitle(), doneWord(task.IsCompleted))
			return nil
		}
		if err := w.requireWrite(); err != nil {
			return err
		}

		updated, err := w.ctl.ToggleComplete(ctx, task.ID)
		if err != nil {
			return err
		}
		if updated.IsCompleted {
			fmt.Printf("✓ Completed: \"%s\"\n", updated.DisplayTitle())
		} else {
			fmt.Printf("○ Reopened: \"%s\"\n", updated.DisplayTitle())
		}
		return nil
	})
}

func doneWord(done bool) string {
	if done {
		return "done"
	}
	return "open"
}

func runDelete(cmd *cobra.Command, args []string) error {
	date, err := taskDateKey()
	if err != nil {
		return err
	}
	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		task, err := w.findTask(args[0])
		if err != nil {
			return err
		}
		if err := w.requireWrite(); err != nil {
			return err
		}

		if w.cfg.ConfirmDelete && !deleteYes {
			fmt.Printf("About to delete: \"%s\" (ID: %s)\n", task.DisplayTitle(), task.ID)
			if !confirm("Are you sure? [y/N]: ") {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := w.ctl.Delete(ctx, task.ID); err != nil {
			return err
		}
		fmt.Printf("🗑️  Deleted: \"%s\"\n", task.DisplayTitle())
		return nil
	})
}

// confirm asks a yes/no question on stdin
func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func runEdit(cmd *cobra.Command, args []string) error {
	date, err := taskDateKey()
	if err != nil {
		return err
	}

	var patch model.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &editTitle
	}
	if flags.Changed("memo") {
		patch.Memo = &editMemo
	}
	var convertTo model.TaskType
	if flags.Changed("type") {
		typ, err := model.ParseTaskType(strings.ToUpper(editType))
		if err != nil {
			return err
		}
		convertTo = typ
	}
	if flags.Changed("to") {
		to, err := parseDate(editTo, time.Now())
		if err != nil {
			return err
		}
		patch.Date = &to
		patch.ClearSortOrder = true
	}
	if patch.IsEmpty() && convertTo == "" {
		return fmt.Errorf("nothing to change: use --title, --memo, --type or --to")
	}

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		task, err := w.findTask(args[0])
		if err != nil {
			return err
		}
		if err := w.requireWrite(); err != nil {
			return err
		}

		if convertTo != "" && convertTo != task.Type {
			switch {
			case task.Type == model.TypeDue && convertTo == model.TypeDay:
				on := date
				if patch.Date != nil {
					on = *patch.Date
					patch.Date, patch.ClearSortOrder = nil, false
				}
				if task, err = w.ctl.ConvertDueToDay(ctx, task.ID, on); err != nil {
					return err
				}
			case task.Type == model.TypeDay && convertTo == model.TypeDue:
				if task, err = w.ctl.MoveDayToDue(ctx, task.ID); err != nil {
					return err
				}
			default:
				return fmt.Errorf("DAILY tasks cannot be converted")
			}
		}

		if !patch.IsEmpty() {
			if err := w.ctl.Edit(task.ID, patch); err != nil {
				return err
			}
		}
		fmt.Printf("✎ Updated: \"%s\" (%s)\n", patch.Apply(task).DisplayTitle(), task.Type)
		return nil
	})
}

func runMove(cmd *cobra.Command, args []string) error {
	to, err := strconv.Atoi(args[1])
	if err != nil || to < 1 {
		return fmt.Errorf("position must be a number starting at 1")
	}
	date, err := taskDateKey()
	if err != nil {
		return err
	}

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		task, err := w.findTask(args[0])
		if err != nil {
			return err
		}
		if task.Type != model.TypeDay {
			return fmt.Errorf("only DAY tasks can be reordered")
		}
		if err := w.requireWrite(); err != nil {
			return err
		}

		list := w.ctl.State().DayList(task.Date)
		from := -1
		for i, t := range list {
			if t.ID == task.ID {
				from = i
			}
		}
		if to > len(list) {
			to = len(list)
		}
		if err := w.ctl.Reorder(ctx, task.Date, from, to-1); err != nil {
			return err
		}
		fmt.Printf("↕ Moved \"%s\" to position %d on %s\n", task.DisplayTitle(), to, task.Date)
		return nil
	})
}

func runConvert(cmd *cobra.Command, args []string) error {
	date, err := taskDateKey()
	if err != nil {
		return err
	}
	target := date
	if cmd.Flags().Changed("on") {
		if target, err = parseDate(convertFor, time.Now()); err != nil {
			return err
		}
	}

	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		task, err := w.findTask(args[0])
		if err != nil {
			return err
		}
		if err := w.requireWrite(); err != nil {
			return err
		}

		switch task.Type {
		case model.TypeDue:
			converted, err := w.ctl.ConvertDueToDay(ctx, task.ID, target)
			if err != nil {
				return err
			}
			fmt.Printf("→ \"%s\" is now a DAY task on %s\n", converted.DisplayTitle(), converted.Date)
		case model.TypeDay:
			converted, err := w.ctl.MoveDayToDue(ctx, task.ID)
			if err != nil {
				return err
			}
			fmt.Printf("→ \"%s\" is now due %s (%s)\n", converted.DisplayTitle(), converted.Date, dDay(w.ctl.Today(), converted.Date))
		default:
			return fmt.Errorf("DAILY tasks cannot be converted")
		}
		return nil
	})
}
