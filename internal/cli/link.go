package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage the links of a task",
}

var linkAddCmd = &cobra.Command{
	Use:   "add [task-id] [url]",
	Short: "Append a link",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinkAdd,
}

var linkRmCmd = &cobra.Command{
	Use:   "rm [task-id] [number]",
	Short: "Remove the link with the given number",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinkRm,
}

var linkPasteCmd = &cobra.Command{
	Use:   "paste [task-id] [text]",
	Short: "Attach every http(s) URL found in text, or in the clipboard",
	Long: `Attach every http(s) URL found in the given text. Without text the
clipboard is read.

Examples:
  dayboard link paste 0192ab
  dayboard link paste 0192ab "see https://a.example and https://b.example"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLinkPaste,
}

var linkDate string

func init() {
	linkCmd.AddCommand(linkAddCmd)
	linkCmd.AddCommand(linkRmCmd)
	linkCmd.AddCommand(linkPasteCmd)
	linkCmd.PersistentFlags().StringVarP(&linkDate, "date", "d", "", "Date whose month holds the task (default today)")
}

func withTaskLinks(id string, fn func(w *workspace, taskID string) error) error {
	date, err := parseDate(linkDate, time.Now())
	if err != nil {
		return err
	}
	return withWorkspace(date, func(ctx context.Context, w *workspace) error {
		task, err := w.findTask(id)
		if err != nil {
			return err
		}
		if err := w.requireWrite(); err != nil {
			return err
		}
		return fn(w, task.ID)
	})
}

func runLinkAdd(cmd *cobra.Command, args []string) error {
	return withTaskLinks(args[0], func(w *workspace, id string) error {
		if err := w.ctl.AppendLink(id, args[1]); err != nil {
			return err
		}
		fmt.Printf("🔗 Linked %s\n", args[1])
		return nil
	})
}

func runLinkRm(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return fmt.Errorf("link number must start at 1")
	}
	return withTaskLinks(args[0], func(w *workspace, id string) error {
		if err := w.ctl.RemoveLink(id, n-1); err != nil {
			return err
		}
		fmt.Printf("✂ Removed link %d\n", n)
		return nil
	})
}

func runLinkPaste(cmd *cobra.Command, args []string) error {
	text := strings.Join(args[1:], " ")
	if text == "" {
		clip, err := clipboard.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
		text = clip
	}
	return withTaskLinks(args[0], func(w *workspace, id string) error {
		added, err := w.ctl.PasteLinks(id, text)
		if err != nil {
			return err
		}
		if added == 0 {
			fmt.Println("No http(s) links found.")
			return nil
		}
		fmt.Printf("🔗 Attached %d link(s)\n", added)
		return nil
	})
}
