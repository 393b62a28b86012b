package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	w, err := openWorkspace(ctx)
	if err != nil {
		return err
	}

	// The first month is loaded by the model itself
	if err := w.ctl.Select(dateutil.KeyIn(time.Now(), time.Local)); err != nil {
		_ = w.close(ctx)
		return err
	}

	model := tui.NewModel(tui.Options{
		Controller:    w.ctl,
		Session:       w.session,
		Location:      time.Local,
		Locale:        dateutil.ParseLocale(w.cfg.Locale),
		PreviewLimit:  w.cfg.PreviewLimit,
		ConfirmDelete: w.cfg.ConfirmDelete,
		Changes:       w.changes,
		Errors:        w.errs,
		ReadClipboard: clipboard.ReadAll,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()
	if runErr != nil {
		logger.Error("TUI exited with error", logger.F("error", runErr))
	}

	if err := w.close(ctx); err != nil {
		if runErr == nil {
			runErr = fmt.Errorf("failed to save changes: %w", err)
		}
	}
	return runErr
}
