package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/existflow/dayboard/internal/config"
	"github.com/existflow/dayboard/internal/controller"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/db"
	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/remote"
	"github.com/existflow/dayboard/internal/session"
)

// errReadOnly is returned for writes by a visitor without edit rights
var errReadOnly = errors.New("read-only: sign in with an admin account (dayboard auth login)")

// localIdentity is the owner of a local database
var localIdentity = session.Identity{UserID: "local", Name: "local", Privileged: true}

// workspace is an opened backend with its session and controller
type workspace struct {
	cfg     *config.Config
	db      *db.DB
	client  *remote.Client
	session *session.Session
	ctl     *controller.Controller

	changes chan struct{}
	errs    chan error
}

func credentialsPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

func newClient(cfg *config.Config) (*remote.Client, error) {
	path, err := credentialsPath()
	if err != nil {
		return nil, err
	}
	return remote.NewClient(path, cfg.ServerURL)
}

// openWorkspace opens the configured backend and starts a session on it
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg := appConfig
	w := &workspace{
		cfg:     cfg,
		changes: make(chan struct{}, 1),
		errs:    make(chan error, 8),
	}

	var (
		backend  gateway.Backend
		provider session.Provider
	)
	switch cfg.Backend {
	case config.BackendRemote:
		client, err := newClient(cfg)
		if err != nil {
			return nil, err
		}
		w.client = client
		backend = remote.NewBackend(client)
		provider = remote.NewProvider(client, 0)
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		w.db = database
		backend = database
		provider = session.Static(localIdentity)
	}

	w.session = session.New(provider)
	if err := w.session.Initialize(ctx); err != nil {
		w.closeStore()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	w.ctl = controller.New(gateway.New(backend), controller.Options{
		Debounce: cfg.Debounce(),
		OnError:  w.reportError,
		OnChange: w.signalChange,
	})
	return w, nil
}

func (w *workspace) reportError(err error) {
	logger.Warn("Background write failed", logger.F("error", err))
	select {
	case w.errs <- err:
	default:
	}
}

func (w *workspace) signalChange() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// close sends pending edits and releases the backend
func (w *workspace) close(ctx context.Context) error {
	err := w.ctl.Flush(ctx)
	w.ctl.Close()
	w.session.Teardown()
	w.closeStore()
	return err
}

func (w *workspace) closeStore() {
	if w.db != nil {
		_ = w.db.Close()
	}
}

// requireWrite rejects mutations by visitors
func (w *workspace) requireWrite() error {
	if !w.session.IsPrivileged() {
		return errReadOnly
	}
	return nil
}

// load selects date and loads its month
func (w *workspace) load(ctx context.Context, date string) error {
	t, err := dateutil.ParseKey(date, time.Local)
	if err != nil {
		return err
	}
	if err := w.ctl.Select(date); err != nil {
		return err
	}
	if err := w.ctl.Load(ctx, t); err != nil {
		return fmt.Errorf("failed to load %s: %w", t.Format(dateutil.MonthLayout), err)
	}
	return nil
}

// findTask resolves a full or partial id among the loaded tasks
func (w *workspace) findTask(prefix string) (model.Task, error) {
	matches := w.ctl.State().Tasks(func(t model.Task) bool {
		return strings.HasPrefix(t.ID, prefix)
	})
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s (use --date to pick its month)", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %s is ambiguous (%d matches)", prefix, len(matches))
	}
}

// findSchedule resolves a full or partial id among the loaded schedules
func (w *workspace) findSchedule(prefix string) (model.Schedule, error) {
	matches := w.ctl.State().Schedules(func(s model.Schedule) bool {
		return strings.HasPrefix(s.ID, prefix)
	})
	switch len(matches) {
	case 0:
		return model.Schedule{}, fmt.Errorf("schedule not found: %s (use --date to pick its month)", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Schedule{}, fmt.Errorf("schedule id %s is ambiguous (%d matches)", prefix, len(matches))
	}
}

// withWorkspace opens a workspace loaded at date, runs fn and closes it
func withWorkspace(date string, fn func(ctx context.Context, w *workspace) error) error {
	ctx := context.Background()
	w, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	if err := w.load(ctx, date); err != nil {
		_ = w.close(ctx)
		return err
	}

	runErr := fn(ctx, w)
	if err := w.close(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to save changes: %w", err)
	}
	return runErr
}
