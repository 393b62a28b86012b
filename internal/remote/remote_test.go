package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/dayboard/internal/db"
	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
	"github.com/existflow/dayboard/internal/session"
	"github.com/existflow/dayboard/server"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s, err := server.New(server.Options{
		DB:       database,
		Location: time.UTC,
		Clock:    func() time.Time { return time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Close()
	})
	return ts
}

func TestRegisterPersistsCredentials(t *testing.T) {
	ctx := context.Background()
	ts := startServer(t)
	path := filepath.Join(t.TempDir(), "credentials.json")

	c, err := NewClient(path, ts.URL+"/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Server() != ts.URL {
		t.Fatalf("server = %q, want trailing slash trimmed", c.Server())
	}
	if err := c.Register(ctx, "owner", "owner@example.com", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	again, err := NewClient(path, "")
	if err != nil {
		t.Fatalf("reload client: %v", err)
	}
	if !again.IsLoggedIn() || again.Username() != "owner" || again.Server() != ts.URL {
		t.Fatalf("credentials not restored: logged in %v, user %q, server %q",
			again.IsLoggedIn(), again.Username(), again.Server())
	}

	me, err := again.Me(ctx)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if !me.IsAdmin {
		t.Fatal("first account should be admin")
	}
}

func TestGatewayOverServer(t *testing.T) {
	ctx := context.Background()
	ts := startServer(t)

	owner, _ := NewClient(filepath.Join(t.TempDir(), "owner.json"), ts.URL)
	if err := owner.Register(ctx, "owner", "owner@example.com", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	gw := gateway.New(NewBackend(owner))

	task, err := gw.CreateTask(ctx, model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-07"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := gw.CreateSchedule(ctx, model.Schedule{Date: "2025-11-07", Title: "dentist"}); err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	tasks, err := gw.FetchTasksByDate(ctx, "2025-11-07", model.TypeDay)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("tasks = %+v", tasks)
	}

	updated, err := gw.UpdateTask(ctx, task.ID, model.TaskPatch{IsCompleted: model.Ptr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsCompleted {
		t.Fatal("update not applied")
	}

	// visitors read but cannot write
	visitor, _ := NewClient(filepath.Join(t.TempDir(), "visitor.json"), ts.URL)
	readOnly := gateway.New(NewBackend(visitor))
	schedules, err := readOnly.FetchSchedulesInRange(ctx, "2025-11-01", "2025-11-30")
	if err != nil || len(schedules) != 1 {
		t.Fatalf("visitor read: %v, %d schedules", err, len(schedules))
	}
	_, err = readOnly.CreateTask(ctx, model.Task{Title: "x", Type: model.TypeDay, Date: "2025-11-07"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("visitor write err = %v, want unauthorized", err)
	}

	if err := gw.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := gw.DeleteTask(ctx, task.ID); !gateway.IsNotFound(err) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestStatusErrorKinds(t *testing.T) {
	ctx := context.Background()
	status := http.StatusOK
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	t.Cleanup(ts.Close)

	c, _ := NewClient("", ts.URL)
	gw := gateway.New(NewBackend(c))

	tests := []struct {
		status int
		kind   gateway.Kind
	}{
		{http.StatusBadRequest, gateway.KindValidation},
		{http.StatusNotFound, gateway.KindNotFound},
		{http.StatusServiceUnavailable, gateway.KindTransient},
		{http.StatusUnauthorized, gateway.KindTransient},
	}
	for _, tt := range tests {
		status = tt.status
		_, err := gw.FetchTasksByDate(ctx, "2025-11-07", model.TypeDay)
		if gateway.KindOf(err) != tt.kind {
			t.Errorf("status %d: kind = %v, want %v (%v)", tt.status, gateway.KindOf(err), tt.kind, err)
		}
	}
}

func TestProviderFollowsLogin(t *testing.T) {
	ctx := context.Background()
	ts := startServer(t)

	c, _ := NewClient(filepath.Join(t.TempDir(), "credentials.json"), ts.URL)
	p := NewProvider(c, time.Hour)

	ident, err := p.Current(ctx)
	if err != nil || ident != session.Anonymous {
		t.Fatalf("logged out identity = %+v, %v", ident, err)
	}

	if err := c.Register(ctx, "owner", "owner@example.com", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	ident, err = p.Current(ctx)
	if err != nil || !ident.Privileged || ident.Name != "owner" {
		t.Fatalf("identity = %+v, %v", ident, err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.IsLoggedIn() {
		t.Fatal("token kept after logout")
	}
	ident, _ = p.Current(ctx)
	if ident.Privileged {
		t.Fatal("privileged after logout")
	}
}
