package db

import (
	"context"
	"errors"
	"testing"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	if got := pg.Rebind("a = ? AND b >= ? LIMIT ?"); got != "a = $1 AND b >= $2 LIMIT $3" {
		t.Fatalf("got %q", got)
	}
	lite := &DB{dialect: DialectSQLite}
	if got := lite.Rebind("a = ?"); got != "a = ?" {
		t.Fatalf("got %q", got)
	}
}

func TestGatewayOverSQLite(t *testing.T) {
	ctx := context.Background()
	gw := gateway.New(openTestDB(t))

	day1, err := gw.CreateTask(ctx, model.Task{Title: "write post", Type: model.TypeDay, Date: "2025-11-07"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	day2, err := gw.CreateTask(ctx, model.Task{Title: "review", Type: model.TypeDay, Date: "2025-11-07", SortOrder: model.Ptr(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := gw.CreateTask(ctx, model.Task{Title: "other day", Type: model.TypeDay, Date: "2025-11-08"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	due, err := gw.CreateTask(ctx, model.Task{Title: "tax", Type: model.TypeDue, Date: "2025-11-20", Links: []string{"https://a", "https://a"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := gw.CreateTask(ctx, model.Task{Title: "운동", Type: model.TypeDaily, Date: "2025-11-07"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if day1.ID == "" || day1.CreatedAt.IsZero() || day1.IsCompleted {
		t.Fatalf("unexpected created task: %#v", day1)
	}

	tasks, err := gw.FetchTasksByDate(ctx, "2025-11-07", model.TypeDay)
	if err != nil {
		t.Fatalf("fetch by date: %v", err)
	}
	// ordered tasks first, unordered last
	if len(tasks) != 2 || tasks[0].ID != day2.ID || tasks[1].ID != day1.ID {
		t.Fatalf("unexpected order: %#v", tasks)
	}

	upcoming, err := gw.FetchTasksFrom(ctx, model.TypeDue, "2025-11-07")
	if err != nil {
		t.Fatalf("fetch from: %v", err)
	}
	if len(upcoming) != 1 || len(upcoming[0].Links) != 2 {
		t.Fatalf("unexpected due tasks: %#v", upcoming)
	}

	daily, err := gw.FetchDailyTasks(ctx)
	if err != nil {
		t.Fatalf("fetch daily: %v", err)
	}
	if len(daily) != 1 || daily[0].Date != "" {
		t.Fatalf("unexpected daily tasks: %#v", daily)
	}

	inRange, err := gw.FetchTasksInRange(ctx, model.TypeDay, "2025-11-01", "2025-11-07")
	if err != nil {
		t.Fatalf("fetch range: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("expected 2 tasks in range, got %d", len(inRange))
	}

	converted, err := gw.UpdateTask(ctx, due.ID, model.TaskPatch{
		Type:           model.Ptr(model.TypeDay),
		Date:           model.Ptr("2025-11-07"),
		ClearSortOrder: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if converted.Type != model.TypeDay || converted.SortOrder != nil || converted.Title != "tax" {
		t.Fatalf("unexpected update result: %#v", converted)
	}

	if err := gw.DeleteTask(ctx, day1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := gw.DeleteTask(ctx, day1.ID); !gateway.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := gw.UpdateTask(ctx, "missing", model.TaskPatch{Title: model.Ptr("x")}); !gateway.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSchedulesOverSQLite(t *testing.T) {
	ctx := context.Background()
	gw := gateway.New(openTestDB(t))

	for _, s := range []model.Schedule{
		{Date: "2025-11-07", Title: "dentist"},
		{Date: "2025-11-07", Title: "dinner", Content: "7pm"},
		{Date: "2025-12-01", Title: "trip"},
	} {
		if _, err := gw.CreateSchedule(ctx, s); err != nil {
			t.Fatalf("create schedule: %v", err)
		}
	}

	items, err := gw.FetchSchedulesInRange(ctx, "2025-11-01", "2025-11-30")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(items))
	}

	first, err := gw.FetchSchedulesFrom(ctx, "2025-11-08", 1)
	if err != nil {
		t.Fatalf("fetch from: %v", err)
	}
	if len(first) != 1 || first[0].Title != "trip" {
		t.Fatalf("unexpected: %#v", first)
	}

	updated, err := gw.UpdateSchedule(ctx, items[0].ID, model.SchedulePatch{Content: model.Ptr("bring card")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "bring card" || updated.Date != "2025-11-07" {
		t.Fatalf("unexpected: %#v", updated)
	}
}

func TestInsertRejectsUnknownColumns(t *testing.T) {
	database := openTestDB(t)
	_, err := database.Insert(context.Background(), gateway.CollectionTasks, gateway.Row{"type": "DAILY", "owner": "me"})
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field != "owner" {
		t.Fatalf("expected validation error on owner, got %v", err)
	}
}

func TestSelectPaging(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := database.Insert(ctx, gateway.CollectionSchedule, gateway.Row{"date": "2025-11-0" + string(rune('1'+i)), "title": "s"}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := database.Select(ctx, gateway.CollectionSchedule, gateway.Query{}.OrderBy("date").Range(3, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0]["date"] != "2025-11-04" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}
