package gateway

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/existflow/dayboard/internal/model"
)

type stubBackend struct {
	selectFn func(ctx context.Context, collection string, q Query) ([]Row, error)
	insertFn func(ctx context.Context, collection string, payload Row) (Row, error)
	updateFn func(ctx context.Context, collection, id string, patch Row) (Row, error)
	deleteFn func(ctx context.Context, collection, id string) error
	calls    int
}

func (s *stubBackend) Select(ctx context.Context, collection string, q Query) ([]Row, error) {
	s.calls++
	if s.selectFn == nil {
		return nil, errors.New("unexpected Select call")
	}
	return s.selectFn(ctx, collection, q)
}

func (s *stubBackend) Insert(ctx context.Context, collection string, payload Row) (Row, error) {
	s.calls++
	if s.insertFn == nil {
		return nil, errors.New("unexpected Insert call")
	}
	return s.insertFn(ctx, collection, payload)
}

func (s *stubBackend) Update(ctx context.Context, collection, id string, patch Row) (Row, error) {
	s.calls++
	if s.updateFn == nil {
		return nil, errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, collection, id, patch)
}

func (s *stubBackend) Delete(ctx context.Context, collection, id string) error {
	s.calls++
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, collection, id)
}

func taskRow(id, typ, date string, sortOrder any) Row {
	return Row{
		"id":           id,
		"title":        "task " + id,
		"type":         typ,
		"memo":         nil,
		"links":        []any{"https://example.com"},
		"is_completed": false,
		"sort_order":   sortOrder,
		"date":         date,
		"created_at":   "2025-11-01T09:00:00Z",
		"updated_at":   "2025-11-01T09:00:00Z",
	}
}

func TestFetchTasksByDateQuery(t *testing.T) {
	var got Query
	backend := &stubBackend{
		selectFn: func(ctx context.Context, collection string, q Query) ([]Row, error) {
			if collection != CollectionTasks {
				t.Fatalf("unexpected collection %s", collection)
			}
			got = q
			return []Row{taskRow("a", "DAY", "2025-11-07", float64(1))}, nil
		},
	}
	tasks, err := New(backend).FetchTasksByDate(context.Background(), "2025-11-07", model.TypeDay)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tasks) != 1 || tasks[0].SortOrder == nil || *tasks[0].SortOrder != 1 {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	want := Query{
		Filters: []Filter{{"type", OpEq, "DAY"}, {"date", OpEq, "2025-11-07"}},
		Order:   []Order{{Column: "sort_order"}, {Column: "id"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("query mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestFetchTasksInRangeRejectsBadRangeBeforeBackend(t *testing.T) {
	backend := &stubBackend{}
	gw := New(backend)

	_, err := gw.FetchTasksInRange(context.Background(), model.TypeDue, "2025-11-30", "2025-11-01")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = gw.FetchTasksInRange(context.Background(), model.TypeDue, "2025-11-1", "2025-11-30")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times", backend.calls)
	}
}

func TestMalformedRowsFailFast(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"missing id", Row{"type": "DAY", "date": "2025-11-07"}},
		{"unknown type", Row{"id": "x", "type": "WEEKLY"}},
		{"day without date", Row{"id": "x", "type": "DAY"}},
		{"bad date", Row{"id": "x", "type": "DUE", "date": "11/07/2025"}},
		{"fractional sort order", Row{"id": "x", "type": "DAILY", "sort_order": 1.5}},
		{"links not strings", Row{"id": "x", "type": "DAILY", "links": []any{1}}},
		{"title not string", Row{"id": "x", "type": "DAILY", "title": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{
				selectFn: func(ctx context.Context, collection string, q Query) ([]Row, error) {
					return []Row{tt.row}, nil
				},
			}
			_, err := New(backend).FetchDailyTasks(context.Background())
			if !IsMalformed(err) {
				t.Fatalf("expected malformed error, got %v", err)
			}
		})
	}
}

func TestDailyTaskDateIsIgnored(t *testing.T) {
	task, err := ParseTask(Row{"id": "d1", "type": "DAILY", "date": "2025-11-07", "title": "운동"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Date != "" {
		t.Fatalf("daily task kept date %q", task.Date)
	}
	if task.Links == nil {
		t.Fatal("links should be an empty list, not nil")
	}
}

func TestCreateTaskPayload(t *testing.T) {
	var payload Row
	backend := &stubBackend{
		insertFn: func(ctx context.Context, collection string, p Row) (Row, error) {
			payload = p
			out := Row{"id": "new"}
			for k, v := range p {
				out[k] = v
			}
			return out, nil
		},
	}
	created, err := New(backend).CreateTask(context.Background(), model.Task{
		Title: "운동",
		Type:  model.TypeDaily,
		Date:  "2025-11-07",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payload["date"] != nil {
		t.Fatalf("daily task sent date %v", payload["date"])
	}
	if payload["is_completed"] != false || payload["sort_order"] != nil {
		t.Fatalf("unexpected defaults: %#v", payload)
	}
	if created.ID != "new" || created.Type != model.TypeDaily {
		t.Fatalf("unexpected task: %#v", created)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	backend := &stubBackend{}
	gw := New(backend)
	cases := []model.Task{
		{Title: "  ", Type: model.TypeDaily},
		{Title: "report", Type: model.TypeDue},
		{Title: "report", Type: model.TypeDay, Date: "2025-02-30"},
		{Title: "report", Type: "WEEKLY"},
	}
	for _, c := range cases {
		if _, err := gw.CreateTask(context.Background(), c); !IsValidation(err) {
			t.Fatalf("%#v: expected validation error, got %v", c, err)
		}
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times", backend.calls)
	}
}

func TestBackendErrorsAreClassified(t *testing.T) {
	backend := &stubBackend{
		deleteFn: func(ctx context.Context, collection, id string) error {
			if id == "gone" {
				return ErrNotFound
			}
			return errors.New("connection reset")
		},
	}
	gw := New(backend)
	if err := gw.DeleteTask(context.Background(), "gone"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	err := gw.DeleteTask(context.Background(), "x")
	if !IsTransient(err) {
		t.Fatalf("expected transient, got %v", err)
	}
	if err.Error() != "delete task: connection reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestUpdateTaskPatchRow(t *testing.T) {
	var got Row
	backend := &stubBackend{
		updateFn: func(ctx context.Context, collection, id string, patch Row) (Row, error) {
			got = patch
			return taskRow(id, "DAY", "2025-11-08", nil), nil
		},
	}
	patch := model.TaskPatch{
		Type:           model.Ptr(model.TypeDay),
		Date:           model.Ptr("2025-11-08"),
		ClearSortOrder: true,
	}
	if _, err := New(backend).UpdateTask(context.Background(), "t1", patch); err != nil {
		t.Fatal(err)
	}
	want := Row{"type": "DAY", "date": "2025-11-08", "sort_order": nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	backend := &stubBackend{
		selectFn: func(ctx context.Context, collection string, q Query) ([]Row, error) {
			return nil, nil
		},
	}
	if _, err := New(backend).GetTask(context.Background(), "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
