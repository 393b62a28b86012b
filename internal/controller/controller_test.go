package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/existflow/dayboard/internal/model"
)

var november = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.Local)

func fixedClock() time.Time {
	return time.Date(2025, time.November, 3, 12, 0, 0, 0, time.Local)
}

func dayTask(id, date string, order int, done bool) model.Task {
	t := model.Task{ID: id, Title: id, Type: model.TypeDay, Date: date, IsCompleted: done}
	if order > 0 {
		t.SortOrder = model.Ptr(order)
	}
	return t
}

func setup(t *testing.T, tasks ...model.Task) (*Controller, *fakeStore, *fakeTimers, *[]error) {
	t.Helper()
	store := newFakeStore(tasks...)
	timers := &fakeTimers{}
	var errs []error
	c := New(store, Options{
		Clock:     fixedClock,
		AfterFunc: timers.AfterFunc,
		OnError:   func(err error) { errs = append(errs, err) },
	})
	if err := c.Load(context.Background(), november); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c, store, timers, &errs
}

func TestEditsCollapseIntoOneWrite(t *testing.T) {
	c, store, timers, _ := setup(t, dayTask("t1", "2025-11-03", 0, false))

	for _, title := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		if err := c.Edit("t1", model.TaskPatch{Title: model.Ptr(title)}); err != nil {
			t.Fatalf("edit: %v", err)
		}
	}

	if got, _ := c.State().Task("t1"); got.Title != "abcde" {
		t.Fatalf("local title = %q, want immediate update", got.Title)
	}
	if store.updateCount() != 0 {
		t.Fatalf("write sent before debounce elapsed")
	}
	if !c.Pending("t1") {
		t.Fatal("expected pending write")
	}

	timers.fire()

	if store.updateCount() != 1 {
		t.Fatalf("updates = %d, want 1", store.updateCount())
	}
	if got := *store.updates[0].patch.Title; got != "abcde" {
		t.Fatalf("written title = %q, want latest", got)
	}
	if c.Pending("t1") {
		t.Fatal("pending write left behind")
	}
}

func TestDebounceIsPerTask(t *testing.T) {
	c, store, timers, _ := setup(t,
		dayTask("t1", "2025-11-03", 0, false),
		dayTask("t2", "2025-11-03", 0, false),
	)

	c.Edit("t1", model.TaskPatch{Title: model.Ptr("one")})
	c.Edit("t2", model.TaskPatch{Memo: model.Ptr("memo")})
	c.Edit("t1", model.TaskPatch{Title: model.Ptr("one!")})

	if timers.active() != 2 {
		t.Fatalf("active timers = %d, want one per task", timers.active())
	}
	timers.fire()

	if store.updateCount() != 2 {
		t.Fatalf("updates = %d, want 2", store.updateCount())
	}
	if store.tasks["t1"].Title != "one!" || store.tasks["t2"].Memo != "memo" {
		t.Fatalf("stored = %+v / %+v", store.tasks["t1"], store.tasks["t2"])
	}
}

func TestEditMergesFieldsOfOneTask(t *testing.T) {
	c, store, timers, _ := setup(t, dayTask("t1", "2025-11-03", 0, false))

	c.Edit("t1", model.TaskPatch{Date: model.Ptr("2025-11-04")})
	c.Edit("t1", model.TaskPatch{Memo: model.Ptr("x")})
	c.Edit("t1", model.TaskPatch{Date: model.Ptr("2025-11-05")})
	timers.fire()

	if store.updateCount() != 1 {
		t.Fatalf("updates = %d, want 1", store.updateCount())
	}
	p := store.updates[0].patch
	if *p.Date != "2025-11-05" || *p.Memo != "x" {
		t.Fatalf("patch = %+v", p)
	}
}

func TestEditRejectsDailyConversion(t *testing.T) {
	c, _, _, _ := setup(t, model.Task{ID: "d", Title: "stretch", Type: model.TypeDaily})

	err := c.Edit("d", model.TaskPatch{Type: model.Ptr(model.TypeDay), Date: model.Ptr("2025-11-03")})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if c.Pending("d") {
		t.Fatal("rejected edit was queued")
	}
}

func TestDeleteCancelsPendingWrite(t *testing.T) {
	c, store, timers, _ := setup(t, dayTask("t1", "2025-11-03", 0, false))

	c.Edit("t1", model.TaskPatch{Title: model.Ptr("changed")})
	if err := c.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	timers.fire()

	if store.updateCount() != 0 {
		t.Fatalf("stale update sent after delete")
	}
	if len(store.deletes) != 1 || store.deletes[0] != "t1" {
		t.Fatalf("deletes = %v", store.deletes)
	}
	if _, ok := c.State().Task("t1"); ok {
		t.Fatal("task still loaded")
	}
}

func TestDeleteFailureRestores(t *testing.T) {
	c, store, _, errs := setup(t,
		dayTask("t1", "2025-11-03", 0, true),
		dayTask("t2", "2025-11-03", 0, false),
	)
	store.failDelete = errors.New("connection reset")

	before := c.Counter()
	if err := c.Delete(context.Background(), "t1"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.State().Task("t1"); !ok {
		t.Fatal("task not restored")
	}
	if c.Counter() != before {
		t.Fatalf("counter = %+v, want %+v", c.Counter(), before)
	}
	if len(*errs) != 1 {
		t.Fatalf("notified errors = %d", len(*errs))
	}
}

func TestDeleteAdjustsCounter(t *testing.T) {
	c, _, _, _ := setup(t,
		dayTask("t1", "2025-11-03", 0, true),
		dayTask("t2", "2025-11-03", 0, false),
	)
	if err := c.Delete(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	if got := c.Counter(); got.All != 1 || got.Done != 0 {
		t.Fatalf("counter = %+v", got)
	}
}

func TestToggleComplete(t *testing.T) {
	c, store, _, _ := setup(t,
		dayTask("t1", "2025-11-03", 0, false),
		dayTask("t2", "2025-11-03", 0, false),
	)

	if _, err := c.ToggleComplete(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	if got := c.Counter(); got.All != 2 || got.Done != 1 {
		t.Fatalf("counter = %+v", got)
	}
	if !store.tasks["t1"].IsCompleted {
		t.Fatal("completion not written")
	}

	store.failUpdate = errors.New("timeout")
	if _, err := c.ToggleComplete(context.Background(), "t2"); err == nil {
		t.Fatal("expected error")
	}
	if got := c.Counter(); got.Done != 1 {
		t.Fatalf("counter not reverted: %+v", got)
	}
	if got, _ := c.State().Task("t2"); got.IsCompleted {
		t.Fatal("toggle not reverted")
	}
}

func TestReorderRestampsPositions(t *testing.T) {
	c, store, _, _ := setup(t,
		dayTask("a", "2025-11-03", 1, false),
		dayTask("b", "2025-11-03", 2, false),
		dayTask("c", "2025-11-03", 3, false),
	)

	if err := c.Reorder(context.Background(), "2025-11-03", 0, 2); err != nil {
		t.Fatal(err)
	}

	want := map[string]int{"b": 1, "c": 2, "a": 3}
	for id, pos := range want {
		if got := store.tasks[id].SortOrder; got == nil || *got != pos {
			t.Fatalf("%s sort_order = %v, want %d", id, got, pos)
		}
	}
	list := c.Day().Day
	if list[0].ID != "b" || list[1].ID != "c" || list[2].ID != "a" {
		t.Fatalf("local order = %s %s %s", list[0].ID, list[1].ID, list[2].ID)
	}
	if store.updateCount() != 3 {
		t.Fatalf("updates = %d, want 3", store.updateCount())
	}
}

func TestReorderStampsUnorderedTasks(t *testing.T) {
	c, store, _, _ := setup(t,
		dayTask("a", "2025-11-03", 0, false),
		dayTask("b", "2025-11-03", 0, false),
	)
	if err := c.Reorder(context.Background(), "2025-11-03", 1, 0); err != nil {
		t.Fatal(err)
	}
	if *store.tasks["b"].SortOrder != 1 || *store.tasks["a"].SortOrder != 2 {
		t.Fatalf("positions = %v %v", *store.tasks["b"].SortOrder, *store.tasks["a"].SortOrder)
	}
	if err := c.Reorder(context.Background(), "2025-11-03", 0, 5); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestConvertDueToDay(t *testing.T) {
	due := model.Task{ID: "x", Title: "report", Type: model.TypeDue, Date: "2025-11-20", SortOrder: model.Ptr(4)}
	c, store, _, _ := setup(t, dayTask("t1", "2025-11-05", 0, false), due)
	if err := c.Select("2025-11-05"); err != nil {
		t.Fatal(err)
	}
	if got := c.Result().UpcomingDue; len(got) != 1 {
		t.Fatalf("upcoming before = %v", got)
	}
	before := c.Counter()

	saved, err := c.ConvertDueToDay(context.Background(), "x", "2025-11-05")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Type != model.TypeDay || saved.Date != "2025-11-05" || saved.SortOrder != nil {
		t.Fatalf("saved = %+v", saved)
	}
	if got := c.Counter(); got.All != before.All+1 {
		t.Fatalf("counter = %+v, want all %d", got, before.All+1)
	}
	if got := c.Result().UpcomingDue; len(got) != 0 {
		t.Fatalf("converted task still upcoming: %v", got)
	}
	if store.tasks["x"].Type != model.TypeDay {
		t.Fatal("conversion not stored")
	}

	if _, err := c.ConvertDueToDay(context.Background(), "t1", "2025-11-05"); err == nil {
		t.Fatal("converting a DAY task as DUE should fail")
	}
}

func TestMoveDayToDue(t *testing.T) {
	c, store, _, _ := setup(t, dayTask("t1", "2025-11-03", 2, false))

	saved, err := c.MoveDayToDue(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Type != model.TypeDue || saved.Date != "2025-11-03" {
		t.Fatalf("saved = %+v", saved)
	}
	if c.Counter().All != 0 {
		t.Fatalf("counter = %+v", c.Counter())
	}
	if store.tasks["t1"].SortOrder != nil {
		t.Fatal("sort order kept on DUE task")
	}
}

func TestPasteLinksIsOneEdit(t *testing.T) {
	c, store, timers, _ := setup(t, dayTask("t1", "2025-11-03", 0, false))

	n, err := c.PasteLinks("t1", "see https://a.example/x\n\thttp://b.example ftp://c.example plain")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("added = %d, want 2", n)
	}
	if timers.active() != 1 {
		t.Fatalf("active timers = %d", timers.active())
	}
	timers.fire()

	if store.updateCount() != 1 {
		t.Fatalf("updates = %d", store.updateCount())
	}
	links := store.tasks["t1"].Links
	if len(links) != 2 || links[0] != "https://a.example/x" || links[1] != "http://b.example" {
		t.Fatalf("links = %v", links)
	}

	if err := c.RemoveLink("t1", 0); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.State().Task("t1"); len(got.Links) != 1 || got.Links[0] != "http://b.example" {
		t.Fatalf("links after remove = %v", got.Links)
	}
	if err := c.RemoveLink("t1", 3); err == nil {
		t.Fatal("expected index error")
	}
}

func TestFlushAndClose(t *testing.T) {
	c, store, timers, _ := setup(t,
		dayTask("t1", "2025-11-03", 0, false),
		dayTask("t2", "2025-11-03", 0, false),
	)

	c.Edit("t1", model.TaskPatch{Title: model.Ptr("flushed")})
	if err := c.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.tasks["t1"].Title != "flushed" {
		t.Fatal("flush did not write")
	}

	c.Edit("t2", model.TaskPatch{Title: model.Ptr("dropped")})
	c.Close()
	timers.fire()
	if store.tasks["t2"].Title != "t2" {
		t.Fatal("pending write survived close")
	}
	if err := c.Edit("t2", model.TaskPatch{Title: model.Ptr("x")}); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestCreateFromDraft(t *testing.T) {
	c, store, _, _ := setup(t)

	d := NewDraft("2025-11-03")
	d.SetTitle("write post")
	task, err := c.Create(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if task.IsCompleted || task.SortOrder != nil || task.Type != model.TypeDay {
		t.Fatalf("created = %+v", task)
	}
	if c.Counter().All != 1 {
		t.Fatalf("counter = %+v", c.Counter())
	}

	if _, err := c.Create(context.Background(), NewDraft("2025-11-03")); err == nil {
		t.Fatal("empty title accepted")
	}
	if len(store.tasks) != 1 {
		t.Fatalf("stored = %d", len(store.tasks))
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	c, store, _, _ := setup(t, dayTask("nov", "2025-11-03", 0, false))
	store.tasks["dec"] = dayTask("dec", "2025-12-03", 0, false)

	december := november.AddDate(0, 1, 0)
	var inner error
	store.onFetch = func() { inner = c.Load(context.Background(), december) }

	if err := c.Load(context.Background(), november); !errors.Is(err, ErrStaleLoad) {
		t.Fatalf("err = %v, want ErrStaleLoad", err)
	}
	if inner != nil {
		t.Fatalf("inner load: %v", inner)
	}
	if start, _ := c.Range(); start != "2025-12-01" {
		t.Fatalf("range start = %s, want december", start)
	}
}

func TestScheduleEditsAreDebounced(t *testing.T) {
	c, store, timers, _ := setup(t)
	s, err := c.CreateSchedule(context.Background(), model.Schedule{Date: "2025-11-07", Title: "meetup"})
	if err != nil {
		t.Fatal(err)
	}

	c.EditSchedule(s.ID, model.SchedulePatch{Title: model.Ptr("meetup 2")})
	c.EditSchedule(s.ID, model.SchedulePatch{Content: model.Ptr("room 3")})
	if store.schedules[s.ID].Title != "meetup" {
		t.Fatal("schedule written before debounce")
	}
	timers.fire()
	if got := store.schedules[s.ID]; got.Title != "meetup 2" || got.Content != "room 3" {
		t.Fatalf("stored = %+v", got)
	}

	if err := c.DeleteSchedule(context.Background(), s.ID); err != nil {
		t.Fatal(err)
	}
	if len(c.State().Schedules(nil)) != 0 {
		t.Fatal("schedule still loaded")
	}
}

func TestSuggestType(t *testing.T) {
	tests := []struct {
		title string
		want  model.TaskType
	}{
		{"매일 운동하기", model.TypeDaily},
		{"Daily stand-up notes", model.TypeDaily},
		{"보고서 제출", model.TypeDue},
		{"Tax deadline", model.TypeDue},
		{"블로그 글 쓰기", model.TypeDay},
	}
	for _, tt := range tests {
		if got := SuggestType(tt.title); got != tt.want {
			t.Errorf("SuggestType(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestDraftRespectsExplicitType(t *testing.T) {
	d := NewDraft("2025-11-03")
	d.SetTitle("운동")
	if d.Type != model.TypeDaily || d.DateEnabled() {
		t.Fatalf("draft = %+v", d)
	}
	if d.Task().Date != "" {
		t.Fatal("DAILY draft kept its date")
	}

	d.SetType(model.TypeDue)
	d.SetTitle("운동 매일")
	if d.Type != model.TypeDue {
		t.Fatalf("suggestion overrode explicit type: %s", d.Type)
	}
}

func TestEditCannotChangeType(t *testing.T) {
	due := model.Task{ID: "d1", Title: "tax", Type: model.TypeDue, Date: "2025-11-20", SortOrder: model.Ptr(4)}
	c, store, _, _ := setup(t, due)

	err := c.Edit("d1", model.TaskPatch{Type: model.Ptr(model.TypeDay)})
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field != "type" {
		t.Fatalf("err = %v, want type validation error", err)
	}
	if c.Pending("d1") {
		t.Fatal("type edit was queued")
	}
	if got, _ := c.State().Task("d1"); got.Type != model.TypeDue {
		t.Fatalf("type = %s, want unchanged", got.Type)
	}

	converted, err := c.ConvertDueToDay(context.Background(), "d1", "2025-11-03")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if converted.Type != model.TypeDay || converted.Date != "2025-11-03" || converted.SortOrder != nil {
		t.Fatalf("converted = type %s date %s order %v", converted.Type, converted.Date, converted.SortOrder)
	}
	if got := store.tasks["d1"]; got.SortOrder != nil {
		t.Fatalf("stored sort order = %d, want cleared", *got.SortOrder)
	}
}

func TestPendingScheduleEditSurvivesReload(t *testing.T) {
	c, store, timers, _ := setup(t)
	s, err := c.CreateSchedule(context.Background(), model.Schedule{Date: "2025-11-07", Title: "meetup"})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.EditSchedule(s.ID, model.SchedulePatch{Title: model.Ptr("typed")}); err != nil {
		t.Fatal(err)
	}
	if err := c.Load(context.Background(), november); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got, _ := c.State().Schedule(s.ID); got.Title != "typed" {
		t.Fatalf("title after reload = %q, want the unsent edit", got.Title)
	}

	timers.fire()
	if store.schedules[s.ID].Title != "typed" {
		t.Fatalf("stored title = %q", store.schedules[s.ID].Title)
	}
}

func TestSupersededLoadErrorIsStale(t *testing.T) {
	c, store, _, _ := setup(t, dayTask("nov", "2025-11-03", 0, false))

	// the newer load cancels the older one's context mid fetch
	december := november.AddDate(0, 1, 0)
	store.onFetch = func() { _ = c.Load(context.Background(), december) }

	err := c.Load(context.Background(), november)
	if !errors.Is(err, ErrStaleLoad) {
		t.Fatalf("err = %v, want ErrStaleLoad", err)
	}
	if start, _ := c.Range(); start != "2025-12-01" {
		t.Fatalf("range start = %s, want december", start)
	}

	store.failFetch = errors.New("connection reset")
	if err := c.Load(context.Background(), november); errors.Is(err, ErrStaleLoad) || err == nil {
		t.Fatalf("err = %v, want the fetch error", err)
	}
}

func TestDateEditRefreshesBuckets(t *testing.T) {
	c, store, timers, errs := setup(t,
		dayTask("t1", "2025-11-03", 1, false),
		model.Task{ID: "d1", Title: "tax", Type: model.TypeDue, Date: "2025-11-20"},
	)

	// rows written by another client since the load
	store.put(dayTask("other", "2025-11-04", 0, false))
	store.put(model.Task{ID: "d2", Title: "rent", Type: model.TypeDue, Date: "2025-11-25"})

	c.Edit("t1", model.TaskPatch{Date: model.Ptr("2025-11-04"), ClearSortOrder: true})
	c.Edit("d1", model.TaskPatch{Date: model.Ptr("2025-11-21")})
	timers.fire()

	if len(*errs) != 0 {
		t.Fatalf("errors: %v", *errs)
	}
	day := c.State().DayList("2025-11-04")
	if len(day) != 2 {
		t.Fatalf("day list on new date = %d tasks, want refreshed 2", len(day))
	}
	if len(c.State().DayList("2025-11-03")) != 0 {
		t.Fatal("task still listed on its old date")
	}
	if _, ok := c.State().Task("d2"); !ok {
		t.Fatal("due list not refreshed after due date change")
	}
}

func TestCreateAfterClose(t *testing.T) {
	c, store, _, _ := setup(t)
	c.Close()

	d := NewDraft("2025-11-03")
	d.SetTitle("late")
	if _, err := c.Create(context.Background(), d); !errors.Is(err, ErrClosed) {
		t.Fatalf("create err = %v, want ErrClosed", err)
	}
	if _, err := c.CreateSchedule(context.Background(), model.Schedule{Date: "2025-11-07", Title: "late"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("create schedule err = %v, want ErrClosed", err)
	}
	if len(store.tasks) != 0 || len(store.schedules) != 0 {
		t.Fatal("closed controller wrote rows")
	}
}
