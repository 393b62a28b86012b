package model

import (
	"errors"
	"sort"
	"testing"
)

func TestTaskPatchApplyDoesNotAlias(t *testing.T) {
	orig := Task{ID: "t1", Title: "a", Type: TypeDay, Date: "2025-11-07", Links: []string{"https://a"}, SortOrder: Ptr(2)}

	links := []string{"https://b"}
	got := TaskPatch{Title: Ptr("b"), Links: &links, ClearSortOrder: true}.Apply(orig)

	if got.Title != "b" || got.SortOrder != nil || got.Links[0] != "https://b" {
		t.Fatalf("unexpected result %+v", got)
	}
	links[0] = "changed"
	if got.Links[0] != "https://b" {
		t.Fatal("patched links alias the patch slice")
	}
	if orig.Title != "a" || *orig.SortOrder != 2 || orig.Links[0] != "https://a" {
		t.Fatalf("original modified: %+v", orig)
	}
}

func TestTaskPatchMergeLatestWins(t *testing.T) {
	p := TaskPatch{Title: Ptr("one"), SortOrder: Ptr(3)}
	p = p.Merge(TaskPatch{Title: Ptr("two"), Memo: Ptr("memo")})
	p = p.Merge(TaskPatch{ClearSortOrder: true})

	if *p.Title != "two" || *p.Memo != "memo" {
		t.Fatalf("merged fields %+v", p)
	}
	if p.SortOrder != nil || !p.ClearSortOrder {
		t.Fatal("clear should replace an earlier sort order")
	}

	p = p.Merge(TaskPatch{SortOrder: Ptr(1)})
	if p.ClearSortOrder || *p.SortOrder != 1 {
		t.Fatal("set should replace an earlier clear")
	}
	if p.IsEmpty() {
		t.Fatal("merged patch reported empty")
	}
	if !(TaskPatch{}).IsEmpty() {
		t.Fatal("zero patch should be empty")
	}
}

func TestSchedulePatch(t *testing.T) {
	s := Schedule{ID: "s1", Date: "2025-11-07", Title: "dentist"}
	p := SchedulePatch{Title: Ptr("x")}.Merge(SchedulePatch{Title: Ptr("doctor"), Content: Ptr("bring card")})

	got := p.Apply(s)
	if got.Title != "doctor" || got.Content != "bring card" || got.Date != s.Date {
		t.Fatalf("got %+v", got)
	}
}

func TestValidateTask(t *testing.T) {
	tests := []struct {
		name  string
		task  Task
		field string
	}{
		{"ok day", Task{Title: "a", Type: TypeDay, Date: "2025-11-07"}, ""},
		{"daily without date", Task{Title: "a", Type: TypeDaily}, ""},
		{"empty title", Task{Title: "  ", Type: TypeDay, Date: "2025-11-07"}, "title"},
		{"unknown type", Task{Title: "a", Type: "WEEK"}, "type"},
		{"due without date", Task{Title: "a", Type: TypeDue}, "date"},
		{"bad date", Task{Title: "a", Type: TypeDay, Date: "2025-13-01"}, "date"},
		{"negative order", Task{Title: "a", Type: TypeDay, Date: "2025-11-07", SortOrder: Ptr(-1)}, "sort_order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewTask(tt.task)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("err = %v, want field %s", err, tt.field)
			}
		})
	}

	if err := ValidateTask(Task{Type: TypeDay, Date: "2025-11-07"}); err != nil {
		t.Fatalf("existing task may have an empty title: %v", err)
	}
}

func TestSortKeyPutsUnorderedLast(t *testing.T) {
	tasks := []Task{
		{ID: "c"},
		{ID: "b", SortOrder: Ptr(2)},
		{ID: "a"},
		{ID: "d", SortOrder: Ptr(1)},
	}
	sort.SliceStable(tasks, func(i, j int) bool { return SortKey(tasks[i], tasks[j]) })

	want := []string{"d", "b", "a", "c"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := (Task{Title: " "}).DisplayTitle(); got != UntitledPlaceholder {
		t.Fatalf("got %q", got)
	}
	if got := (Schedule{}).DisplayTitle(); got == "" {
		t.Fatal("schedule placeholder empty")
	}
}
