package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/model"
)

// ParseTask converts a backend row into a Task, rejecting rows that do not
// match the tasks schema.
func ParseTask(row Row) (model.Task, error) {
	var t model.Task
	var err error

	if t.ID, err = requiredString(row, "id"); err != nil {
		return model.Task{}, err
	}
	if t.Title, err = optionalString(row, "title"); err != nil {
		return model.Task{}, err
	}
	typ, err := requiredString(row, "type")
	if err != nil {
		return model.Task{}, err
	}
	t.Type = model.TaskType(typ)
	if !t.Type.Valid() {
		return model.Task{}, fmt.Errorf("field type: unknown task type %q", typ)
	}
	if t.Memo, err = optionalString(row, "memo"); err != nil {
		return model.Task{}, err
	}
	if t.Links, err = stringList(row, "links"); err != nil {
		return model.Task{}, err
	}
	if t.IsCompleted, err = boolean(row, "is_completed"); err != nil {
		return model.Task{}, err
	}
	if t.SortOrder, err = optionalInt(row, "sort_order"); err != nil {
		return model.Task{}, err
	}
	if t.Date, err = dateKey(row, "date"); err != nil {
		return model.Task{}, err
	}
	if t.Type.Dated() && t.Date == "" {
		return model.Task{}, fmt.Errorf("field date: %s task %s has no date", t.Type, t.ID)
	}
	if t.Type == model.TypeDaily {
		t.Date = ""
	}
	if t.CreatedAt, err = timestamp(row, "created_at"); err != nil {
		return model.Task{}, err
	}
	if t.UpdatedAt, err = timestamp(row, "updated_at"); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// ParseSchedule converts a backend row into a Schedule
func ParseSchedule(row Row) (model.Schedule, error) {
	var s model.Schedule
	var err error

	if s.ID, err = requiredString(row, "id"); err != nil {
		return model.Schedule{}, err
	}
	if s.Date, err = dateKey(row, "date"); err != nil {
		return model.Schedule{}, err
	}
	if s.Date == "" {
		return model.Schedule{}, fmt.Errorf("field date: schedule %s has no date", s.ID)
	}
	if s.Title, err = optionalString(row, "title"); err != nil {
		return model.Schedule{}, err
	}
	if s.Content, err = optionalString(row, "content"); err != nil {
		return model.Schedule{}, err
	}
	if s.CreatedAt, err = timestamp(row, "created_at"); err != nil {
		return model.Schedule{}, err
	}
	if s.UpdatedAt, err = timestamp(row, "updated_at"); err != nil {
		return model.Schedule{}, err
	}
	return s, nil
}

// TaskRow converts a new task into an insert payload. Server assigned
// columns are left out.
func TaskRow(t model.Task) Row {
	links := t.Links
	if links == nil {
		links = []string{}
	}
	row := Row{
		"title":        t.Title,
		"type":         string(t.Type),
		"memo":         t.Memo,
		"links":        links,
		"is_completed": t.IsCompleted,
		"sort_order":   nil,
		"date":         nil,
	}
	if t.SortOrder != nil {
		row["sort_order"] = *t.SortOrder
	}
	if t.Type.Dated() && t.Date != "" {
		row["date"] = t.Date
	}
	return row
}

// TaskPatchRow converts a patch into an update payload
func TaskPatchRow(p model.TaskPatch) Row {
	row := Row{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Type != nil {
		row["type"] = string(*p.Type)
	}
	if p.Memo != nil {
		row["memo"] = *p.Memo
	}
	if p.Links != nil {
		row["links"] = append([]string{}, (*p.Links)...)
	}
	if p.IsCompleted != nil {
		row["is_completed"] = *p.IsCompleted
	}
	if p.ClearSortOrder {
		row["sort_order"] = nil
	}
	if p.SortOrder != nil {
		row["sort_order"] = *p.SortOrder
	}
	if p.ClearDate {
		row["date"] = nil
	}
	if p.Date != nil {
		row["date"] = *p.Date
	}
	return row
}

// ScheduleRow converts a new schedule into an insert payload
func ScheduleRow(s model.Schedule) Row {
	return Row{
		"date":    s.Date,
		"title":   s.Title,
		"content": s.Content,
	}
}

// SchedulePatchRow converts a schedule patch into an update payload
func SchedulePatchRow(p model.SchedulePatch) Row {
	row := Row{}
	if p.Date != nil {
		row["date"] = *p.Date
	}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Content != nil {
		row["content"] = *p.Content
	}
	return row
}

func requiredString(row Row, field string) (string, error) {
	s, err := optionalString(row, field)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("field %s: missing", field)
	}
	return s, nil
}

func optionalString(row Row, field string) (string, error) {
	switch v := row[field].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("field %s: expected string, got %T", field, v)
	}
}

func boolean(row Row, field string) (bool, error) {
	switch v := row[field].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("field %s: expected bool, got %T", field, v)
	}
}

func optionalInt(row Row, field string) (*int, error) {
	var n int
	switch v := row[field].(type) {
	case nil:
		return nil, nil
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("field %s: %v is not an integer", field, v)
		}
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		n = int(i)
	default:
		return nil, fmt.Errorf("field %s: expected integer, got %T", field, v)
	}
	return &n, nil
}

func stringList(row Row, field string) ([]string, error) {
	switch v := row[field].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %s[%d]: expected string, got %T", field, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %s: expected list, got %T", field, v)
	}
}

func dateKey(row Row, field string) (string, error) {
	switch v := row[field].(type) {
	case nil:
		return "", nil
	case string:
		if v == "" {
			return "", nil
		}
		if !dateutil.ValidKey(v) {
			return "", fmt.Errorf("field %s: malformed date %q", field, v)
		}
		return v, nil
	case time.Time:
		return v.UTC().Format(dateutil.KeyLayout), nil
	default:
		return "", fmt.Errorf("field %s: expected date, got %T", field, v)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func timestamp(row Row, field string) (time.Time, error) {
	switch v := row[field].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("field %s: malformed timestamp %q", field, v)
	default:
		return time.Time{}, fmt.Errorf("field %s: expected timestamp, got %T", field, v)
	}
}

// TaskFromPayload reads an insert payload (no id or timestamps yet)
func TaskFromPayload(row Row) (model.Task, error) {
	candidate := Row{}
	for k, v := range row {
		candidate[k] = v
	}
	candidate["id"] = "pending"
	delete(candidate, "created_at")
	delete(candidate, "updated_at")
	t, err := ParseTask(candidate)
	if err != nil {
		return model.Task{}, &model.ValidationError{Field: "payload", Reason: err.Error()}
	}
	t.ID = ""
	return t, nil
}

// TaskPatchFromRow reads an update payload. An explicit null for
// sort_order or date clears the column.
func TaskPatchFromRow(row Row) (model.TaskPatch, error) {
	var p model.TaskPatch
	for k, v := range row {
		switch k {
		case "title", "memo":
			s, err := optionalString(row, k)
			if err != nil {
				return p, &model.ValidationError{Field: k, Reason: err.Error()}
			}
			if k == "title" {
				p.Title = &s
			} else {
				p.Memo = &s
			}
		case "type":
			s, err := optionalString(row, k)
			if err != nil {
				return p, &model.ValidationError{Field: k, Reason: err.Error()}
			}
			typ, err := model.ParseTaskType(s)
			if err != nil {
				return p, err
			}
			p.Type = &typ
		case "links":
			links, err := stringList(row, k)
			if err != nil {
				return p, &model.ValidationError{Field: k, Reason: err.Error()}
			}
			p.Links = &links
		case "is_completed":
			b, ok := v.(bool)
			if !ok {
				return p, &model.ValidationError{Field: k, Reason: fmt.Sprintf("expected bool, got %T", v)}
			}
			p.IsCompleted = &b
		case "sort_order":
			n, err := optionalInt(row, k)
			if err != nil {
				return p, &model.ValidationError{Field: k, Reason: err.Error()}
			}
			if n == nil {
				p.ClearSortOrder = true
			} else {
				p.SortOrder = n
			}
		case "date":
			d, err := dateKey(row, k)
			if err != nil {
				return p, &model.ValidationError{Field: k, Reason: err.Error()}
			}
			if d == "" {
				p.ClearDate = true
			} else {
				p.Date = &d
			}
		default:
			return p, &model.ValidationError{Field: k, Reason: "not writable"}
		}
	}
	return p, nil
}

// ScheduleFromPayload reads a schedule insert payload
func ScheduleFromPayload(row Row) (model.Schedule, error) {
	var s model.Schedule
	var err error
	for k := range row {
		switch k {
		case "date", "title", "content":
		default:
			return s, &model.ValidationError{Field: k, Reason: "not writable"}
		}
	}
	if s.Date, err = dateKey(row, "date"); err != nil {
		return s, &model.ValidationError{Field: "date", Reason: err.Error()}
	}
	if s.Title, err = optionalString(row, "title"); err != nil {
		return s, &model.ValidationError{Field: "title", Reason: err.Error()}
	}
	if s.Content, err = optionalString(row, "content"); err != nil {
		return s, &model.ValidationError{Field: "content", Reason: err.Error()}
	}
	return s, nil
}

// SchedulePatchFromRow reads a schedule update payload
func SchedulePatchFromRow(row Row) (model.SchedulePatch, error) {
	var p model.SchedulePatch
	for k := range row {
		switch k {
		case "date":
			d, err := dateKey(row, k)
			if err != nil || d == "" {
				return p, &model.ValidationError{Field: k, Reason: "expected YYYY-MM-DD"}
			}
			p.Date = &d
		case "title", "content":
			s, err := optionalString(row, k)
			if err != nil {
				return p, &model.ValidationError{Field: k, Reason: err.Error()}
			}
			if k == "title" {
				p.Title = &s
			} else {
				p.Content = &s
			}
		default:
			return p, &model.ValidationError{Field: k, Reason: "not writable"}
		}
	}
	return p, nil
}
