package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
)

// collection describes one table served through the gateway backend contract
type collection struct {
	columns  []string
	writable map[string]bool
	scan     func(*sql.Rows) (gateway.Row, error)
}

var collections = map[string]collection{
	gateway.CollectionTasks: {
		columns: []string{"id", "title", "type", "memo", "links", "is_completed", "sort_order", "date", "created_at", "updated_at"},
		writable: map[string]bool{
			"title": true, "type": true, "memo": true, "links": true,
			"is_completed": true, "sort_order": true, "date": true,
		},
		scan: scanTask,
	},
	gateway.CollectionSchedule: {
		columns:  []string{"id", "date", "title", "content", "created_at", "updated_at"},
		writable: map[string]bool{"date": true, "title": true, "content": true},
		scan:     scanSchedule,
	},
}

func lookup(name string) (collection, error) {
	c, ok := collections[name]
	if !ok {
		return collection{}, &model.ValidationError{Field: "collection", Reason: fmt.Sprintf("unknown collection %q", name)}
	}
	return c, nil
}

// Select runs a filtered, ordered query against a collection
func (db *DB) Select(ctx context.Context, name string, q gateway.Query) ([]gateway.Row, error) {
	c, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := q.Check(name); err != nil {
		return nil, &model.ValidationError{Field: "query", Reason: err.Error()}
	}

	var sb strings.Builder
	var args []any
	sb.WriteString("SELECT " + strings.Join(c.columns, ", ") + " FROM " + name)

	for i, f := range q.Filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		op := map[gateway.Op]string{gateway.OpEq: "=", gateway.OpGte: ">=", gateway.OpLte: "<="}[f.Op]
		sb.WriteString(f.Column + " " + op + " ?")
		arg, err := filterArg(f)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	for i, o := range q.Order {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		// nulls last on both dialects
		sb.WriteString(fmt.Sprintf("%s IS NULL, %s %s", o.Column, o.Column, dir))
	}

	switch {
	case q.Limit > 0:
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	case q.Offset > 0 && db.dialect == DialectSQLite:
		sb.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, q.Offset)
	case q.Offset > 0:
		sb.WriteString(" OFFSET ?")
		args = append(args, q.Offset)
	}

	rows, err := db.QueryContext(ctx, db.Rebind(sb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	var out []gateway.Row
	for rows.Next() {
		row, err := c.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return out, nil
}

// Insert stores a new row; id and timestamps are assigned here
func (db *DB) Insert(ctx context.Context, name string, payload gateway.Row) (gateway.Row, error) {
	c, err := lookup(name)
	if err != nil {
		return nil, err
	}

	cols, args, err := writeArgs(c, payload)
	if err != nil {
		return nil, err
	}
	id := db.NewID()
	now := db.Now()
	cols = append([]string{"id"}, cols...)
	cols = append(cols, "created_at", "updated_at")
	args = append([]any{id}, args...)
	args = append(args, now, now)

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), marks)
	if _, err := db.ExecContext(ctx, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", name, err)
	}
	return db.get(ctx, name, id)
}

// Update applies a partial update and refreshes updated_at
func (db *DB) Update(ctx context.Context, name, id string, patch gateway.Row) (gateway.Row, error) {
	c, err := lookup(name)
	if err != nil {
		return nil, err
	}

	cols, args, err := writeArgs(c, patch)
	if err != nil {
		return nil, err
	}
	cols = append(cols, "updated_at")
	args = append(args, db.Now(), id)

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", name, strings.Join(sets, ", "))
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, gateway.ErrNotFound
	}
	return db.get(ctx, name, id)
}

// Delete removes a row by id
func (db *DB) Delete(ctx context.Context, name, id string) error {
	if _, err := lookup(name); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM "+name+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (db *DB) get(ctx context.Context, name, id string) (gateway.Row, error) {
	rows, err := db.Select(ctx, name, gateway.Query{}.Where("id", gateway.OpEq, id).Range(0, 1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gateway.ErrNotFound
	}
	return rows[0], nil
}

// writeArgs converts a payload into column/argument pairs in a stable order
func writeArgs(c collection, payload gateway.Row) ([]string, []any, error) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if !c.writable[k] {
			return nil, nil, &model.ValidationError{Field: k, Reason: "not writable"}
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, nil, &model.ValidationError{Field: "payload", Reason: "empty"}
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		arg, err := columnArg(k, payload[k])
		if err != nil {
			return nil, nil, err
		}
		args = append(args, arg)
	}
	return keys, args, nil
}

func columnArg(col string, v any) (any, error) {
	switch col {
	case "links":
		links, err := toStrings(v)
		if err != nil {
			return nil, &model.ValidationError{Field: col, Reason: err.Error()}
		}
		data, err := json.Marshal(links)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	case "is_completed":
		b, ok := v.(bool)
		if !ok {
			return nil, &model.ValidationError{Field: col, Reason: fmt.Sprintf("expected bool, got %T", v)}
		}
		return b, nil
	case "sort_order":
		if v == nil {
			return nil, nil
		}
		n, err := toInt(v)
		if err != nil {
			return nil, &model.ValidationError{Field: col, Reason: err.Error()}
		}
		return n, nil
	case "date":
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, &model.ValidationError{Field: col, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
		if s == "" {
			return nil, nil
		}
		return s, nil
	default:
		if v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, &model.ValidationError{Field: col, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
		return s, nil
	}
}

func filterArg(f gateway.Filter) (any, error) {
	switch f.Column {
	case "is_completed":
		b, err := strconv.ParseBool(f.Value)
		if err != nil {
			return nil, &model.ValidationError{Field: f.Column, Reason: err.Error()}
		}
		return b, nil
	case "sort_order":
		n, err := strconv.ParseInt(f.Value, 10, 64)
		if err != nil {
			return nil, &model.ValidationError{Field: f.Column, Reason: err.Error()}
		}
		return n, nil
	default:
		return f.Value, nil
	}
}

func toStrings(v any) ([]string, error) {
	switch vv := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string item, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func scanTask(rows *sql.Rows) (gateway.Row, error) {
	var (
		id, title, typ, memo, links, createdAt, updatedAt string
		completed                                         bool
		sortOrder                                         sql.NullInt64
		date                                              sql.NullString
	)
	if err := rows.Scan(&id, &title, &typ, &memo, &links, &completed, &sortOrder, &date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var linkList []string
	if err := json.Unmarshal([]byte(links), &linkList); err != nil {
		return nil, fmt.Errorf("task %s has corrupt links: %w", id, err)
	}

	row := gateway.Row{
		"id":           id,
		"title":        title,
		"type":         typ,
		"memo":         memo,
		"links":        linkList,
		"is_completed": completed,
		"sort_order":   nil,
		"date":         nil,
		"created_at":   createdAt,
		"updated_at":   updatedAt,
	}
	if sortOrder.Valid {
		row["sort_order"] = sortOrder.Int64
	}
	if date.Valid {
		row["date"] = date.String
	}
	return row, nil
}

func scanSchedule(rows *sql.Rows) (gateway.Row, error) {
	var id, date, title, content, createdAt, updatedAt string
	if err := rows.Scan(&id, &date, &title, &content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return gateway.Row{
		"id":         id,
		"date":       date,
		"title":      title,
		"content":    content,
		"created_at": createdAt,
		"updated_at": updatedAt,
	}, nil
}
