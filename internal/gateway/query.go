package gateway

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Collections served by the backend
const (
	CollectionTasks    = "tasks"
	CollectionSchedule = "schedule"
)

// filterable lists the columns a query may filter or order on
var filterable = map[string]map[string]bool{
	CollectionTasks: {
		"id": true, "type": true, "date": true, "sort_order": true,
		"is_completed": true, "created_at": true, "updated_at": true,
	},
	CollectionSchedule: {
		"id": true, "date": true, "created_at": true, "updated_at": true,
	},
}

// KnownCollection reports whether name is a served collection
func KnownCollection(name string) bool {
	_, ok := filterable[name]
	return ok
}

// Op is a filter comparison operator
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Filter compares a column against a value
type Filter struct {
	Column string
	Op     Op
	Value  string
}

// Order sorts by one column. Nulls always sort last.
type Order struct {
	Column string
	Desc   bool
}

// Query is a select request: filters, ordering and an optional range
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
	Offset  int
}

// Where returns a copy of q with an extra filter
func (q Query) Where(column string, op Op, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: op, Value: value})
	return q
}

// OrderBy returns a copy of q with an extra ascending sort column
func (q Query) OrderBy(column string) Query {
	q.Order = append(append([]Order(nil), q.Order...), Order{Column: column})
	return q
}

// OrderByDesc returns a copy of q with an extra descending sort column
func (q Query) OrderByDesc(column string) Query {
	q.Order = append(append([]Order(nil), q.Order...), Order{Column: column, Desc: true})
	return q
}

// Range returns a copy of q limited to rows [offset, offset+limit)
func (q Query) Range(offset, limit int) Query {
	q.Offset = offset
	q.Limit = limit
	return q
}

// Check validates q against a collection. At most two distinct columns
// may be filtered at once.
func (q Query) Check(collection string) error {
	cols, ok := filterable[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}
	seen := map[string]bool{}
	for _, f := range q.Filters {
		if !cols[f.Column] {
			return fmt.Errorf("column %q cannot be filtered", f.Column)
		}
		switch f.Op {
		case OpEq, OpGte, OpLte:
		default:
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
		seen[f.Column] = true
	}
	if len(seen) > 2 {
		return fmt.Errorf("at most two filter columns allowed, got %d", len(seen))
	}
	for _, o := range q.Order {
		if !cols[o.Column] {
			return fmt.Errorf("column %q cannot be ordered", o.Column)
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("negative range")
	}
	return nil
}

// Values encodes q as URL parameters in the PostgREST style:
// type=eq.DAY&date=gte.2025-11-01&order=date.asc,id.asc
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, f := range q.Filters {
		v.Add(f.Column, string(f.Op)+"."+f.Value)
	}
	if len(q.Order) > 0 {
		parts := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			parts = append(parts, o.Column+"."+dir)
		}
		v.Set("order", strings.Join(parts, ","))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// Key returns a stable string form of q, suitable for cache keys
func (q Query) Key() string {
	return q.Values().Encode()
}

// ParseQuery decodes URL parameters produced by Values
func ParseQuery(v url.Values) (Query, error) {
	var q Query

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch k {
		case "order":
			for _, part := range strings.Split(v.Get(k), ",") {
				if part == "" {
					continue
				}
				col, dir, _ := strings.Cut(part, ".")
				switch dir {
				case "", "asc":
					q.Order = append(q.Order, Order{Column: col})
				case "desc":
					q.Order = append(q.Order, Order{Column: col, Desc: true})
				default:
					return Query{}, fmt.Errorf("invalid order direction %q", dir)
				}
			}
		case "limit", "offset":
			n, err := strconv.Atoi(v.Get(k))
			if err != nil || n < 0 {
				return Query{}, fmt.Errorf("invalid %s %q", k, v.Get(k))
			}
			if k == "limit" {
				q.Limit = n
			} else {
				q.Offset = n
			}
		default:
			for _, raw := range v[k] {
				op, value, ok := strings.Cut(raw, ".")
				if !ok {
					return Query{}, fmt.Errorf("invalid filter %s=%q", k, raw)
				}
				q.Filters = append(q.Filters, Filter{Column: k, Op: Op(op), Value: value})
			}
		}
	}
	return q, nil
}
