package gateway

import "context"

// Row is a loosely typed record as returned by a backend
type Row map[string]any

// Backend is the row store the gateway talks to. Any store exposing these
// four operations over the tasks and schedule collections will do.
type Backend interface {
	Select(ctx context.Context, collection string, q Query) ([]Row, error)
	Insert(ctx context.Context, collection string, payload Row) (Row, error)
	Update(ctx context.Context, collection, id string, patch Row) (Row, error)
	Delete(ctx context.Context, collection, id string) error
}
