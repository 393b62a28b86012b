package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/existflow/dayboard/internal/gateway"
)

// Backend serves the gateway collections from the server rows API
type Backend struct {
	client *Client
}

// NewBackend returns a gateway backend over c
func NewBackend(c *Client) *Backend {
	return &Backend{client: c}
}

func collectionPath(collection string) string {
	return "/api/v1/rest/" + url.PathEscape(collection)
}

// Select runs a query
func (b *Backend) Select(ctx context.Context, collection string, q gateway.Query) ([]gateway.Row, error) {
	path := collectionPath(collection)
	if v := q.Values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var rows []gateway.Row
	if err := b.client.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert creates a row
func (b *Backend) Insert(ctx context.Context, collection string, payload gateway.Row) (gateway.Row, error) {
	var row gateway.Row
	if err := b.client.do(ctx, http.MethodPost, collectionPath(collection), payload, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update patches a row
func (b *Backend) Update(ctx context.Context, collection, id string, patch gateway.Row) (gateway.Row, error) {
	var row gateway.Row
	path := collectionPath(collection) + "/" + url.PathEscape(id)
	if err := b.client.do(ctx, http.MethodPatch, path, patch, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a row
func (b *Backend) Delete(ctx context.Context, collection, id string) error {
	path := collectionPath(collection) + "/" + url.PathEscape(id)
	return b.client.do(ctx, http.MethodDelete, path, nil, nil)
}
