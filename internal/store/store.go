// Package store provides the record store backing every fieldops
// collection: JSON documents keyed by opaque string ids, with
// equality filters and most-recent-first listing. Entity repos wrap a
// Collection with typed APIs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Filter matches documents whose value at Field equals Value. Field is
// a dotted path into the document, e.g. "linkedActivity.projectId".
type Filter struct {
	Field string
	Value string
}

type Doc struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Collection interface {
	// Put inserts or replaces the document under id.
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) (Doc, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	// List returns documents matching every filter, most recently
	// written first.
	List(ctx context.Context, filters ...Filter) ([]Doc, error)
}

type Store interface {
	Collection(name string) Collection
	Close() error
}

// Open returns a store for the configured driver: "memory" or
// "sqlite" (default).
func Open(driver, path string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "", "sqlite":
		return OpenSQLite(path)
	default:
		return nil, errors.New("unknown store driver: " + driver)
	}
}
