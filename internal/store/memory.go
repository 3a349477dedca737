package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps every collection in process memory. Used by tests
// and by the memory driver; semantics match the sqlite store.
type MemoryStore struct {
	mu   sync.RWMutex
	cols map[string]map[string]Doc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cols: map[string]map[string]Doc{}}
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) colLocked(name string) map[string]Doc {
	c, ok := s.cols[name]
	if !ok {
		c = map[string]Doc{}
		s.cols[name] = c
	}
	return c
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) Put(_ context.Context, id string, data []byte) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	col := c.store.colLocked(c.name)
	now := time.Now()
	doc := Doc{ID: id, Data: append(json.RawMessage(nil), data...), CreatedAt: now, UpdatedAt: now}
	if prev, ok := col[id]; ok {
		doc.CreatedAt = prev.CreatedAt
	}
	col[id] = doc
	return nil
}

func (c *memoryCollection) Get(_ context.Context, id string) (Doc, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	doc, ok := c.store.cols[c.name][id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return doc, nil
}

func (c *memoryCollection) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	col := c.store.colLocked(c.name)
	if _, ok := col[id]; !ok {
		return ErrNotFound
	}
	delete(col, id)
	return nil
}

func (c *memoryCollection) DeleteMany(_ context.Context, ids []string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	col := c.store.colLocked(c.name)
	for _, id := range ids {
		delete(col, id)
	}
	return nil
}

func (c *memoryCollection) List(_ context.Context, filters ...Filter) ([]Doc, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	out := make([]Doc, 0, len(c.store.cols[c.name]))
	for _, doc := range c.store.cols[c.name] {
		if matchesFilters(doc.Data, filters) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesFilters(data json.RawMessage, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	for _, f := range filters {
		v, ok := lookupPath(m, f.Field)
		if !ok {
			return false
		}
		if fmt.Sprint(v) != f.Value {
			return false
		}
	}
	return true
}

func lookupPath(m map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = m
	for _, p := range parts {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
