// Package resource tracks the physical side of field operations: test
// kits, fleet cars and team members. Plain CRUD over the record store;
// updates replace the document wholesale, keeping the original
// creation time.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldops/internal/model"
	"fieldops/internal/store"
)

var ErrNotFound = errors.New("resource not found")

// collection is a typed view over a store collection. The three
// resource repos share it; entity-specific defaults live in the
// normalize callbacks below.
type collection[T any] struct {
	col      store.Collection
	prefix   string
	getID    func(*T) string
	setID    func(*T, string)
	setTimes func(*T, time.Time, time.Time)
	getTimes func(*T) (time.Time, time.Time)
}

func (c *collection[T]) put(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", c.prefix, err)
	}
	return c.col.Put(ctx, c.getID(&v), b)
}

func (c *collection[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	now := time.Now()
	c.setID(&v, c.prefix+"_"+uuid.NewString())
	c.setTimes(&v, now, now)
	if err := c.put(ctx, v); err != nil {
		return zero, err
	}
	return v, nil
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := c.col.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(doc.Data, &v); err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", c.prefix, id, err)
	}
	return v, nil
}

// Update replaces the record, preserving id and creation time.
func (c *collection[T]) Update(ctx context.Context, id string, v T) (T, error) {
	var zero T
	prev, err := c.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	createdAt, _ := c.getTimes(&prev)
	c.setID(&v, id)
	c.setTimes(&v, createdAt, time.Now())
	if err := c.put(ctx, v); err != nil {
		return zero, err
	}
	return v, nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	err := c.col.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (c *collection[T]) List(ctx context.Context) ([]T, error) {
	docs, err := c.col.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", c.prefix, doc.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

type Repos struct {
	Kits *collection[model.Kit]
	Cars *collection[model.Car]
	Team *collection[model.TeamMember]
}

func NewRepos(s store.Store) *Repos {
	return &Repos{
		Kits: &collection[model.Kit]{
			col:    s.Collection("kits"),
			prefix: "kit",
			getID:  func(k *model.Kit) string { return k.ID },
			setID:  func(k *model.Kit, id string) { k.ID = id },
			setTimes: func(k *model.Kit, c, u time.Time) {
				k.CreatedAt, k.UpdatedAt = c, u
			},
			getTimes: func(k *model.Kit) (time.Time, time.Time) {
				return k.CreatedAt, k.UpdatedAt
			},
		},
		Cars: &collection[model.Car]{
			col:    s.Collection("cars"),
			prefix: "car",
			getID:  func(c *model.Car) string { return c.ID },
			setID:  func(c *model.Car, id string) { c.ID = id },
			setTimes: func(car *model.Car, c, u time.Time) {
				car.CreatedAt, car.UpdatedAt = c, u
			},
			getTimes: func(c *model.Car) (time.Time, time.Time) {
				return c.CreatedAt, c.UpdatedAt
			},
		},
		Team: &collection[model.TeamMember]{
			col:    s.Collection("team"),
			prefix: "member",
			getID:  func(m *model.TeamMember) string { return m.ID },
			setID:  func(m *model.TeamMember, id string) { m.ID = id },
			setTimes: func(m *model.TeamMember, c, u time.Time) {
				m.CreatedAt, m.UpdatedAt = c, u
			},
			getTimes: func(m *model.TeamMember) (time.Time, time.Time) {
				return m.CreatedAt, m.UpdatedAt
			},
		},
	}
}
