package task

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

var ErrNotFound = errors.New("task not found")

// Patch is a partial update; nil pointers mean "no change". Only the
// user-owned fields are patchable. The linked activity and project
// back-references belong to the synchronizer.
type Patch struct {
	Task       *string             `json:"task,omitempty"`
	Desc       *string             `json:"desc,omitempty"`
	Status     *model.TaskStatus   `json:"status,omitempty"`
	Priority   *model.TaskPriority `json:"priority,omitempty"`
	AssignedTo *[]string           `json:"assignedTo,omitempty"`
	Hours      *float64            `json:"hours,omitempty"`
}

type ListFilter struct {
	// Status: "" | "all" | exact status value
	Status string
	// Project: "" | "any" | exact project name
	Project string
}

type Repo interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id model.TaskID) (model.Task, error)
	Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error)
	Delete(ctx context.Context, id model.TaskID) error
	DeleteMany(ctx context.Context, ids []model.TaskID) error
	List(ctx context.Context, filter ListFilter) ([]model.Task, error)
	// ListByProject returns the tasks whose linkedActivity points at
	// the project, newest first.
	ListByProject(ctx context.Context, projectID model.ProjectID) ([]model.Task, error)
}

func newID() model.TaskID {
	return model.TaskID("task_" + uuid.NewString())
}

func normalize(t *model.Task) {
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityPending
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	if t.Activities == nil {
		t.Activities = []string{}
	}
}

func applyPatch(t *model.Task, p Patch) {
	if p.Task != nil {
		t.Task = *p.Task
	}
	if p.Desc != nil {
		t.Desc = *p.Desc
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == nil {
			t.AssignedTo = []string{}
		} else {
			t.AssignedTo = *p.AssignedTo
		}
	}
	if p.Hours != nil {
		t.Hours = *p.Hours
	}
}

// StoreRepo persists tasks in the "tasks" collection.
type StoreRepo struct {
	col store.Collection
}

func NewRepo(s store.Store) *StoreRepo {
	return &StoreRepo{col: s.Collection("tasks")}
}

func (r *StoreRepo) put(ctx context.Context, t model.Task) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return r.col.Put(ctx, string(t.ID), b)
}

func (r *StoreRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalize(&t)
	if err := r.put(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *StoreRepo) Get(ctx context.Context, id model.TaskID) (model.Task, error) {
	doc, err := r.col.Get(ctx, string(id))
	if errors.Is(err, store.ErrNotFound) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	return decode(doc)
}

func (r *StoreRepo) Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	applyPatch(&t, p)
	t.UpdatedAt = time.Now()
	normalize(&t)
	if err := r.put(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *StoreRepo) Delete(ctx context.Context, id model.TaskID) error {
	err := r.col.Delete(ctx, string(id))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *StoreRepo) DeleteMany(ctx context.Context, ids []model.TaskID) error {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	return r.col.DeleteMany(ctx, raw)
}

func (r *StoreRepo) List(ctx context.Context, filter ListFilter) ([]model.Task, error) {
	docs, err := r.col.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		t, err := decode(doc)
		if err != nil {
			return nil, err
		}
		if !matches(t, filter) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *StoreRepo) ListByProject(ctx context.Context, projectID model.ProjectID) ([]model.Task, error) {
	docs, err := r.col.List(ctx, store.Filter{
		Field: "linkedActivity.projectId",
		Value: string(projectID),
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		t, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func matches(t model.Task, filter ListFilter) bool {
	switch filter.Status {
	case "", "all":
	default:
		if string(t.Status) != filter.Status {
			return false
		}
	}
	switch filter.Project {
	case "", "any":
	default:
		if t.Project != filter.Project {
			return false
		}
	}
	return true
}

func decode(doc store.Doc) (model.Task, error) {
	var t model.Task
	if err := json.Unmarshal(doc.Data, &t); err != nil {
		return model.Task{}, fmt.Errorf("decode task %s: %w", doc.ID, err)
	}
	normalize(&t)
	return t, nil
}
