package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldops/internal/model"
	"fieldops/internal/selection"
	"fieldops/internal/store"
)

var ErrNotFound = errors.New("project not found")

// Patch is a partial update; nil pointers mean "no change". The
// activity list is replaced wholesale when present, matching the form
// submit semantics.
type Patch struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Customer    *string           `json:"customer,omitempty"`
	Location    *string           `json:"location,omitempty"`
	Status      *string           `json:"status,omitempty"`
	Systems     *[]string         `json:"systems,omitempty"`
	Activities  *[]model.Activity `json:"activities,omitempty"`
	Team        *[]string         `json:"team,omitempty"`
}

type Repo interface {
	Create(ctx context.Context, p model.Project) (model.Project, error)
	Get(ctx context.Context, id model.ProjectID) (model.Project, error)
	Update(ctx context.Context, id model.ProjectID, patch Patch) (model.Project, error)
	Delete(ctx context.Context, id model.ProjectID) error
	List(ctx context.Context) ([]model.Project, error)
}

func newID() model.ProjectID {
	return model.ProjectID("proj_" + uuid.NewString())
}

// normalize collapses duplicate activity tuples through the selection
// state so a project never stores the same tuple twice.
func normalize(p *model.Project) {
	if p.Systems == nil {
		p.Systems = []string{}
	}
	if p.Team == nil {
		p.Team = []string{}
	}
	p.Activities = selection.FromActivities(p.Activities).Activities()
}

func applyPatch(p *model.Project, patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Customer != nil {
		p.Customer = *patch.Customer
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Systems != nil {
		p.Systems = *patch.Systems
	}
	if patch.Activities != nil {
		p.Activities = *patch.Activities
	}
	if patch.Team != nil {
		p.Team = *patch.Team
	}
}

type StoreRepo struct {
	col store.Collection
}

func NewRepo(s store.Store) *StoreRepo {
	return &StoreRepo{col: s.Collection("projects")}
}

func (r *StoreRepo) put(ctx context.Context, p model.Project) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	return r.col.Put(ctx, string(p.ID), b)
}

func (r *StoreRepo) Create(ctx context.Context, p model.Project) (model.Project, error) {
	now := time.Now()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	normalize(&p)
	if err := r.put(ctx, p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *StoreRepo) Get(ctx context.Context, id model.ProjectID) (model.Project, error) {
	doc, err := r.col.Get(ctx, string(id))
	if errors.Is(err, store.ErrNotFound) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, err
	}
	return decode(doc)
}

func (r *StoreRepo) Update(ctx context.Context, id model.ProjectID, patch Patch) (model.Project, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	applyPatch(&p, patch)
	p.UpdatedAt = time.Now()
	normalize(&p)
	if err := r.put(ctx, p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *StoreRepo) Delete(ctx context.Context, id model.ProjectID) error {
	err := r.col.Delete(ctx, string(id))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *StoreRepo) List(ctx context.Context) ([]model.Project, error) {
	docs, err := r.col.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(docs))
	for _, doc := range docs {
		p, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decode(doc store.Doc) (model.Project, error) {
	var p model.Project
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		return model.Project{}, fmt.Errorf("decode project %s: %w", doc.ID, err)
	}
	normalize(&p)
	return p, nil
}
