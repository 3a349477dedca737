package daily

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

var ErrNotFound = errors.New("daily report not found")

type Patch struct {
	Status   *model.DailyStatus  `json:"status,omitempty"`
	Priority *model.TaskPriority `json:"priority,omitempty"`
	Hours    *float64            `json:"hours,omitempty"`
	Progress *int                `json:"progress,omitempty"`
	Engineer *string             `json:"engineer,omitempty"`
}

type ListFilter struct {
	// Date: "" | YYYY-MM-DD
	Date string
	// TaskID: "" | exact task id
	TaskID string
}

type Repo interface {
	Create(ctx context.Context, d model.DailyReport) (model.DailyReport, error)
	Get(ctx context.Context, id model.DailyID) (model.DailyReport, error)
	Update(ctx context.Context, id model.DailyID, p Patch) (model.DailyReport, error)
	Delete(ctx context.Context, id model.DailyID) error
	List(ctx context.Context, filter ListFilter) ([]model.DailyReport, error)
	// FindForTaskOnDate returns the single report for (task, date), or
	// ErrNotFound. The daily sync relies on this to keep at most one
	// report per task per calendar day.
	FindForTaskOnDate(ctx context.Context, taskID model.TaskID, date string) (model.DailyReport, error)
}

func newID() model.DailyID {
	return model.DailyID("daily_" + uuid.NewString())
}

func normalize(d *model.DailyReport) {
	if d.Status == "" {
		d.Status = model.DailyPending
	}
	if d.Priority == "" {
		d.Priority = model.PriorityPending
	}
}

func applyPatch(d *model.DailyReport, p Patch) {
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Priority != nil {
		d.Priority = *p.Priority
	}
	if p.Hours != nil {
		d.Hours = *p.Hours
	}
	if p.Progress != nil {
		d.Progress = *p.Progress
	}
	if p.Engineer != nil {
		d.Engineer = *p.Engineer
	}
}

type StoreRepo struct {
	col store.Collection
}

func NewRepo(s store.Store) *StoreRepo {
	return &StoreRepo{col: s.Collection("dailies")}
}

func (r *StoreRepo) put(ctx context.Context, d model.DailyReport) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal daily report: %w", err)
	}
	return r.col.Put(ctx, string(d.ID), b)
}

func (r *StoreRepo) Create(ctx context.Context, d model.DailyReport) (model.DailyReport, error) {
	now := time.Now()
	d.ID = newID()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Date == "" {
		d.Date = now.Format("2006-01-02")
	}
	normalize(&d)
	if err := r.put(ctx, d); err != nil {
		return model.DailyReport{}, err
	}
	return d, nil
}

func (r *StoreRepo) Get(ctx context.Context, id model.DailyID) (model.DailyReport, error) {
	doc, err := r.col.Get(ctx, string(id))
	if errors.Is(err, store.ErrNotFound) {
		return model.DailyReport{}, ErrNotFound
	}
	if err != nil {
		return model.DailyReport{}, err
	}
	return decode(doc)
}

func (r *StoreRepo) Update(ctx context.Context, id model.DailyID, p Patch) (model.DailyReport, error) {
	d, err := r.Get(ctx, id)
	if err != nil {
		return model.DailyReport{}, err
	}
	applyPatch(&d, p)
	d.UpdatedAt = time.Now()
	normalize(&d)
	if err := r.put(ctx, d); err != nil {
		return model.DailyReport{}, err
	}
	return d, nil
}

func (r *StoreRepo) Delete(ctx context.Context, id model.DailyID) error {
	err := r.col.Delete(ctx, string(id))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *StoreRepo) List(ctx context.Context, filter ListFilter) ([]model.DailyReport, error) {
	var filters []store.Filter
	if filter.Date != "" {
		filters = append(filters, store.Filter{Field: "date", Value: filter.Date})
	}
	if filter.TaskID != "" {
		filters = append(filters, store.Filter{Field: "taskId", Value: filter.TaskID})
	}
	docs, err := r.col.List(ctx, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]model.DailyReport, 0, len(docs))
	for _, doc := range docs {
		d, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *StoreRepo) FindForTaskOnDate(ctx context.Context, taskID model.TaskID, date string) (model.DailyReport, error) {
	docs, err := r.col.List(ctx,
		store.Filter{Field: "taskId", Value: string(taskID)},
		store.Filter{Field: "date", Value: date})
	if err != nil {
		return model.DailyReport{}, err
	}
	if len(docs) == 0 {
		return model.DailyReport{}, ErrNotFound
	}
	return decode(docs[0])
}

func decode(doc store.Doc) (model.DailyReport, error) {
	var d model.DailyReport
	if err := json.Unmarshal(doc.Data, &d); err != nil {
		return model.DailyReport{}, fmt.Errorf("decode daily report %s: %w", doc.ID, err)
	}
	normalize(&d)
	return d, nil
}
