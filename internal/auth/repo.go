package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldops/internal/model"
	"fieldops/internal/store"
)

var ErrNotFound = errors.New("auth record not found")

// Repo persists users and sessions in the shared document store, in
// the "users" and "sessions" collections.
type Repo struct {
	users    store.Collection
	sessions store.Collection
}

func NewRepo(s store.Store) *Repo {
	return &Repo{
		users:    s.Collection("users"),
		sessions: s.Collection("sessions"),
	}
}

func (r *Repo) putUser(ctx context.Context, u model.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return r.users.Put(ctx, u.ID, b)
}

func (r *Repo) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := r.putUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (model.User, error) {
	doc, err := r.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := json.Unmarshal(doc.Data, &u); err != nil {
		return model.User{}, fmt.Errorf("decode user %s: %w", doc.ID, err)
	}
	return u, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	docs, err := r.users.List(ctx, store.Filter{Field: "email", Value: email})
	if err != nil {
		return model.User{}, err
	}
	if len(docs) == 0 {
		return model.User{}, ErrNotFound
	}
	var u model.User
	if err := json.Unmarshal(docs[0].Data, &u); err != nil {
		return model.User{}, fmt.Errorf("decode user %s: %w", docs[0].ID, err)
	}
	return u, nil
}

func (r *Repo) putSession(ctx context.Context, s model.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.sessions.Put(ctx, s.ID, b)
}

func (r *Repo) CreateSession(ctx context.Context, s model.Session) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return r.putSession(ctx, s)
}

func (r *Repo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (model.Session, error) {
	docs, err := r.sessions.List(ctx, store.Filter{Field: "tokenHash", Value: tokenHash})
	if err != nil {
		return model.Session{}, err
	}
	if len(docs) == 0 {
		return model.Session{}, ErrNotFound
	}
	var s model.Session
	if err := json.Unmarshal(docs[0].Data, &s); err != nil {
		return model.Session{}, fmt.Errorf("decode session %s: %w", docs[0].ID, err)
	}
	return s, nil
}

func (r *Repo) DeleteSession(ctx context.Context, id string) error {
	err := r.sessions.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (r *Repo) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	s, err := r.GetSessionByTokenHash(ctx, tokenHash)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.DeleteSession(ctx, s.ID)
}

func (r *Repo) TouchSession(ctx context.Context, id string, lastSeen time.Time) error {
	doc, err := r.sessions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var s model.Session
	if err := json.Unmarshal(doc.Data, &s); err != nil {
		return fmt.Errorf("decode session %s: %w", doc.ID, err)
	}
	s.LastSeen = lastSeen
	s.UpdatedAt = lastSeen
	return r.putSession(ctx, s)
}
