package project

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fieldops/internal/model"
)

// GenerateFunc runs the activity→task synchronization for one project
// and reports how many tasks it created and deleted.
type GenerateFunc func(ctx context.Context, id model.ProjectID) (created, deleted int, err error)

type Handler struct {
	repo     Repo
	generate GenerateFunc
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetTaskGenerator(fn GenerateFunc) {
	h.generate = fn
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// /api/projects  (collection)
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ps, err := h.repo.List(r.Context())
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ps)

	case http.MethodPost:
		var in model.Project
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			writeErr(w, 400, "project name is required")
			return
		}
		p, err := h.repo.Create(r.Context(), in)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 201, p)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

// /api/projects/{id} and /api/projects/{id}/generate-tasks
func (h *Handler) Sub(w http.ResponseWriter, r *http.Request) {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}
	parts := strings.Split(tail, "/")
	id := model.ProjectID(parts[0])

	if len(parts) == 2 && parts[1] == "generate-tasks" {
		h.generateTasks(w, r, id)
		return
	}
	if len(parts) != 1 {
		writeErr(w, 404, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.repo.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, p)

	case http.MethodPatch:
		var patch Patch
		if err := decodeJSON(r, &patch); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		p, err := h.repo.Update(r.Context(), id, patch)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, p)

	case http.MethodDelete:
		err := h.repo.Delete(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (h *Handler) generateTasks(w http.ResponseWriter, r *http.Request, id model.ProjectID) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	if h.generate == nil {
		writeErr(w, 500, "task generation not configured")
		return
	}

	created, deleted, err := h.generate(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeErr(w, 404, "not found")
		return
	}
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{
		"success": true,
		"message": "tasks synchronized",
		"created": created,
		"deleted": deleted,
	})
}
