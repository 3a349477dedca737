package resource

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fieldops/internal/model"
)

type Handler struct {
	kits *crudHandler[model.Kit]
	cars *crudHandler[model.Car]
	team *crudHandler[model.TeamMember]
}

func NewHandler(repos *Repos) *Handler {
	return &Handler{
		kits: &crudHandler[model.Kit]{
			repo: repos.Kits,
			base: "/api/kits/",
			validate: func(k *model.Kit) error {
				if strings.TrimSpace(k.Name) == "" {
					return errors.New("kit name is required")
				}
				return nil
			},
		},
		cars: &crudHandler[model.Car]{
			repo: repos.Cars,
			base: "/api/cars/",
			validate: func(c *model.Car) error {
				if strings.TrimSpace(c.Plate) == "" {
					return errors.New("car plate is required")
				}
				return nil
			},
		},
		team: &crudHandler[model.TeamMember]{
			repo: repos.Team,
			base: "/api/team/",
			validate: func(m *model.TeamMember) error {
				if strings.TrimSpace(m.Name) == "" {
					return errors.New("member name is required")
				}
				return nil
			},
		},
	}
}

func (h *Handler) KitsRoot(w http.ResponseWriter, r *http.Request) { h.kits.root(w, r) }
func (h *Handler) KitsSub(w http.ResponseWriter, r *http.Request)  { h.kits.sub(w, r) }
func (h *Handler) CarsRoot(w http.ResponseWriter, r *http.Request) { h.cars.root(w, r) }
func (h *Handler) CarsSub(w http.ResponseWriter, r *http.Request)  { h.cars.sub(w, r) }
func (h *Handler) TeamRoot(w http.ResponseWriter, r *http.Request) { h.team.root(w, r) }
func (h *Handler) TeamSub(w http.ResponseWriter, r *http.Request)  { h.team.sub(w, r) }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

type crudHandler[T any] struct {
	repo     *collection[T]
	base     string
	validate func(*T) error
}

func (h *crudHandler[T]) root(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vs, err := h.repo.List(r.Context())
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, vs)

	case http.MethodPost:
		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if err := h.validate(&in); err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		v, err := h.repo.Create(r.Context(), in)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 201, v)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (h *crudHandler[T]) sub(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, h.base), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, 404, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := h.repo.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, v)

	case http.MethodPut:
		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if err := h.validate(&in); err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		v, err := h.repo.Update(r.Context(), id, in)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, v)

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
