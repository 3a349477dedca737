// Package serverapp assembles the HTTP surface: repos over the shared
// store, the synchronizer, auth, and every route behind the common
// middleware chain.
package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/auth"
	"fieldops/internal/catalog"
	"fieldops/internal/config"
	"fieldops/internal/daily"
	"fieldops/internal/httpmw"
	"fieldops/internal/metrics"
	"fieldops/internal/model"
	"fieldops/internal/project"
	"fieldops/internal/resource"
	"fieldops/internal/store"
	"fieldops/internal/sync"
	"fieldops/internal/task"
)

type Options struct {
	Config  *config.Config
	Store   store.Store
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Catalog *catalog.Service
}

// App bundles the wired handler with the pieces the command layer
// reuses: the synchronizer feeds the background runner and the auth
// service seeds the admin user.
type App struct {
	Handler http.Handler
	Sync    *sync.Synchronizer
	Auth    *auth.Service
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	projectRepo := project.NewRepo(opts.Store)
	taskRepo := task.NewRepo(opts.Store)
	dailyRepo := daily.NewRepo(opts.Store)
	resourceRepos := resource.NewRepos(opts.Store)

	synchronizer := sync.NewSynchronizer(projectRepo, taskRepo, dailyRepo, opts.Logger, opts.Metrics)

	authService := auth.NewService(auth.NewRepo(opts.Store), opts.Logger)
	authHandler := auth.NewHandler(authService)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "fieldops",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := taskRepo.List(r.Context(), task.ListFilter{}); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "fieldops",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/session", authHandler.Session)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)

	api := func(h http.HandlerFunc) http.Handler {
		return authService.RequireAPI(h)
	}

	projectHandler := project.NewHandler(projectRepo)
	projectHandler.SetTaskGenerator(func(ctx context.Context, id model.ProjectID) (int, int, error) {
		res, err := synchronizer.SyncProject(ctx, id)
		if errors.Is(err, sync.ErrProjectNotFound) {
			return 0, 0, project.ErrNotFound
		}
		return res.Created, res.Deleted, err
	})
	mux.Handle("/api/projects", api(projectHandler.Root))
	mux.Handle("/api/projects/", api(projectHandler.Sub))

	taskHandler := task.NewHandler(taskRepo)
	mux.Handle("/api/tasks", api(taskHandler.Root))
	mux.Handle("/api/tasks/", api(taskHandler.Sub))

	dailyHandler := daily.NewHandler(dailyRepo)
	mux.Handle("/api/dailies", api(dailyHandler.Root))
	mux.Handle("/api/dailies/", api(dailyHandler.Sub))

	resourceHandler := resource.NewHandler(resourceRepos)
	mux.Handle("/api/kits", api(resourceHandler.KitsRoot))
	mux.Handle("/api/kits/", api(resourceHandler.KitsSub))
	mux.Handle("/api/cars", api(resourceHandler.CarsRoot))
	mux.Handle("/api/cars/", api(resourceHandler.CarsSub))
	mux.Handle("/api/team", api(resourceHandler.TeamRoot))
	mux.Handle("/api/team/", api(resourceHandler.TeamSub))

	syncHandler := sync.NewHandler(synchronizer)
	mux.Handle("/api/sync/projects", api(syncHandler.Projects))
	mux.Handle("/api/sync/dailies", api(syncHandler.Dailies))

	if opts.Catalog != nil {
		mux.Handle("/api/catalog", api(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			writeJSON(w, http.StatusOK, opts.Catalog.Catalog())
		}))
	}

	handler := httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithMetrics(opts.Metrics),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	)

	return &App{
		Handler: handler,
		Sync:    synchronizer,
		Auth:    authService,
	}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
