package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fieldops/internal/catalog"
	"fieldops/internal/metrics"
	"fieldops/internal/serverapp"
	"fieldops/internal/store"
	"fieldops/internal/sync"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server and background sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return err
	}
	st, err := store.Open(cfg.Data.Driver, filepath.Join(cfg.Data.Dir, "fieldops.db"))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	cat, err := catalog.NewService(cfg.Catalog.Override, logger)
	if err != nil {
		return err
	}

	app, err := serverapp.New(serverapp.Options{
		Config:  cfg,
		Store:   st,
		Logger:  logger,
		Metrics: metrics.New(),
		Catalog: cat,
	})
	if err != nil {
		return err
	}

	if err := app.Auth.SeedAdmin(ctx, cfg.Auth.SeedAdminEmail, cfg.Auth.SeedAdminPassword); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Sync.Dailies || cfg.Sync.Projects {
		runner := &sync.Runner{
			Sync:     app.Sync,
			Interval: cfg.Sync.Interval.Std(),
			Dailies:  cfg.Sync.Dailies,
			Projects: cfg.Sync.Projects,
			Logger:   logger,
		}
		g.Go(func() error { return runner.Run(ctx) })
	}

	if cfg.Catalog.Override != "" {
		g.Go(func() error { return cat.Watch(ctx) })
	}

	return g.Wait()
}
