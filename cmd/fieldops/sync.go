package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fieldops/internal/serverapp"
	"fieldops/internal/store"
)

func newSyncCmd(v *viper.Viper) *cobra.Command {
	var dailiesOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "run one project and daily sync pass against the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			st, err := store.Open(cfg.Data.Driver, filepath.Join(cfg.Data.Dir, "fieldops.db"))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			app, err := serverapp.New(serverapp.Options{Config: cfg, Store: st, Logger: logger})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if !dailiesOnly {
				results, err := app.Sync.SyncAllProjects(ctx)
				if err != nil {
					return err
				}
				for _, r := range results {
					line := fmt.Sprintf("%s: +%d -%d", r.Project, r.Created, r.Deleted)
					if r.Error != "" {
						line += " error: " + r.Error
					}
					cmd.Println(line)
				}
			}

			results, err := app.Sync.SyncDailies(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("dailies: %d reports touched\n", len(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dailiesOnly, "dailies-only", false, "skip the project pass")
	return cmd
}
