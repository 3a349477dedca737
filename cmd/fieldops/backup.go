package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fieldops/internal/ops"
)

func newBackupCmd(v *viper.Viper) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "archive the data directory to a tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if out == "" {
				ts := time.Now().UTC().Format("20060102T150405Z")
				out = filepath.Join("backups", "fieldops-"+ts+".tar.gz")
			}
			if err := ops.BackupDataDir(cfg.Data.Dir, out); err != nil {
				return err
			}
			cmd.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output archive path (.tar.gz)")
	return cmd
}

func newRestoreCmd(v *viper.Viper) *cobra.Command {
	var archive, target string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "restore a backup archive into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return fmt.Errorf("--archive is required")
			}
			if target == "" {
				cfg, err := loadConfig(v)
				if err != nil {
					return err
				}
				target = cfg.Data.Dir + "-restored"
			}
			return ops.RestoreDataDir(archive, target)
		},
	}

	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "", "restore target directory")
	return cmd
}
