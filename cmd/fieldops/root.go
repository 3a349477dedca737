package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fieldops/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldops",
		Short:         "field engineering operations service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("config", "fieldops.yml", "path to config file")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	v := viper.New()
	v.SetEnvPrefix("FIELDOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(
		newServeCmd(v),
		newSyncCmd(v),
		newBackupCmd(v),
		newRestoreCmd(v),
	)
	return root
}

// loadConfig reads the yaml config and layers FIELDOPS_* environment
// overrides on top.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if addr := v.GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := v.GetString("data_dir"); dir != "" {
		cfg.Data.Dir = dir
	}
	if driver := v.GetString("data_driver"); driver != "" {
		cfg.Data.Driver = driver
	}
	if email := v.GetString("admin_email"); email != "" {
		cfg.Auth.SeedAdminEmail = email
	}
	if pw := v.GetString("admin_password"); pw != "" {
		cfg.Auth.SeedAdminPassword = pw
	}
	if override := v.GetString("catalog_override"); override != "" {
		cfg.Catalog.Override = override
	}
	return cfg, nil
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if v.GetBool("debug") {
		zcfg = zap.NewDevelopmentConfig()
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
