package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Data    DataConfig    `yaml:"data" json:"data"`
	Sync    SyncConfig    `yaml:"sync" json:"sync"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type DataConfig struct {
	Dir    string `yaml:"dir" json:"dir"`
	Driver string `yaml:"driver" json:"driver"` // sqlite | memory
}

// Duration parses yaml values like "5m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type SyncConfig struct {
	// Interval between background daily-report sync passes.
	Interval Duration `yaml:"interval" json:"interval"`
	// Dailies enables the background task→daily sync.
	Dailies bool `yaml:"dailies" json:"dailies"`
	// Projects additionally re-syncs every project's tasks each pass.
	Projects bool `yaml:"projects" json:"projects"`
}

type AuthConfig struct {
	SeedAdminEmail    string `yaml:"seed_admin_email" json:"seed_admin_email"`
	SeedAdminPassword string `yaml:"seed_admin_password" json:"-"`
}

type CatalogConfig struct {
	// Override points at a yaml file replacing the built-in systems
	// catalog. Watched for changes while serving.
	Override string `yaml:"override" json:"override"`
}

func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Data:    DataConfig{Dir: "data", Driver: "sqlite"},
		Sync:    SyncConfig{Interval: Duration(5 * time.Minute), Dailies: true},
		Auth:    AuthConfig{SeedAdminEmail: "admin@fieldops.local"},
		Catalog: CatalogConfig{},
	}
}

// Load reads the yaml config at path, falling back to defaults when
// the file does not exist. Unset fields keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.Driver == "" {
		cfg.Data.Driver = "sqlite"
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = Duration(5 * time.Minute)
	}
	return cfg, nil
}
