// Package config provides configuration management for the stencil
// engine CLI and its collaborators.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Plan     PlanConfig     `mapstructure:"plan"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// EngineConfig holds the recursion cutoffs and worker settings.
type EngineConfig struct {
	DtStop         int   `mapstructure:"dt_stop"`
	DtStopBoundary int   `mapstructure:"dt_stop_boundary"`
	DxStop         []int `mapstructure:"dx_stop"`
	DxStopBoundary []int `mapstructure:"dx_stop_boundary"`
	Workers        int   `mapstructure:"workers"`
}

// PlanConfig names the plan files. They are per-instance settings, not
// process-wide globals.
type PlanConfig struct {
	Dir          string `mapstructure:"dir"`
	BaseDataFile string `mapstructure:"base_data_file"`
	SyncDataFile string `mapstructure:"sync_data_file"`
}

// DatabaseConfig holds the run-store connection configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Path     string `mapstructure:"path"` // sqlite file path
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds plan-file storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // local or cos
	LocalPath string `mapstructure:"local_path"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the specified file path, falling back
// to defaults and environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/stencil-engine")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file: defaults apply.
		} else if os.IsNotExist(err) {
			// Named file missing: defaults apply.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("STENCIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.dt_stop", 5)
	v.SetDefault("engine.dt_stop_boundary", 5)
	v.SetDefault("engine.workers", 0)

	v.SetDefault("plan.dir", ".")
	v.SetDefault("plan.base_data_file", "plan.base")
	v.SetDefault("plan.sync_data_file", "plan.sync")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "stencil-runs.db")
	v.SetDefault("database.max_conns", 4)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./plans")

	v.SetDefault("log.level", "info")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Engine.DtStop < 0 || c.Engine.DtStopBoundary < 0 {
		return fmt.Errorf("negative time cutoff")
	}
	for _, dx := range c.Engine.DxStop {
		if dx < 0 {
			return fmt.Errorf("negative space cutoff")
		}
	}
	switch c.Database.Type {
	case "", "sqlite", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	switch c.Storage.Type {
	case "", "local", "cos":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Log.Level)
	}
	return nil
}
