// Package config loads repcal's configuration from an optional repcal.yaml
// and REPCAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Program  ProgramConfig  `mapstructure:"program"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address       string `mapstructure:"address"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ProgramConfig names where the live program is generated from. Template
// wins over ConfigDir; with neither the seed program is used.
type ProgramConfig struct {
	Template  string `mapstructure:"template"`
	ConfigDir string `mapstructure:"config_dir"`
}

type SyncConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	URLs       []string      `mapstructure:"urls"`
	Interval   time.Duration `mapstructure:"interval"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// LogConfig enables a rotating log file when File is set.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// EnvPrefix prefixes every environment variable, e.g. REPCAL_SERVER_ADDRESS.
const EnvPrefix = "REPCAL"

// Load reads configuration. path is a directory searched for repcal.yaml,
// or a config file path; empty searches the working directory. A missing
// file is fine.
func Load(path string) (Config, error) {
	v := viper.New()
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else {
		if path == "" {
			path = "."
		}
		v.AddConfigPath(path)
		v.SetConfigName("repcal")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("database.path", "repcal.db")
	v.SetDefault("program.template", "")
	v.SetDefault("program.config_dir", "")
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.urls", []string{})
	v.SetDefault("sync.interval", "1m")
	v.SetDefault("sync.retry_delay", "2s")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("config: read: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Sync.Interval <= 0 {
		return cfg, fmt.Errorf("config: sync.interval must be positive, got %s", cfg.Sync.Interval)
	}
	return cfg, nil
}
