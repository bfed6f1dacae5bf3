// Package config provides configuration loading for topfive.
package config

import (
	"fmt"
	"time"
)

// ConfigDirName is the per-user configuration directory under $HOME.
const ConfigDirName = ".topfive"

// ConfigFileName is the config file name inside the config directory.
const ConfigFileName = "config.yaml"

// Storage modes.
const (
	StorageModeRedis  = "redis"
	StorageModeSQLite = "sqlite"
	StorageModeMemory = "memory"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Reset   ResetConfig   `yaml:"reset"`
	Save    SaveConfig    `yaml:"save"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address for the API server.
	Addr string `yaml:"addr"`
	// CronSecret guards the cron trigger endpoint when non-empty. Empty
	// disables the check.
	CronSecret string `yaml:"cron_secret"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Mode is one of redis, sqlite, memory.
	Mode   string      `yaml:"mode"`
	Redis  RedisConfig `yaml:"redis"`
	SQLite SQLite      `yaml:"sqlite"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SQLite holds sqlite backend settings.
type SQLite struct {
	Path string `yaml:"path"`
}

// ResetConfig controls the in-process daily reminder reset.
type ResetConfig struct {
	// Enabled turns the in-process scheduler on. External cron via the
	// HTTP endpoint works regardless.
	Enabled bool `yaml:"enabled"`
	// At is the local time of day the sweep runs, "HH:MM".
	At string `yaml:"at"`
}

// SaveConfig controls the debounced autosave window.
type SaveConfig struct {
	// DebounceMS is the quiescence window in milliseconds before an edit
	// is written through.
	DebounceMS int `yaml:"debounce_ms"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Mode: StorageModeRedis,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			SQLite: SQLite{
				Path: "topfive.db",
			},
		},
		Reset: ResetConfig{
			Enabled: true,
			At:      "04:00",
		},
		Save: SaveConfig{
			DebounceMS: 750,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DebounceWindow returns the autosave quiescence window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	ms := c.Save.DebounceMS
	if ms <= 0 {
		ms = 750
	}
	return time.Duration(ms) * time.Millisecond
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case StorageModeRedis, StorageModeSQLite, StorageModeMemory, "":
	default:
		return fmt.Errorf("unknown storage mode: %s", c.Storage.Mode)
	}

	if c.Reset.At != "" {
		if _, err := time.Parse("15:04", c.Reset.At); err != nil {
			return fmt.Errorf("reset.at must be HH:MM: %w", err)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}

	return nil
}
