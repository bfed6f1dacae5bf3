package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from the default locations. Load order (later
// sources override earlier):
//  1. Built-in defaults
//  2. User config (~/.topfive/config.yaml) - optional
//  3. Environment variables (TOPFIVE_*)
func Load() (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ConfigDirName, ConfigFileName)
		if _, err := os.Stat(userPath); err == nil {
			if err := mergeFromFile(cfg, userPath); err != nil {
				slog.Warn("failed to load user config", "path", userPath, "error", err)
			}
		}
	}

	applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom loads configuration from an explicit file path, layered over the
// defaults and under the environment.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if err := mergeFromFile(cfg, path); err != nil {
		return nil, err
	}
	applyEnvVars(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFromFile unmarshals path over cfg. Fields absent from the file keep
// their current values.
func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnvVars overrides cfg from TOPFIVE_* environment variables.
func applyEnvVars(cfg *Config) {
	if v := os.Getenv("TOPFIVE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TOPFIVE_CRON_SECRET"); v != "" {
		cfg.Server.CronSecret = v
	}
	if v := os.Getenv("TOPFIVE_STORAGE_MODE"); v != "" {
		cfg.Storage.Mode = v
	}
	if v := os.Getenv("TOPFIVE_REDIS_URL"); v != "" {
		cfg.Storage.Redis.URL = v
	}
	if v := os.Getenv("TOPFIVE_REDIS_ADDR"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv("TOPFIVE_REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("TOPFIVE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Redis.DB = db
		}
	}
	if v := os.Getenv("TOPFIVE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("TOPFIVE_RESET_AT"); v != "" {
		cfg.Reset.At = v
	}
	if v := os.Getenv("TOPFIVE_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Save.DebounceMS = ms
		}
	}
	if v := os.Getenv("TOPFIVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TOPFIVE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
