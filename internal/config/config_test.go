package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Mode != StorageModeRedis {
		t.Errorf("default storage mode = %q", cfg.Storage.Mode)
	}
	if cfg.Reset.At != "04:00" {
		t.Errorf("default reset time = %q", cfg.Reset.At)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
storage:
  mode: sqlite
  sqlite:
    path: /tmp/tasks.db
reset:
  at: "05:30"
save:
  debounce_ms: 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Mode != StorageModeSQLite {
		t.Errorf("mode = %q", cfg.Storage.Mode)
	}
	if cfg.Storage.SQLite.Path != "/tmp/tasks.db" {
		t.Errorf("sqlite path = %q", cfg.Storage.SQLite.Path)
	}
	if cfg.DebounceWindow() != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.DebounceWindow())
	}
	// Fields absent from the file keep defaults.
	if cfg.Storage.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q, want default", cfg.Storage.Redis.Addr)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TOPFIVE_ADDR", ":7070")
	t.Setenv("TOPFIVE_STORAGE_MODE", "memory")
	t.Setenv("TOPFIVE_DEBOUNCE_MS", "900")

	cfg := Default()
	applyEnvVars(cfg)

	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Mode != StorageModeMemory {
		t.Errorf("mode = %q", cfg.Storage.Mode)
	}
	if cfg.Save.DebounceMS != 900 {
		t.Errorf("debounce_ms = %d", cfg.Save.DebounceMS)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad mode", func(c *Config) { c.Storage.Mode = "postgres" }, true},
		{"bad reset time", func(c *Config) { c.Reset.At = "4am" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
