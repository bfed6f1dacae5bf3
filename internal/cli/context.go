package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/config"
	"github.com/topfiveapp/topfive/internal/repo"
	"github.com/topfiveapp/topfive/internal/storage"
	"github.com/topfiveapp/topfive/internal/task"
)

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

// newLogger builds the slog logger from config, raised to debug when
// --verbose is set.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// openRepo builds the repository over the configured storage backend.
// The returned close function releases the backend.
func openRepo(cfg *config.Config, opts ...repo.Option) (*repo.Repository, func(), error) {
	backend, err := storage.NewBackend(&cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	r := repo.New(backend, opts...)
	return r, func() { _ = backend.Close() }, nil
}

// findTask resolves a full or shortened task ID within a workspace.
func findTask(cmd *cobra.Command, r *repo.Repository, ws task.Workspace, id string) (*task.Task, error) {
	tasks, err := r.List(cmd.Context(), ws)
	if err != nil {
		return nil, err
	}
	var match *task.Task
	for _, t := range tasks {
		if t.ID == id || strings.HasPrefix(t.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous id %q", id)
			}
			match = t
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no task %q in %s", id, ws)
	}
	return match, nil
}

// resolveWorkspace validates a --workspace flag value, defaulting to Work.
func resolveWorkspace(raw string) (task.Workspace, error) {
	if raw == "" {
		return task.DefaultWorkspace, nil
	}
	ws := task.Workspace(raw)
	if !task.IsValidWorkspace(ws) {
		return "", fmt.Errorf("unknown workspace %q (valid: Work, Projects, Personal)", raw)
	}
	return ws, nil
}
