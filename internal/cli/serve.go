package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/topfiveapp/topfive/internal/api"
	"github.com/topfiveapp/topfive/internal/events"
	"github.com/topfiveapp/topfive/internal/lifecycle"
	"github.com/topfiveapp/topfive/internal/repo"
	"github.com/topfiveapp/topfive/internal/schedule"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the topfive API server.

The server provides REST endpoints for task management, a WebSocket feed
of task events, Prometheus metrics on /metrics, and a cron endpoint for
external schedulers. When the daily reset is enabled in config, the
server also runs the reminder reset itself at the configured time.

Example:
  topfive serve              # Start on the configured address (default :8080)
  topfive serve --addr :3000 # Start on a custom address`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			addr := cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			logger := newLogger(cfg)
			pub := events.NewMemoryPublisher()
			defer pub.Close()

			r, closeRepo, err := openRepo(cfg, repo.WithPublisher(pub), repo.WithLogger(logger))
			if err != nil {
				return err
			}
			defer closeRepo()

			saver := lifecycle.NewSaver(r, cfg.DebounceWindow(), logger)
			defer saver.Close()

			server := api.New(&api.Config{
				Addr:       addr,
				CronSecret: cfg.Server.CronSecret,
				Repo:       r,
				Saver:      saver,
				Publisher:  pub,
				Logger:     logger,
			})

			// Handle graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if cfg.Reset.Enabled {
				sched, err := schedule.New(r, cfg.Reset.At, logger)
				if err != nil {
					return err
				}
				sched.Start(ctx)
				defer sched.Stop()
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				fmt.Println("\nShutting down...")
				cancel()
			}()

			fmt.Printf("Starting API server on %s\n", addr)
			fmt.Println("Press Ctrl+C to stop")

			err = server.StartContext(ctx)

			// Persist any edits still sitting in the debounce window.
			if flushErr := saver.Flush(context.Background()); flushErr != nil {
				logger.Error("flushing pending saves", "error", flushErr)
			}

			return err
		},
	}

	cmd.Flags().String("addr", ":8080", "address to listen on")

	return cmd
}
