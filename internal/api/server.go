package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/topfiveapp/topfive/internal/events"
	"github.com/topfiveapp/topfive/internal/lifecycle"
	"github.com/topfiveapp/topfive/internal/repo"
)

// Server is the topfive API server.
type Server struct {
	addr       string
	cronSecret string
	mux        *http.ServeMux
	logger     *slog.Logger

	repo      *repo.Repository
	saver     *lifecycle.Saver
	publisher events.Publisher
	wsHandler *WSHandler
}

// Config holds server configuration.
type Config struct {
	Addr string
	// CronSecret, when non-empty, requires a matching bearer token on the
	// cron endpoint.
	CronSecret string
	Repo       *repo.Repository
	// Saver backs the autosave endpoint. When nil the endpoint writes
	// through immediately.
	Saver     *lifecycle.Saver
	Publisher events.Publisher
	Logger    *slog.Logger
}

// New creates a new API server.
func New(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		addr:       addr,
		cronSecret: cfg.CronSecret,
		mux:        http.NewServeMux(),
		logger:     logger,
		repo:       cfg.Repo,
		saver:      cfg.Saver,
		publisher:  cfg.Publisher,
	}

	if s.publisher != nil {
		s.wsHandler = NewWSHandler(s.publisher, logger)
	}

	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))

	// Tasks
	s.mux.HandleFunc("GET /api/tasks", cors(s.handleListTasks))
	s.mux.HandleFunc("POST /api/tasks", cors(s.handleCreateTask))
	s.mux.HandleFunc("PUT /api/tasks/{id}", cors(s.handleUpdateTask))
	s.mux.HandleFunc("PUT /api/tasks/{id}/autosave", cors(s.handleAutosaveTask))
	s.mux.HandleFunc("DELETE /api/tasks/{id}", cors(s.handleDeleteTask))
	s.mux.HandleFunc("POST /api/tasks/swap", cors(s.handleSwapTasks))

	// Daily reminder reset
	s.mux.HandleFunc("POST /api/tasks/reset-daily", cors(s.handleResetDaily))
	s.mux.HandleFunc("GET /api/cron/daily-reset", cors(s.handleCronReset))

	// WebSocket event feed
	if s.wsHandler != nil {
		s.mux.Handle("GET /api/ws", s.wsHandler)
	}

	// Prometheus metrics
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the server's HTTP handler with metrics instrumentation.
func (s *Server) Handler() http.Handler {
	return MetricsMiddleware(s.mux)
}

// Start starts the API server and blocks until it exits.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// StartContext starts the API server with context for graceful shutdown.
func (s *Server) StartContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		if s.wsHandler != nil {
			s.wsHandler.CloseAll()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok"})
}
