package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/topfiveapp/topfive/internal/repo"
	"github.com/topfiveapp/topfive/internal/task"
)

// saveTimeout bounds the write issued when a debounce window elapses.
const saveTimeout = 10 * time.Second

// Saver writes edits through to the repository after a quiescence window.
// Each edited record gets its own delayed save; a newer edit to the same
// record before the window elapses supersedes the in-flight one. This
// keeps rapid typing from producing a write per keystroke without letting
// edits go stale.
type Saver struct {
	repo   *repo.Repository
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingSave
	closed  bool
	wg      sync.WaitGroup
}

type pendingSave struct {
	timer *time.Timer
	ws    task.Workspace
	id    string
	task  *task.Task
}

// NewSaver creates a Saver with the given debounce window.
func NewSaver(r *repo.Repository, window time.Duration, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{
		repo:    r,
		window:  window,
		logger:  logger,
		pending: make(map[string]*pendingSave),
	}
}

// Schedule queues a debounced save of t. Any in-flight save for the same
// record is dropped and the window restarts.
func (s *Saver) Schedule(ws task.Workspace, id string, t *task.Task) {
	ws = normalizeWorkspace(ws)
	key := string(ws) + "/" + id

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}

	save := &pendingSave{ws: ws, id: id, task: t.Clone()}
	save.timer = time.AfterFunc(s.window, func() {
		s.fire(key, save)
	})
	s.pending[key] = save
}

// fire writes one elapsed save through, unless it was superseded.
func (s *Saver) fire(key string, save *pendingSave) {
	s.mu.Lock()
	if s.pending[key] != save {
		// A newer edit superseded this save while the callback was queued.
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.repo.Update(ctx, save.ws, save.id, save.task); err != nil {
		s.logger.Error("debounced save failed", "workspace", save.ws, "id", save.id, "error", err)
	}
}

// Flush writes every pending save through immediately.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	saves := make([]*pendingSave, 0, len(s.pending))
	for key, save := range s.pending {
		save.timer.Stop()
		delete(s.pending, key)
		saves = append(saves, save)
	}
	s.mu.Unlock()

	var firstErr error
	for _, save := range saves {
		if err := s.repo.Update(ctx, save.ws, save.id, save.task); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close drops all pending saves and waits for in-flight writes to finish.
// Use Flush first to persist instead of drop.
func (s *Saver) Close() {
	s.mu.Lock()
	s.closed = true
	for key, save := range s.pending {
		save.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// PendingCount returns how many records have a save queued.
func (s *Saver) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
