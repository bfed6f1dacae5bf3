// Package repo exposes workspace-scoped task operations over a storage
// backend.
package repo

import (
	"context"
	"log/slog"
	"sort"

	tferrors "github.com/topfiveapp/topfive/internal/errors"
	"github.com/topfiveapp/topfive/internal/events"
	"github.com/topfiveapp/topfive/internal/storage"
	"github.com/topfiveapp/topfive/internal/task"
)

// Repository provides list/create/update/delete over tasks, scoped by
// workspace. Storage failures surface directly; the repository never
// retries — after a failed write the caller must re-fetch before trusting
// any local copy.
type Repository struct {
	backend   storage.Backend
	publisher events.Publisher
	logger    *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithPublisher sets the event publisher for change notifications.
func WithPublisher(pub events.Publisher) Option {
	return func(r *Repository) {
		r.publisher = pub
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// New creates a Repository over the given backend.
func New(backend storage.Backend, opts ...Option) *Repository {
	r := &Repository{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// normalize applies the workspace default.
func normalize(ws task.Workspace) task.Workspace {
	if ws == "" {
		return task.DefaultWorkspace
	}
	return ws
}

// List returns the workspace's tasks sorted by priority bucket, then
// drop-dead date (unset last), then text. A workspace with no data yields
// an empty slice, not an error.
func (r *Repository) List(ctx context.Context, ws task.Workspace) ([]*task.Task, error) {
	ws = normalize(ws)

	byID, _, err := r.backend.GetAll(ctx, storage.CollectionKey(ws))
	if err != nil {
		r.logger.Error("list tasks failed", "workspace", ws, "error", err)
		return nil, tferrors.ErrStorageUnavailable(err)
	}

	tasks := make([]*task.Task, 0, len(byID))
	for _, t := range byID {
		tasks = append(tasks, t)
	}
	SortTasks(tasks)
	return tasks, nil
}

// Get returns one task by ID.
func (r *Repository) Get(ctx context.Context, ws task.Workspace, id string) (*task.Task, error) {
	ws = normalize(ws)

	byID, _, err := r.backend.GetAll(ctx, storage.CollectionKey(ws))
	if err != nil {
		return nil, tferrors.ErrStorageUnavailable(err)
	}
	t, ok := byID[id]
	if !ok {
		return nil, tferrors.ErrTaskNotFound(id)
	}
	return t, nil
}

// Create assigns a fresh ID, applies creation defaults, persists the task
// and returns the ID. ID generation is high-entropy random; the repository
// does not check for pre-existing IDs.
func (r *Repository) Create(ctx context.Context, t *task.Task) (string, error) {
	t = t.Clone()
	t.ID = task.NewID()
	t.Workspace = normalize(t.Workspace)
	t.ApplyDefaults()

	if errs := t.Validate(); errs.HasErrors() {
		return "", tferrors.ErrTaskInvalid(errs.Error())
	}

	key := storage.CollectionKey(t.Workspace)
	if err := r.backend.SetFields(ctx, key, map[string]*task.Task{t.ID: t}); err != nil {
		r.logger.Error("create task failed", "workspace", t.Workspace, "error", err)
		return "", tferrors.ErrStorageWrite(err)
	}

	r.publish(events.NewEvent(events.EventTaskCreated, string(t.Workspace), t.ID, t))
	return t.ID, nil
}

// Update fully replaces the record at id.
func (r *Repository) Update(ctx context.Context, ws task.Workspace, id string, t *task.Task) error {
	ws = normalize(ws)
	t = t.Clone()
	t.ID = id
	t.Workspace = ws

	if errs := t.Validate(); errs.HasErrors() {
		return tferrors.ErrTaskInvalid(errs.Error())
	}

	key := storage.CollectionKey(ws)
	if err := r.backend.SetFields(ctx, key, map[string]*task.Task{id: t}); err != nil {
		r.logger.Error("update task failed", "workspace", ws, "id", id, "error", err)
		return tferrors.ErrStorageWrite(err)
	}

	r.publish(events.NewEvent(events.EventTaskUpdated, string(ws), id, t))
	return nil
}

// Delete removes the record at id. Deleting a non-existent id is a no-op
// success.
func (r *Repository) Delete(ctx context.Context, ws task.Workspace, id string) error {
	ws = normalize(ws)

	if err := r.backend.DeleteField(ctx, storage.CollectionKey(ws), id); err != nil {
		r.logger.Error("delete task failed", "workspace", ws, "id", id, "error", err)
		return tferrors.ErrStorageWrite(err)
	}

	r.publish(events.NewEvent(events.EventTaskDeleted, string(ws), id, nil))
	return nil
}

// Swap demotes the task at demoteID to Urgent and writes the candidate in
// as Top 5, in one storage write. This is the repository half of the
// replace resolution: because both records go out in a single SetFields
// call there is no window where the demote has applied but the promote has
// not. The candidate keeps its ID if it has one (in-place promotion) or is
// assigned a fresh one (new task). Returns the candidate's ID.
func (r *Repository) Swap(ctx context.Context, ws task.Workspace, demoteID string, candidate *task.Task) (string, error) {
	ws = normalize(ws)

	byID, _, err := r.backend.GetAll(ctx, storage.CollectionKey(ws))
	if err != nil {
		return "", tferrors.ErrStorageUnavailable(err)
	}
	victim, ok := byID[demoteID]
	if !ok {
		return "", tferrors.ErrTaskNotFound(demoteID)
	}

	victim = victim.Clone()
	victim.Priority = task.PriorityUrgent

	candidate = candidate.Clone()
	if candidate.ID == "" {
		candidate.ID = task.NewID()
		candidate.ApplyDefaults()
	}
	candidate.Workspace = ws
	candidate.Priority = task.PriorityTop5

	if errs := candidate.Validate(); errs.HasErrors() {
		return "", tferrors.ErrTaskInvalid(errs.Error())
	}

	fields := map[string]*task.Task{
		victim.ID:    victim,
		candidate.ID: candidate,
	}
	if err := r.backend.SetFields(ctx, storage.CollectionKey(ws), fields); err != nil {
		r.logger.Error("swap failed", "workspace", ws, "demote", demoteID, "error", err)
		return "", tferrors.ErrStorageWrite(err)
	}

	r.publish(events.NewEvent(events.EventTasksSwapped, string(ws), candidate.ID, map[string]string{
		"demoted":  victim.ID,
		"promoted": candidate.ID,
	}))
	return candidate.ID, nil
}

func (r *Repository) publish(ev events.Event) {
	if r.publisher != nil {
		r.publisher.Publish(ev)
	}
}

// SortTasks orders tasks by priority bucket, then drop-dead date with unset
// dates last, then text.
func SortTasks(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if oa, ob := task.PriorityOrder(a.Priority), task.PriorityOrder(b.Priority); oa != ob {
			return oa < ob
		}
		at, bt := a.DropDeadTime(), b.DropDeadTime()
		switch {
		case at.IsZero() && !bt.IsZero():
			return false
		case !at.IsZero() && bt.IsZero():
			return true
		case !at.Equal(bt):
			return at.Before(bt)
		}
		return a.Text < b.Text
	})
}
