package repo

import (
	"context"

	"golang.org/x/sync/errgroup"

	tferrors "github.com/topfiveapp/topfive/internal/errors"
	"github.com/topfiveapp/topfive/internal/events"
	"github.com/topfiveapp/topfive/internal/storage"
	"github.com/topfiveapp/topfive/internal/task"
)

// ResetDailyReminders sweeps every known workspace and flips completed
// daily reminders back to incomplete. All other tasks are untouched. The
// sweep is idempotent: a second run right after the first finds nothing to
// flip.
//
// Workspaces are swept independently; a failure in one does not roll back
// another's already-applied updates. Within one workspace all flips land in
// a single write.
func (r *Repository) ResetDailyReminders(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, ws := range task.ValidWorkspaces() {
		g.Go(func() error {
			return r.resetWorkspace(ctx, ws)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

func (r *Repository) resetWorkspace(ctx context.Context, ws task.Workspace) error {
	key := storage.CollectionKey(ws)

	byID, found, err := r.backend.GetAll(ctx, key)
	if err != nil {
		r.logger.Error("reset sweep read failed", "workspace", ws, "error", err)
		return tferrors.ErrStorageUnavailable(err)
	}
	if !found {
		return nil
	}

	updates := make(map[string]*task.Task)
	for id, t := range byID {
		if t.IsDailyReminder && t.Completed {
			reset := t.Clone()
			reset.Completed = false
			updates[id] = reset
		}
	}
	if len(updates) == 0 {
		return nil
	}

	if err := r.backend.SetFields(ctx, key, updates); err != nil {
		r.logger.Error("reset sweep write failed", "workspace", ws, "error", err)
		return tferrors.ErrStorageWrite(err)
	}

	r.logger.Info("daily reminders reset", "workspace", ws, "count", len(updates))
	r.publish(events.NewEvent(events.EventRemindersReset, string(ws), "", map[string]int{"count": len(updates)}))
	return nil
}
