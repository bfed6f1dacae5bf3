package lifecycle

import (
	"context"
	"sync"

	tferrors "github.com/topfiveapp/topfive/internal/errors"
	"github.com/topfiveapp/topfive/internal/repo"
	"github.com/topfiveapp/topfive/internal/task"
)

// State is the session's conflict state.
type State string

const (
	// StateIdle means no conflict is pending.
	StateIdle State = "idle"
	// StatePendingConflict means an add or promote hit the Top 5 limit
	// and awaits a resolution.
	StatePendingConflict State = "pending_conflict"
)

// Session drives task mutations through the capacity check and holds the
// pending-conflict state machine:
//
//	Idle -> PendingConflict (add/promote over cap)
//	PendingConflict -> Idle (MoveToUrgent | Replace | Cancel)
//
// A new add or promote while a conflict is pending is rejected rather than
// left undefined. The capacity check runs against the snapshot fetched at
// call time; concurrent writers from other sessions can race past it, which
// is accepted (single logical client).
type Session struct {
	repo *repo.Repository

	mu      sync.Mutex
	state   State
	pending *Conflict

	// deletion guard
	deleteWS task.Workspace
	deleteID string
}

// NewSession creates an idle session over the repository.
func NewSession(r *repo.Repository) *Session {
	return &Session{
		repo:  r,
		state: StateIdle,
	}
}

// State returns the current conflict state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pending returns the pending conflict, or nil when idle.
func (s *Session) Pending() *Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Add creates the candidate task unless it would overflow the Top 5
// slots, in which case the session enters PendingConflict and the
// conflict is returned for the caller to present. The created task gets
// the standard creation defaults (empty notes, not completed).
func (s *Session) Add(ctx context.Context, candidate *task.Task) (string, *Conflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePendingConflict {
		return "", nil, tferrors.ErrConflictPending()
	}

	candidate = candidate.Clone()
	candidate.Notes = ""
	candidate.Completed = false
	candidate.Workspace = normalizeWorkspace(candidate.Workspace)

	tasks, err := s.repo.List(ctx, candidate.Workspace)
	if err != nil {
		return "", nil, err
	}

	if conflict := CheckAdd(tasks, candidate); conflict != nil {
		s.state = StatePendingConflict
		s.pending = conflict
		return "", conflict, nil
	}

	id, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return "", nil, err
	}
	return id, nil, nil
}

// Promote applies an in-place edit that may move a task into Top 5. When
// the move would overflow the slots the edit is NOT applied and the
// session enters PendingConflict; canceling later leaves the task exactly
// as it was.
func (s *Session) Promote(ctx context.Context, ws task.Workspace, id string, edited *task.Task) (*Conflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePendingConflict {
		return nil, tferrors.ErrConflictPending()
	}

	ws = normalizeWorkspace(ws)
	edited = edited.Clone()
	edited.ID = id
	edited.Workspace = ws

	tasks, err := s.repo.List(ctx, ws)
	if err != nil {
		return nil, err
	}

	if conflict := CheckPromote(tasks, edited); conflict != nil {
		s.state = StatePendingConflict
		s.pending = conflict
		return conflict, nil
	}

	if err := s.repo.Update(ctx, ws, id, edited); err != nil {
		return nil, err
	}
	return nil, nil
}

// MovePriority reassigns a task to a different priority bucket (the
// drag-and-drop path). Moving into Top 5 goes through the same capacity
// check as Promote.
func (s *Session) MovePriority(ctx context.Context, ws task.Workspace, id string, priority task.Priority) (*Conflict, error) {
	ws = normalizeWorkspace(ws)

	current, err := s.repo.Get(ctx, ws, id)
	if err != nil {
		return nil, err
	}

	moved := current.Clone()
	moved.Priority = priority
	return s.Promote(ctx, ws, id, moved)
}

// ResolveMoveToUrgent resolves the pending conflict by keeping the Top 5
// set untouched and writing the candidate with priority Urgent. Returns
// the candidate's ID.
func (s *Session) ResolveMoveToUrgent(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePendingConflict {
		return "", tferrors.ErrNoConflict()
	}

	candidate := s.pending.Candidate.Clone()
	candidate.Priority = task.PriorityUrgent

	var id string
	var err error
	if s.pending.FromEdit() {
		id = s.pending.ExistingID
		err = s.repo.Update(ctx, candidate.Workspace, id, candidate)
	} else {
		id, err = s.repo.Create(ctx, candidate)
	}
	if err != nil {
		// Storage failed; the conflict stays pending so the caller can
		// retry or cancel.
		return "", err
	}

	s.clearConflict()
	return id, nil
}

// ResolveReplace resolves the pending conflict by demoting the chosen slot
// holder to Urgent and giving its slot to the candidate. Both mutations
// land in one storage write via the repository swap. Returns the
// candidate's ID.
func (s *Session) ResolveReplace(ctx context.Context, victimID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePendingConflict {
		return "", tferrors.ErrNoConflict()
	}
	if !s.pending.HoldsSlot(victimID) {
		return "", tferrors.ErrTaskNotFound(victimID)
	}

	candidate := s.pending.Candidate.Clone()
	id, err := s.repo.Swap(ctx, candidate.Workspace, victimID, candidate)
	if err != nil {
		return "", err
	}

	s.clearConflict()
	return id, nil
}

// CancelConflict discards the pending candidate with no side effect.
func (s *Session) CancelConflict() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePendingConflict {
		return tferrors.ErrNoConflict()
	}
	s.clearConflict()
	return nil
}

// clearConflict resets to Idle. Caller holds s.mu.
func (s *Session) clearConflict() {
	s.state = StateIdle
	s.pending = nil
}

// ToggleComplete flips a task's completed flag and returns the updated
// task. Completing a Top 5 task frees its slot for the next capacity
// check.
func (s *Session) ToggleComplete(ctx context.Context, ws task.Workspace, id string) (*task.Task, error) {
	ws = normalizeWorkspace(ws)

	current, err := s.repo.Get(ctx, ws, id)
	if err != nil {
		return nil, err
	}

	toggled := current.Clone()
	toggled.Completed = !toggled.Completed
	if err := s.repo.Update(ctx, ws, id, toggled); err != nil {
		return nil, err
	}
	return toggled, nil
}

// RequestDelete arms the deletion guard for the given task. The delete is
// not issued until ConfirmDelete.
func (s *Session) RequestDelete(ws task.Workspace, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteWS = normalizeWorkspace(ws)
	s.deleteID = id
}

// PendingDelete returns the armed deletion candidate, or "" when none.
func (s *Session) PendingDelete() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteID
}

// ConfirmDelete issues the armed delete and clears the guard.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	ws, id := s.deleteWS, s.deleteID
	s.deleteWS, s.deleteID = "", ""
	s.mu.Unlock()

	if id == "" {
		return nil
	}
	return s.repo.Delete(ctx, ws, id)
}

// CancelDelete clears the deletion guard with no side effect.
func (s *Session) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteWS, s.deleteID = "", ""
}

func normalizeWorkspace(ws task.Workspace) task.Workspace {
	if ws == "" {
		return task.DefaultWorkspace
	}
	return ws
}
