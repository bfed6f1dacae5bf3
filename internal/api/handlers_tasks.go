package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	trackerrors "github.com/topfiveapp/topfive/internal/errors"
	"github.com/topfiveapp/topfive/internal/task"
)

// workspaceFromQuery resolves the workspace query parameter, defaulting to
// Work when absent.
func workspaceFromQuery(r *http.Request) (task.Workspace, error) {
	raw := r.URL.Query().Get("workspace")
	if raw == "" {
		return task.DefaultWorkspace, nil
	}
	ws := task.Workspace(raw)
	if !task.IsValidWorkspace(ws) {
		return "", trackerrors.ErrTaskInvalid("unknown workspace: " + raw)
	}
	return ws, nil
}

// handleListTasks returns the tasks of a workspace, sorted by priority
// bucket, drop-dead date, then text. Optional category and completed query
// filters narrow the result.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFromQuery(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	tasks, err := s.repo.List(r.Context(), ws)
	if err != nil {
		HandleError(w, err)
		return
	}

	if cat := r.URL.Query().Get("category"); cat != "" {
		if !task.IsValidCategory(task.Category(cat)) {
			JSONError(w, "unknown category: "+cat, http.StatusBadRequest)
			return
		}
		tasks = filterTasks(tasks, func(t *task.Task) bool {
			return t.Category == task.Category(cat)
		})
	}
	if comp := r.URL.Query().Get("completed"); comp != "" {
		want := comp == "true"
		tasks = filterTasks(tasks, func(t *task.Task) bool {
			return t.Completed == want
		})
	}

	// Ensure we return an empty array, not null
	if tasks == nil {
		tasks = []*task.Task{}
	}

	s.jsonResponse(w, tasks)
}

func filterTasks(tasks []*task.Task, keep func(*task.Task) bool) []*task.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// handleCreateTask creates a new task.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.repo.Create(r.Context(), &t)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSONResponseStatus(w, map[string]string{"id": id}, http.StatusCreated)
}

// handleUpdateTask fully replaces a task. The path ID wins over any ID in
// the body.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ws := t.Workspace
	if ws == "" {
		var err error
		ws, err = workspaceFromQuery(r)
		if err != nil {
			HandleError(w, err)
			return
		}
	}

	// Replacing a record that was never written would silently create it.
	if _, err := s.repo.Get(r.Context(), ws, id); err != nil {
		HandleError(w, err)
		return
	}

	if err := s.repo.Update(r.Context(), ws, id, &t); err != nil {
		HandleError(w, err)
		return
	}

	updated, err := s.repo.Get(r.Context(), ws, id)
	if err != nil {
		HandleError(w, err)
		return
	}
	s.jsonResponse(w, updated)
}

// handleAutosaveTask is the debounced edit path: rapid successive saves
// of the same record collapse into one write after the quiescence window,
// with each call superseding the previous one. Responds 202 because the
// write happens later.
func (s *Server) handleAutosaveTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ws := t.Workspace
	if ws == "" {
		var err error
		ws, err = workspaceFromQuery(r)
		if err != nil {
			HandleError(w, err)
			return
		}
	}

	if _, err := s.repo.Get(r.Context(), ws, id); err != nil {
		HandleError(w, err)
		return
	}

	// Reject invalid payloads now; the deferred write would only log.
	t.ID = id
	t.Workspace = ws
	if errs := t.Validate(); errs.HasErrors() {
		HandleError(w, trackerrors.ErrTaskInvalid(errs.Error()))
		return
	}

	if s.saver == nil {
		if err := s.repo.Update(r.Context(), ws, id, &t); err != nil {
			HandleError(w, err)
			return
		}
		s.jsonResponse(w, map[string]string{"status": "saved"})
		return
	}

	s.saver.Schedule(ws, id, &t)
	JSONResponseStatus(w, map[string]string{"status": "scheduled"}, http.StatusAccepted)
}

// handleDeleteTask removes a task. Deleting an unknown ID succeeds.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ws, err := workspaceFromQuery(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := s.repo.Delete(r.Context(), ws, id); err != nil {
		HandleError(w, err)
		return
	}
	NoContent(w)
}

// swapRequest is the body of POST /api/tasks/swap.
type swapRequest struct {
	Workspace task.Workspace `json:"workspace"`
	DemoteID  string         `json:"demoteId"`
	Candidate *task.Task     `json:"candidate"`
}

// handleSwapTasks demotes one task to Urgent and promotes the candidate to
// Top 5 in a single storage write.
func (s *Server) handleSwapTasks(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DemoteID == "" || req.Candidate == nil {
		s.jsonError(w, "demoteId and candidate are required", http.StatusBadRequest)
		return
	}

	id, err := s.repo.Swap(r.Context(), req.Workspace, req.DemoteID, req.Candidate)
	if err != nil {
		HandleError(w, err)
		return
	}

	s.jsonResponse(w, map[string]string{
		"demoted":  req.DemoteID,
		"promoted": id,
	})
}

// handleResetDaily runs the daily reminder sweep across all workspaces.
func (s *Server) handleResetDaily(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.ResetDailyReminders(r.Context()); err != nil {
		HandleError(w, err)
		return
	}
	s.jsonResponse(w, map[string]string{"status": "ok"})
}

// handleCronReset is the reset endpoint for external schedulers. When a
// cron secret is configured the caller must present it as a bearer token.
func (s *Server) handleCronReset(w http.ResponseWriter, r *http.Request) {
	if s.cronSecret != "" {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) != 1 {
			HandleError(w, trackerrors.ErrUnauthorized())
			return
		}
	}

	if err := s.repo.ResetDailyReminders(r.Context()); err != nil {
		HandleError(w, err)
		return
	}
	s.jsonResponse(w, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	JSONResponse(w, data)
}

// jsonError writes a JSON error response.
func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	JSONError(w, message, status)
}
