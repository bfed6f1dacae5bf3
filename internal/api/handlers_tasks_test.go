package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/topfiveapp/topfive/internal/events"
	"github.com/topfiveapp/topfive/internal/lifecycle"
	"github.com/topfiveapp/topfive/internal/repo"
	"github.com/topfiveapp/topfive/internal/storage"
	"github.com/topfiveapp/topfive/internal/task"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pub := events.NewMemoryPublisher()
	t.Cleanup(pub.Close)
	r := repo.New(storage.NewTestBackend(t), repo.WithPublisher(pub))
	return New(&Config{Repo: r, Publisher: pub})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

// createTask posts a task and returns the assigned id from the {id}
// response.
func createTask(t *testing.T, s *Server, body map[string]any) string {
	t.Helper()
	w := doJSON(t, s, "POST", "/api/tasks", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if resp["id"] == "" {
		t.Fatal("expected assigned id in create response")
	}
	return resp["id"]
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) *task.Task {
	t.Helper()
	var tk task.Task
	if err := json.NewDecoder(w.Body).Decode(&tk); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return &tk
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestCreateTask(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"text":     "write launch post",
		"priority": "Top 5",
		"category": "Content",
	})

	w := doJSON(t, s, "GET", "/api/tasks", nil)
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != id {
		t.Fatalf("created task not listed: %+v", tasks)
	}
	if tasks[0].Workspace != task.WorkspaceWork {
		t.Errorf("expected default workspace Work, got %q", tasks[0].Workspace)
	}
	if tasks[0].Completed {
		t.Error("new task should not be completed")
	}
}

func TestCreateTaskRejectsInvalid(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/tasks", map[string]any{
		"text":     "",
		"priority": "Top 5",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var apiErr APIError
	if err := json.NewDecoder(w.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Code != "TASK_INVALID" {
		t.Errorf("expected code TASK_INVALID, got %q", apiErr.Code)
	}
}

func TestCreateTaskRejectsBadBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/tasks", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListTasksEmptyWorkspace(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/api/tasks?workspace=Personal", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestListTasksUnknownWorkspace(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/api/tasks?workspace=Basement", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListTasksSortedAndPartitioned(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []map[string]any{
		{"text": "hopper item", "priority": "Hopper"},
		{"text": "urgent item", "priority": "Urgent"},
		{"text": "top item", "priority": "Top 5"},
		{"text": "elsewhere", "priority": "Top 5", "workspace": "Personal"},
	} {
		if w := doJSON(t, s, "POST", "/api/tasks", body); w.Code != http.StatusCreated {
			t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
		}
	}

	w := doJSON(t, s, "GET", "/api/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks in Work, got %d", len(tasks))
	}
	wantOrder := []string{"top item", "urgent item", "hopper item"}
	for i, want := range wantOrder {
		if tasks[i].Text != want {
			t.Errorf("position %d: expected %q, got %q", i, want, tasks[i].Text)
		}
	}
}

func TestListTasksFilters(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []map[string]any{
		{"text": "post draft", "priority": "Hopper", "category": "Content"},
		{"text": "invoice run", "priority": "Hopper", "category": "Ops"},
	} {
		if w := doJSON(t, s, "POST", "/api/tasks", body); w.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", w.Code)
		}
	}

	w := doJSON(t, s, "GET", "/api/tasks?category=Ops", nil)
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "invoice run" {
		t.Errorf("category filter failed: %+v", tasks)
	}

	w = doJSON(t, s, "GET", "/api/tasks?category=Laundry", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", w.Code)
	}

	w = doJSON(t, s, "GET", "/api/tasks?completed=true", nil)
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no completed tasks, got %d", len(tasks))
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"text": "original", "priority": "Hopper",
	})

	w := doJSON(t, s, "PUT", "/api/tasks/"+id, map[string]any{
		"text":      "edited",
		"priority":  "Urgent",
		"notes":     "call first",
		"workspace": "Work",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated := decodeTask(t, w)
	if updated.ID != id {
		t.Errorf("id changed on update: %q -> %q", id, updated.ID)
	}
	if updated.Text != "edited" || updated.Priority != task.PriorityUrgent || updated.Notes != "call first" {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "PUT", "/api/tasks/deadbeef", map[string]any{
		"text": "ghost", "priority": "Hopper", "workspace": "Work",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

// fetchTask reads a task back through the list endpoint.
func fetchTask(t *testing.T, s *Server, id string) *task.Task {
	t.Helper()
	w := doJSON(t, s, "GET", "/api/tasks?workspace=Work", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d", w.Code)
	}
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	for _, tk := range tasks {
		if tk.ID == id {
			return tk
		}
	}
	t.Fatalf("task %s not in list", id)
	return nil
}

func newTestServerWithSaver(t *testing.T, window time.Duration) *Server {
	t.Helper()
	pub := events.NewMemoryPublisher()
	t.Cleanup(pub.Close)
	r := repo.New(storage.NewTestBackend(t), repo.WithPublisher(pub))
	saver := lifecycle.NewSaver(r, window, nil)
	t.Cleanup(saver.Close)
	return New(&Config{Repo: r, Saver: saver, Publisher: pub})
}

func TestAutosaveWritesAfterQuietPeriod(t *testing.T) {
	s := newTestServerWithSaver(t, 20*time.Millisecond)

	id := createTask(t, s, map[string]any{
		"text": "draft", "priority": "Hopper",
	})

	w := doJSON(t, s, "PUT", "/api/tasks/"+id+"/autosave", map[string]any{
		"text": "draft v2", "priority": "Hopper", "workspace": "Work",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	// The write is deferred past the debounce window.
	if got := fetchTask(t, s, id).Text; got != "draft" {
		t.Fatalf("autosave wrote immediately: %q", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fetchTask(t, s, id).Text != "draft v2" {
		if time.Now().After(deadline) {
			t.Fatal("debounced save never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAutosaveCollapsesRapidEdits(t *testing.T) {
	s := newTestServerWithSaver(t, 20*time.Millisecond)

	id := createTask(t, s, map[string]any{
		"text": "draft", "priority": "Hopper",
	})

	for _, text := range []string{"draft v2", "draft v3", "draft final"} {
		w := doJSON(t, s, "PUT", "/api/tasks/"+id+"/autosave", map[string]any{
			"text": text, "priority": "Hopper", "workspace": "Work",
		})
		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", w.Code)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for fetchTask(t, s, id).Text == "draft" {
		if time.Now().After(deadline) {
			t.Fatal("debounced save never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := fetchTask(t, s, id).Text; got != "draft final" {
		t.Fatalf("expected last edit to win, got %q", got)
	}
}

func TestAutosaveWithoutSaverWritesThrough(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"text": "draft", "priority": "Hopper",
	})

	w := doJSON(t, s, "PUT", "/api/tasks/"+id+"/autosave", map[string]any{
		"text": "draft v2", "priority": "Hopper", "workspace": "Work",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := fetchTask(t, s, id).Text; got != "draft v2" {
		t.Fatalf("write-through not applied: %q", got)
	}
}

func TestAutosaveUnknownTask(t *testing.T) {
	s := newTestServerWithSaver(t, 20*time.Millisecond)

	w := doJSON(t, s, "PUT", "/api/tasks/deadbeef/autosave", map[string]any{
		"text": "ghost", "priority": "Hopper", "workspace": "Work",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"text": "to remove", "priority": "Hopper",
	})

	w := doJSON(t, s, "DELETE", "/api/tasks/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, s, "GET", "/api/tasks", nil)
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list after delete, got %d", len(tasks))
	}

	// Deleting again is still a success
	w = doJSON(t, s, "DELETE", "/api/tasks/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on repeat delete, got %d", w.Code)
	}
}

func TestSwapTasks(t *testing.T) {
	s := newTestServer(t)

	holderID := createTask(t, s, map[string]any{
		"text": "slot holder", "priority": "Top 5",
	})

	w := doJSON(t, s, "POST", "/api/tasks/swap", map[string]any{
		"workspace": "Work",
		"demoteId":  holderID,
		"candidate": map[string]any{"text": "challenger"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["demoted"] != holderID || resp["promoted"] == "" {
		t.Fatalf("unexpected swap response: %v", resp)
	}

	w = doJSON(t, s, "GET", "/api/tasks", nil)
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	byID := map[string]*task.Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	if byID[holderID].Priority != task.PriorityUrgent {
		t.Errorf("victim not demoted: %q", byID[holderID].Priority)
	}
	if byID[resp["promoted"]].Priority != task.PriorityTop5 {
		t.Errorf("candidate not promoted: %q", byID[resp["promoted"]].Priority)
	}
}

func TestSwapMissingVictim(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/tasks/swap", map[string]any{
		"workspace": "Work",
		"demoteId":  "missing",
		"candidate": map[string]any{"text": "challenger"},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSwapRequiresFields(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/tasks/swap", map[string]any{"workspace": "Work"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestResetDailyEndpoint(t *testing.T) {
	s := newTestServer(t)

	id := createTask(t, s, map[string]any{
		"text":            "stretch",
		"priority":        "Hopper",
		"isDailyReminder": true,
	})

	completed := map[string]any{
		"text":            "stretch",
		"priority":        "Hopper",
		"isDailyReminder": true,
		"completed":       true,
		"workspace":       "Work",
	}
	if w := doJSON(t, s, "PUT", "/api/tasks/"+id, completed); w.Code != http.StatusOK {
		t.Fatalf("complete failed: %d", w.Code)
	}

	if w := doJSON(t, s, "POST", "/api/tasks/reset-daily", nil); w.Code != http.StatusOK {
		t.Fatalf("reset failed: %d", w.Code)
	}

	w := doJSON(t, s, "GET", "/api/tasks", nil)
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Completed {
		t.Errorf("reminder not reset: %+v", tasks)
	}
}

func TestCronResetSecret(t *testing.T) {
	pub := events.NewMemoryPublisher()
	t.Cleanup(pub.Close)
	r := repo.New(storage.NewTestBackend(t), repo.WithPublisher(pub))
	s := New(&Config{Repo: r, Publisher: pub, CronSecret: "hunter2"})

	// Missing token
	req := httptest.NewRequest("GET", "/api/cron/daily-reset", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Wrong token
	req = httptest.NewRequest("GET", "/api/cron/daily-reset", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	// Correct token
	req = httptest.NewRequest("GET", "/api/cron/daily-reset", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	w = httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with correct token, got %d", w.Code)
	}
}

func TestCronResetOpenByDefault(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/api/cron/daily-reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without secret configured, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestStorageFailureSurfacesAsError(t *testing.T) {
	backend := storage.NewMemoryBackend()
	backend.FailWrites = true
	r := repo.New(backend)
	s := New(&Config{Repo: r})

	w := doJSON(t, s, "POST", "/api/tasks", map[string]any{
		"text": "doomed", "priority": "Hopper",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var apiErr APIError
	if err := json.NewDecoder(w.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Code != "STORAGE_WRITE_FAILED" {
		t.Errorf("expected code STORAGE_WRITE_FAILED, got %q", apiErr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{"PATCH", "/api/tasks"},
		{"DELETE", "/api/tasks"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		s.mux.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestOrderingWithDropDead(t *testing.T) {
	s := newTestServer(t)

	for i, dd := range []string{"2026-09-03", "2026-09-01", ""} {
		body := map[string]any{
			"text":     fmt.Sprintf("task %d", i),
			"priority": "Top 5",
		}
		if dd != "" {
			body["dropDead"] = dd
		}
		if w := doJSON(t, s, "POST", "/api/tasks", body); w.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", w.Code)
		}
	}

	w := doJSON(t, s, "GET", "/api/tasks", nil)
	var tasks []*task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"task 1", "task 0", "task 2"}
	for i, text := range want {
		if tasks[i].Text != text {
			t.Errorf("position %d: expected %q, got %q", i, text, tasks[i].Text)
		}
	}
}
