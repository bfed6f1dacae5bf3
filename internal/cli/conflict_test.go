package cli

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/topfiveapp/topfive/internal/lifecycle"
	"github.com/topfiveapp/topfive/internal/repo"
	"github.com/topfiveapp/topfive/internal/storage"
	"github.com/topfiveapp/topfive/internal/task"
)

func conflictedSession(t *testing.T) (*lifecycle.Session, *lifecycle.Conflict, *repo.Repository) {
	t.Helper()
	r := repo.New(storage.NewTestBackend(t))
	session := lifecycle.NewSession(r)

	ctx := context.Background()
	for i := 0; i < task.Top5Limit; i++ {
		_, conflict, err := session.Add(ctx, &task.Task{
			Text:     "holder " + string(rune('a'+i)),
			Priority: task.PriorityTop5,
		})
		if err != nil {
			t.Fatalf("seed add: %v", err)
		}
		if conflict != nil {
			t.Fatalf("unexpected conflict seeding slot %d", i)
		}
	}

	_, conflict, err := session.Add(ctx, &task.Task{
		Text:     "challenger",
		Priority: task.PriorityTop5,
	})
	if err != nil {
		t.Fatalf("sixth add: %v", err)
	}
	if conflict == nil {
		t.Fatal("expected a conflict on the sixth Top 5 add")
	}
	return session, conflict, r
}

func TestResolveConflictUrgentFlag(t *testing.T) {
	session, conflict, r := conflictedSession(t)

	id, err := resolveConflict(context.Background(), session, conflict, "urgent", "")
	if err != nil {
		t.Fatalf("resolve urgent: %v", err)
	}
	if id == "" {
		t.Fatal("expected a written task id")
	}

	got, err := r.Get(context.Background(), task.WorkspaceWork, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Priority != task.PriorityUrgent {
		t.Errorf("expected Urgent, got %q", got.Priority)
	}
}

func TestResolveConflictReplaceFlag(t *testing.T) {
	session, conflict, r := conflictedSession(t)
	victim := conflict.SlotHolders[0]

	// Shortened victim ID resolves against the slot holders
	id, err := resolveConflict(context.Background(), session, conflict, "replace", victim.ID[:8])
	if err != nil {
		t.Fatalf("resolve replace: %v", err)
	}

	tasks, err := r.List(context.Background(), task.WorkspaceWork)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	byID := map[string]*task.Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	if byID[victim.ID].Priority != task.PriorityUrgent {
		t.Errorf("victim not demoted: %q", byID[victim.ID].Priority)
	}
	if byID[id].Priority != task.PriorityTop5 {
		t.Errorf("candidate not promoted: %q", byID[id].Priority)
	}
}

func TestResolveConflictReplaceRequiresID(t *testing.T) {
	session, conflict, _ := conflictedSession(t)

	_, err := resolveConflict(context.Background(), session, conflict, "replace", "")
	if err == nil {
		t.Fatal("expected an error without --replace-id")
	}
	if session.State() != lifecycle.StateIdle {
		t.Error("conflict should be cancelled after the flag error")
	}
}

func TestResolveConflictCancelFlag(t *testing.T) {
	session, conflict, r := conflictedSession(t)

	id, err := resolveConflict(context.Background(), session, conflict, "cancel", "")
	if err != nil {
		t.Fatalf("resolve cancel: %v", err)
	}
	if id != "" {
		t.Errorf("cancel should not write, got id %q", id)
	}

	tasks, err := r.List(context.Background(), task.WorkspaceWork)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != task.Top5Limit {
		t.Errorf("expected %d tasks after cancel, got %d", task.Top5Limit, len(tasks))
	}
}

func TestResolveConflictNonInteractiveExplains(t *testing.T) {
	session, conflict, _ := conflictedSession(t)

	// No flag and no TTY: cancel and list the slot holders
	_, err := resolveConflict(context.Background(), session, conflict, "", "")
	if err == nil {
		t.Fatal("expected an explanatory error")
	}
	if !strings.Contains(err.Error(), "--resolve urgent") {
		t.Errorf("error should mention resolution flags: %v", err)
	}
	if session.State() != lifecycle.StateIdle {
		t.Error("conflict should be cancelled")
	}
}

func TestMatchSlotHolder(t *testing.T) {
	conflict := &lifecycle.Conflict{
		SlotHolders: []*task.Task{
			{ID: "aaaa1111", Text: "one"},
			{ID: "aaab2222", Text: "two"},
		},
	}

	if _, err := matchSlotHolder(conflict, "aaa"); err == nil {
		t.Error("expected ambiguity error for shared prefix")
	}
	if id, err := matchSlotHolder(conflict, "aaab"); err != nil || id != "aaab2222" {
		t.Errorf("prefix match failed: %q %v", id, err)
	}
	if _, err := matchSlotHolder(conflict, "zzzz"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestConflictModelNavigation(t *testing.T) {
	conflict := &lifecycle.Conflict{
		Candidate: &task.Task{Text: "challenger"},
		SlotHolders: []*task.Task{
			{ID: "aaaa1111", Text: "one"},
			{ID: "bbbb2222", Text: "two"},
		},
	}

	m := newConflictModel(conflict)
	// urgent + 2 holders + cancel
	if len(m.choices) != 4 {
		t.Fatalf("expected 4 choices, got %d", len(m.choices))
	}
	if !m.choices[0].urgent {
		t.Error("first choice should be move-to-urgent")
	}
	if !m.choices[3].cancel {
		t.Error("last choice should be cancel")
	}
	if m.choices[1].victimID != "aaaa1111" {
		t.Errorf("unexpected victim order: %q", m.choices[1].victimID)
	}
}

func TestTruncateAndShortID(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short: %q", got)
	}
	long := strings.Repeat("x", 20)
	if got := truncate(long, 10); len([]rune(got)) != 10 {
		t.Errorf("truncate long: %q", got)
	}
	// Multi-byte text must not be split mid-rune
	cyrillic := strings.Repeat("ч", 20)
	got := truncate(cyrillic, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if len([]rune(got)) != 10 {
		t.Errorf("truncate multi-byte length: %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID: %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID short input: %q", got)
	}
}
