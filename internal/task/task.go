// Package task provides the task model for topfive.
package task

import (
	"time"
)

// Top5Limit is the maximum number of active Top 5 tasks per workspace.
// Completed tasks do not count against the limit.
const Top5Limit = 5

// Priority represents the priority bucket of a task.
type Priority string

const (
	// PriorityTop5 is the capacity-limited highest-visibility bucket.
	PriorityTop5 Priority = "Top 5"
	// PriorityUrgent holds tasks that need attention but didn't make Top 5.
	PriorityUrgent Priority = "Urgent"
	// PriorityHopper holds everything else.
	PriorityHopper Priority = "Hopper"
)

// ValidPriorities returns all valid priority values.
func ValidPriorities() []Priority {
	return []Priority{PriorityTop5, PriorityUrgent, PriorityHopper}
}

// IsValidPriority returns true if the priority is a valid priority value.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityTop5, PriorityUrgent, PriorityHopper:
		return true
	default:
		return false
	}
}

// PriorityOrder returns a numeric value for sorting (lower = higher priority).
func PriorityOrder(p Priority) int {
	switch p {
	case PriorityTop5:
		return 0
	case PriorityUrgent:
		return 1
	case PriorityHopper:
		return 2
	default:
		return 3
	}
}

// Category classifies what kind of work a task is.
type Category string

const (
	CategoryContent  Category = "Content"
	CategoryOps      Category = "Ops"
	CategoryStrategy Category = "Strategy"
	CategoryPaid     Category = "Paid"
	CategoryOther    Category = "Other"
)

// ValidCategories returns all valid category values.
func ValidCategories() []Category {
	return []Category{CategoryContent, CategoryOps, CategoryStrategy, CategoryPaid, CategoryOther}
}

// IsValidCategory returns true if the category is a valid category value.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryContent, CategoryOps, CategoryStrategy, CategoryPaid, CategoryOther:
		return true
	default:
		return false
	}
}

// Workspace is a named partition isolating one task collection from another.
type Workspace string

const (
	WorkspaceWork     Workspace = "Work"
	WorkspaceProjects Workspace = "Projects"
	WorkspacePersonal Workspace = "Personal"
)

// DefaultWorkspace is used when no workspace is specified.
const DefaultWorkspace = WorkspaceWork

// ValidWorkspaces returns all known workspaces.
func ValidWorkspaces() []Workspace {
	return []Workspace{WorkspaceWork, WorkspaceProjects, WorkspacePersonal}
}

// IsValidWorkspace returns true if the workspace is a known workspace.
func IsValidWorkspace(w Workspace) bool {
	switch w {
	case WorkspaceWork, WorkspaceProjects, WorkspacePersonal:
		return true
	default:
		return false
	}
}

// Task is a single tracked item. Tasks live in a flat per-workspace mapping
// keyed by ID; there are no relationships between tasks.
type Task struct {
	// ID is an opaque unique string assigned at creation, immutable after.
	ID string `json:"id"`
	// Text is the free-form description.
	Text string `json:"text"`
	// Priority is the bucket the task currently sits in.
	Priority Priority `json:"priority"`
	// DropDead is an ISO-8601 timestamp, or "" when unset.
	DropDead string `json:"dropDead"`
	// Category classifies the work.
	Category Category `json:"category"`
	// Notes is free-form, default empty.
	Notes string `json:"notes"`
	// Completed marks the task done. Completed Top 5 tasks do not count
	// against the Top5Limit.
	Completed bool `json:"completed"`
	// Workspace partitions storage. A task belongs to exactly one workspace
	// for its lifetime.
	Workspace Workspace `json:"workspace"`
	// IsDailyReminder marks a recurring task whose completion is swept back
	// to incomplete by the daily reset. Orthogonal to Priority.
	IsDailyReminder bool `json:"isDailyReminder,omitempty"`
}

// IsActiveTop5 reports whether the task occupies a Top 5 slot.
func (t *Task) IsActiveTop5() bool {
	return t.Priority == PriorityTop5 && !t.Completed
}

// DropDeadTime parses the drop-dead timestamp. Returns the zero time when
// unset or unparseable.
func (t *Task) DropDeadTime() time.Time {
	if t.DropDead == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, t.DropDead); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// CountActiveTop5 counts tasks holding a Top 5 slot, skipping excludeID.
// Pass excludeID="" to count all. An in-place promotion must not count the
// task being edited against itself.
func CountActiveTop5(tasks []*Task, excludeID string) int {
	n := 0
	for _, t := range tasks {
		if t.ID == excludeID {
			continue
		}
		if t.IsActiveTop5() {
			n++
		}
	}
	return n
}

// ActiveTop5 returns the tasks currently occupying Top 5 slots.
func ActiveTop5(tasks []*Task) []*Task {
	var out []*Task
	for _, t := range tasks {
		if t.IsActiveTop5() {
			out = append(out, t)
		}
	}
	return out
}
