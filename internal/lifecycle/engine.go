// Package lifecycle enforces the Top 5 capacity rule and drives the
// conflict-resolution workflow. The planner functions here are pure: they
// inspect a snapshot of the task list and a proposed change and report
// whether the change may proceed or a conflict must be resolved first.
// Session (session.go) holds the pending-conflict state machine around
// them.
package lifecycle

import (
	"github.com/topfiveapp/topfive/internal/task"
)

// Conflict describes a capacity conflict awaiting resolution. It holds the
// candidate task that could not take a Top 5 slot and the current slot
// holders the user may choose to replace.
type Conflict struct {
	// Candidate is the task data that wants a Top 5 slot. For an add this
	// is the not-yet-created task; for an in-place promotion it is the
	// edited copy of an existing task.
	Candidate *task.Task
	// ExistingID is the candidate's ID when the conflict came from an
	// in-place promotion; empty for an add.
	ExistingID string
	// SlotHolders are the tasks currently occupying the Top 5 slots, for
	// the replace chooser.
	SlotHolders []*task.Task
}

// FromEdit reports whether the conflict came from an in-place promotion
// rather than an add.
func (c *Conflict) FromEdit() bool {
	return c.ExistingID != ""
}

// HoldsSlot reports whether id is one of the conflict's slot holders.
func (c *Conflict) HoldsSlot(id string) bool {
	for _, t := range c.SlotHolders {
		if t.ID == id {
			return true
		}
	}
	return false
}

// CheckAdd evaluates adding candidate against a snapshot of the
// workspace's tasks. Returns nil when the add may proceed directly, or a
// Conflict when the candidate wants a Top 5 slot and all slots are taken
// by active tasks. Completed Top 5 tasks do not hold slots.
func CheckAdd(tasks []*task.Task, candidate *task.Task) *Conflict {
	if candidate.Priority != task.PriorityTop5 {
		return nil
	}
	if task.CountActiveTop5(tasks, "") < task.Top5Limit {
		return nil
	}
	return &Conflict{
		Candidate:   candidate.Clone(),
		SlotHolders: task.ActiveTop5(tasks),
	}
}

// CheckPromote evaluates an in-place edit that moves the task at edited.ID
// into Top 5. The task itself is excluded from the count, so editing a
// task that already holds a slot never conflicts. A completed edit never
// conflicts either: it would hold no slot once written. Returns nil when
// the edit may be applied directly.
func CheckPromote(tasks []*task.Task, edited *task.Task) *Conflict {
	if edited.Priority != task.PriorityTop5 || edited.Completed {
		return nil
	}
	if task.CountActiveTop5(tasks, edited.ID) < task.Top5Limit {
		return nil
	}
	return &Conflict{
		Candidate:   edited.Clone(),
		ExistingID:  edited.ID,
		SlotHolders: task.ActiveTop5(tasks),
	}
}
