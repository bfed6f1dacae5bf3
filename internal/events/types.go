// Package events provides event types and publishing infrastructure for topfive.
package events

import (
	"time"
)

// EventType defines the type of event.
type EventType string

const (
	// EventTaskCreated indicates a new task was created.
	EventTaskCreated EventType = "task_created"
	// EventTaskUpdated indicates a task was modified.
	EventTaskUpdated EventType = "task_updated"
	// EventTaskDeleted indicates a task was deleted.
	EventTaskDeleted EventType = "task_deleted"
	// EventTasksSwapped indicates a Top 5 replace: one task demoted, one
	// promoted or created, in a single write.
	EventTasksSwapped EventType = "tasks_swapped"
	// EventRemindersReset indicates the daily reminder sweep ran.
	EventRemindersReset EventType = "reminders_reset"
)

// Event represents a published event.
type Event struct {
	Type      EventType `json:"type"`
	Workspace string    `json:"workspace"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Time      time.Time `json:"time"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, workspace, taskID string, data any) Event {
	return Event{
		Type:      eventType,
		Workspace: workspace,
		TaskID:    taskID,
		Data:      data,
		Time:      time.Now(),
	}
}
