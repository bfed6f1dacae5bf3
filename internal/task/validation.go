package task

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error returns a combined error message.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ToError returns an error if there are validation errors, nil otherwise.
func (e ValidationErrors) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Validate checks all field constraints on a task.
func (t *Task) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(t.Text) == "" {
		errs = append(errs, ValidationError{
			Field:   "text",
			Message: "text is required",
		})
	}

	if t.Priority != "" && !IsValidPriority(t.Priority) {
		errs = append(errs, ValidationError{
			Field:   "priority",
			Value:   string(t.Priority),
			Message: "invalid priority",
		})
	}

	if t.Category != "" && !IsValidCategory(t.Category) {
		errs = append(errs, ValidationError{
			Field:   "category",
			Value:   string(t.Category),
			Message: "invalid category",
		})
	}

	if t.Workspace != "" && !IsValidWorkspace(t.Workspace) {
		errs = append(errs, ValidationError{
			Field:   "workspace",
			Value:   string(t.Workspace),
			Message: "invalid workspace",
		})
	}

	if t.DropDead != "" {
		if _, err := time.Parse(time.RFC3339, t.DropDead); err != nil {
			if _, err := time.Parse("2006-01-02", t.DropDead); err != nil {
				errs = append(errs, ValidationError{
					Field:   "dropDead",
					Value:   t.DropDead,
					Message: "not an ISO-8601 timestamp",
				})
			}
		}
	}

	return errs
}

// ApplyDefaults fills in the defaults a new task receives at creation time.
func (t *Task) ApplyDefaults() {
	if t.Workspace == "" {
		t.Workspace = DefaultWorkspace
	}
	if t.Priority == "" {
		t.Priority = PriorityHopper
	}
	if t.Category == "" {
		t.Category = CategoryOther
	}
}
