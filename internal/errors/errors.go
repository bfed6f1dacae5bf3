// Package errors provides structured error types for topfive.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for topfive.
const (
	// Task errors
	CodeTaskNotFound    Code = "TASK_NOT_FOUND"
	CodeTaskInvalid     Code = "TASK_INVALID"
	CodeConflictPending Code = "CONFLICT_PENDING"
	CodeNoConflict      Code = "NO_CONFLICT"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeStorageWrite       Code = "STORAGE_WRITE_FAILED"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Auth errors
	CodeUnauthorized Code = "UNAUTHORIZED"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
	CategoryUnavailable
	CategoryUnauthorized
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeTaskNotFound:       CategoryNotFound,
	CodeTaskInvalid:        CategoryBadRequest,
	CodeConflictPending:    CategoryConflict,
	CodeNoConflict:         CategoryConflict,
	CodeStorageUnavailable: CategoryUnavailable,
	CodeStorageWrite:       CategoryInternal,
	CodeConfigInvalid:      CategoryBadRequest,
	CodeUnauthorized:       CategoryUnauthorized,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryConflict:
		return 409
	case CategoryUnavailable:
		return 503
	case CategoryUnauthorized:
		return 401
	default:
		return 500
	}
}

// TrackError is the structured error type for topfive.
type TrackError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *TrackError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *TrackError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *TrackError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category for HTTP status mapping.
func (e *TrackError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *TrackError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *TrackError) MarshalJSON() ([]byte, error) {
	type alias TrackError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a TrackError with the same code.
func (e *TrackError) Is(target error) bool {
	t, ok := target.(*TrackError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *TrackError) WithCause(err error) *TrackError {
	return &TrackError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrTaskNotFound returns an error when a task doesn't exist.
func ErrTaskNotFound(id string) *TrackError {
	return &TrackError{
		Code: CodeTaskNotFound,
		What: fmt.Sprintf("task %s not found", id),
		Why:  "No task with this ID exists in the workspace",
		Fix:  "Run 'topfive list' to see available tasks",
	}
}

// ErrTaskInvalid returns an error for a task that failed validation.
func ErrTaskInvalid(reason string) *TrackError {
	return &TrackError{
		Code: CodeTaskInvalid,
		What: "task failed validation",
		Why:  reason,
		Fix:  "Correct the listed fields and retry",
	}
}

// ErrConflictPending returns an error when a new add/promote is attempted
// while a capacity conflict is awaiting resolution.
func ErrConflictPending() *TrackError {
	return &TrackError{
		Code: CodeConflictPending,
		What: "a Top 5 capacity conflict is already pending",
		Why:  "The previous add or promote exceeded the Top 5 limit and has not been resolved",
		Fix:  "Resolve the pending conflict (move to urgent, replace, or cancel) first",
	}
}

// ErrNoConflict returns an error when a resolution is attempted with no
// conflict pending.
func ErrNoConflict() *TrackError {
	return &TrackError{
		Code: CodeNoConflict,
		What: "no capacity conflict is pending",
		Why:  "Conflict resolutions only apply after an add or promote hit the Top 5 limit",
	}
}

// ErrStorageUnavailable returns an error when the backend cannot be reached.
func ErrStorageUnavailable(err error) *TrackError {
	return &TrackError{
		Code:  CodeStorageUnavailable,
		What:  "storage backend unavailable",
		Why:   "The task store did not respond",
		Fix:   "Check the storage configuration and that the backend is running",
		Cause: err,
	}
}

// ErrStorageWrite returns an error for a failed write. Callers must treat
// the affected record as state-unknown and re-fetch before trusting any
// local copy.
func ErrStorageWrite(err error) *TrackError {
	return &TrackError{
		Code:  CodeStorageWrite,
		What:  "storage write failed",
		Why:   "The write may or may not have been applied",
		Fix:   "Re-fetch the task list before retrying",
		Cause: err,
	}
}

// ErrUnauthorized returns an error for a rejected cron trigger.
func ErrUnauthorized() *TrackError {
	return &TrackError{
		Code: CodeUnauthorized,
		What: "unauthorized",
		Why:  "The request did not carry the configured shared secret",
	}
}
