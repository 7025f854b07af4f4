// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// DefaultPriority is assigned when a task is created without one.
const DefaultPriority = PriorityMedium

// ParsePriority parses a priority name case-insensitively.
// An empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPriority, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority: %s", s)}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Status is the completion state of a task.
type Status string

const (
	StatusIncomplete Status = "Incomplete"
	StatusComplete   Status = "Complete"
)

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incomplete":
		return StatusIncomplete, nil
	case "complete":
		return StatusComplete, nil
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status: %s", s)}
}

// Toggled returns the opposite status. Anything that is not Complete toggles to Complete.
func (s Status) Toggled() Status {
	if s == StatusComplete {
		return StatusIncomplete
	}
	return StatusComplete
}

// Task is a single persisted to-do item.
// All fields are assigned by the remote service; clients treat a Task as read-only.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
}

// Done reports whether the task is complete.
func (t Task) Done() bool {
	return t.Status == StatusComplete
}

// NewTask holds the fields sent when creating a task.
// Status is never sent; the service defaults it.
type NewTask struct {
	Title       string
	Description string
	Priority    Priority
}

// TaskFields is a partial update. Nil fields are left unchanged by the service.
type TaskFields struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
}

// IsEmpty reports whether no field is set.
func (f TaskFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Priority == nil && f.Status == nil
}

// Apply returns a copy of t with the set fields of f applied.
// Used by backends that store tasks themselves; clients never patch local copies.
func (f TaskFields) Apply(t Task) Task {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	return t
}

// Reply is the agent's answer to one chat turn.
type Reply struct {
	// Text is shown to the user verbatim and never inspected for side effects.
	Text string

	// Refresh is set when the agent mutated tasks server-side and the
	// client should reload.
	Refresh bool
}

// ValidateTitle checks that a task title is present.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "title required"}
	}
	return nil
}
