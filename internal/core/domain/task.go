package domain

import (
	"strings"
	"time"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the task invariants against today's date. It returns a
// *ValidationError listing every violated field, or nil.
func (t *Task) Validate(today Date) error {
	return t.ValidateInput(today, false)
}

// ValidateInput is Validate for a task built from client input, where
// dueDateMalformed reports a due_date value that did not parse as a date.
func (t *Task) ValidateInput(today Date, dueDateMalformed bool) error {
	ve := &ValidationError{}

	if strings.TrimSpace(t.Title) == "" {
		ve.Add("title", "can't be blank")
	}

	switch {
	case t.Status == "":
		ve.Add("status", "can't be blank")
	case !t.Status.Valid():
		ve.Add("status", "is not included in the list")
	}

	switch {
	case dueDateMalformed:
		ve.Add("due_date", "is invalid")
	case t.DueDate != nil && t.DueDate.Before(today):
		ve.Add("due_date", "cannot be in the past")
	}

	return ve.OrNil()
}
