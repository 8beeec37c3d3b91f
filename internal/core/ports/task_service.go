package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// CreateTaskInput carries the writable fields of a new task. The owner is
// never part of the input; it comes from the authenticated caller.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         string
	DueDate        *domain.Date
	// DueDateInvalid is set when the client sent a due_date that is not a date.
	DueDateInvalid bool
	IdempotencyKey string
}

// UpdateTaskInput carries a partial update. Nil pointers leave the field
// untouched. DueDateSet distinguishes "clear the due date" (set, nil) from
// "not supplied".
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *string
	DueDateSet     bool
	DueDate        *domain.Date
	DueDateInvalid bool
}

// TaskService exposes task use cases scoped to a single owner.
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	Create(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id string, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}
