package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// TaskRepository persists tasks. Every read and write is filtered by the
// owner's user ID; a task owned by someone else is reported as
// domain.ErrTaskNotFound, exactly like a missing one.
type TaskRepository interface {
	// Create inserts task and sets its ID.
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, ownerID, id string) (*domain.Task, error)
	// ListByOwner returns the owner's tasks in insertion order.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	// Update overwrites the writable fields of the task matching task.ID and task.UserID.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, ownerID, id string) error
}
