package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// UserRepository persists user credentials.
type UserRepository interface {
	// Create inserts user and returns the stored copy with its ID set.
	// It returns domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
