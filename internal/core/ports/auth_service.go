package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Email                string
	Password             string
	PasswordConfirmation *string // nil when the client did not send one
	// Invalid holds field problems found while decoding the request. They
	// are reported together with the service's own checks.
	Invalid *domain.ValidationError
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}
