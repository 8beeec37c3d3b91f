package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/infrastructure/metrics"
)

const currentUserKey = "current_user"

// TokenDecoder resolves a bearer token to the user id it was minted for.
type TokenDecoder interface {
	Decode(token string) (string, error)
}

// UserFinder loads the user referenced by a token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth rejects requests without a valid bearer token for an existing user
// and stores that user in the context. Every rejection is the same
// domain.ErrUnauthorized so clients cannot tell which check failed.
func Auth(tokens TokenDecoder, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				metrics.AuthGateRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrUnauthorized
			}

			userID, err := tokens.Decode(raw)
			if err != nil {
				metrics.AuthGateRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrUnauthorized
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthGateRejectionsTotal.WithLabelValues("unknown_user").Inc()
					return domain.ErrUnauthorized
				}
				return fmt.Errorf("resolve current user: %w", err)
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// bearerToken returns the last segment of a "Bearer <token>" header, or ""
// when the header is absent or has another shape.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[len(parts)-1]
}

// CurrentUser returns the user stored by Auth, or nil outside the gate.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(currentUserKey).(*domain.User)
	return user
}

func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(currentUserKey, user)
}
