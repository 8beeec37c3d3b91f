package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tasktrack/task-api/internal/api/middleware"
	"github.com/tasktrack/task-api/internal/core/domain"
)

// currentUser returns the caller resolved by the auth gate. A missing user
// means the route was mounted without the gate; fail closed.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
