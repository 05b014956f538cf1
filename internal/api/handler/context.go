package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/task-api/internal/api/middleware"
	"github.com/tasktrack/task-api/internal/core/domain"
)

// ctxUser returns the user injected by the Auth middleware. A missing user
// means the route was registered without the middleware; reject with 401.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.ContextKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated user")
	}
	return user, nil
}
