package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stashly/stash-api/internal/api/middleware"
)

// ctxUserID extracts the user id injected by the Auth middleware.
// A missing id is a 401; handlers never run unscoped queries.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextKeyUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
