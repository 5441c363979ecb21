package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stashly/stash-api/internal/core/domain"
	"github.com/stashly/stash-api/internal/core/ports"
)

// ContextKeyUserID is the echo.Context key holding the authenticated user id.
const ContextKeyUserID = "user_id"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// Auth validates an access token and injects the subject into the context.
// Requests without a valid token are rejected before reaching any handler.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := BearerToken(c.Request())
			if err != nil {
				return unauthorized(err)
			}

			userID, err := tokens.Validate(raw, domain.TokenAccess)
			if err != nil {
				return unauthorized(err)
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

func unauthorized(err error) *echo.HTTPError {
	msg := "invalid token"
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		msg = "missing authorization header"
	case errors.Is(err, domain.ErrExpiredToken):
		msg = "token expired"
	}
	return echo.NewHTTPError(http.StatusUnauthorized, msg).SetInternal(err)
}
