package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/stashly/stash-api/internal/core/domain"
)

// bindStrict decodes the JSON request body into dst. Unknown fields and
// trailing data are rejected as validation errors.
func bindStrict(c echo.Context, dst any) error {
	body := c.Request().Body
	if body == nil {
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid payload: %s", domain.ErrValidation, err.Error())
	}
	if dec.More() {
		return fmt.Errorf("%w: invalid payload: unexpected data after JSON object", domain.ErrValidation)
	}
	return nil
}
