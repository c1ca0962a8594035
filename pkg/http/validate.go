package http

import (
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ReadAndValidateRequest binds the request into req, applies struct
// defaults and runs validation tags. Returns a 400 AppError on failure.
func ReadAndValidateRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return NewBadRequest("invalid request", err)
	}
	if err := defaults.Set(req); err != nil {
		return NewInternal("apply defaults", err)
	}
	if err := validate.Struct(req); err != nil {
		return NewBadRequest("validation failed", err)
	}
	return nil
}
