package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries an error code and message in the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// AppError is an error with an HTTP status and stable code.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewBadRequest returns a 400 AppError.
func NewBadRequest(msg string, err error) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: "bad_request", Message: msg, Err: err}
}

// NewNotFound returns a 404 AppError.
func NewNotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

// NewInternal returns a 500 AppError.
func NewInternal(msg string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: "internal", Message: msg, Err: err}
}

// OK writes a 200 success envelope.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// Fail writes an error envelope, mapping AppError status when present.
func Fail(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp := APIResponse{Success: false, Error: &APIError{Code: appErr.Code, Message: appErr.Message}}
		if appErr.Err != nil {
			resp.Error.Details = appErr.Err.Error()
		}
		return c.JSON(appErr.Status, resp)
	}
	return c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Error:   &APIError{Code: "internal", Message: err.Error()},
	})
}
