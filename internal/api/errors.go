// errors.go - Structured error handling for API responses
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/foreign-arrivals/dashboard/internal/dashboard"
	"github.com/foreign-arrivals/dashboard/internal/filter"
	"github.com/labstack/echo/v4"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ExposeErrorDetails controls whether unexpected errors carry their message
// in the Details field.
var ExposeErrorDetails = true

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInvalidRangeError creates a 400 error for an inverted year range
func NewInvalidRangeError(cause *filter.InvalidRangeError) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_RANGE",
		Message: cause.Error(),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil && ExposeErrorDetails {
		err.Details = cause.Error()
	}
	return err
}

// NewDatasetUnavailableError creates a 503 error for a failed dataset load
func NewDatasetUnavailableError(cause error) *APIError {
	err := &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "DATASET_UNAVAILABLE",
		Message: "the arrivals dataset could not be loaded",
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// StatusClientClosedRequest is the non-standard status for a request whose
// client went away before the answer was ready.
const StatusClientClosedRequest = 499

// NewClientClosedError creates a 499 error for an abandoned request
func NewClientClosedError() *APIError {
	return &APIError{
		Status:  StatusClientClosedRequest,
		Code:    "CLIENT_CLOSED_REQUEST",
		Message: "the request was cancelled by the client",
	}
}

// NewTimeoutError creates a 504 error for a request that ran out of time
func NewTimeoutError() *APIError {
	return &APIError{
		Status:  http.StatusGatewayTimeout,
		Code:    "TIMEOUT",
		Message: "the request timed out",
	}
}

// FromError maps a domain error to an APIError
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var rangeErr *filter.InvalidRangeError
	if errors.As(err, &rangeErr) {
		return NewInvalidRangeError(rangeErr)
	}
	if errors.Is(err, context.Canceled) {
		return NewClientClosedError()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError()
	}
	if errors.Is(err, dashboard.ErrDatasetUnavailable) {
		return NewDatasetUnavailableError(err)
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	}
	return NewInternalError("An unexpected error occurred", err)
}

// ErrorHandler is the echo HTTP error handler.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	apiErr := FromError(err)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = c.JSON(apiErr.Status, apiErr)
}

// errorOutcome is the query metric outcome for err. Abandoned requests are
// not server failures.
func errorOutcome(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
