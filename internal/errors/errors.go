package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Machine-readable codes carried by APIError
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRunInProgress    = "RUN_IN_PROGRESS"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// APIError is an error raised by the HTTP layer itself, before a request
// reaches the report services.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError is one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

var (
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimited, "Too many report runs, try again shortly")
	ErrRunInProgress     = New(http.StatusConflict, CodeRunInProgress, "Another report run is in progress")
)

// InvalidRequestWithError reports an undecodable request body.
func InvalidRequestWithError(err error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	e.Details = err.Error()
	return e
}

// NewValidationErrors reports every rejected field at once.
func NewValidationErrors(errs []ValidationError) *APIError {
	e := New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	e.Details = ValidationErrors{Errors: errs}
	return e
}
