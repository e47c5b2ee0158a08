package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrorType classifies a failure so the CLI, the report driver and the HTTP
// layer can react to it without matching on message text.
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"    // malformed dates, numbers or CSV
	ErrTypeStorage    ErrorType = "STORAGE"    // file system and sqlite
	ErrTypeValidation ErrorType = "VALIDATION" // bad option, inverted range, bad report definition
	ErrTypeNotFound   ErrorType = "NOT_FOUND"  // unknown report, run or column
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeBrowser    ErrorType = "BROWSER"
)

// AppError is a classified failure. Context carries the report, column,
// row or group it concerns and is copied into logs and problem details.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches a bare &AppError{Type: t} target against any error of type t,
// so errors.Is(err, &AppError{Type: ErrTypeNotFound}) works through wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Message != "" || t.Cause != nil {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds a key/value pair and returns e for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogValue renders the error as a group with its type, message, cause and
// context keys in sorted order.
func (e *AppError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 3+len(e.Context))
	attrs = append(attrs,
		slog.String("type", string(e.Type)),
		slog.String("message", e.Message))
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return slog.GroupValue(attrs...)
}

// NewAppError creates an error of the given type.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// LogAttr returns err as a slog attribute, grouped when it is an AppError.
func LogAttr(err error) slog.Attr {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return slog.Any("error", appErr)
	}
	return slog.String("error", err.Error())
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewNotFoundError reports that resource ("report \"x\"", "column \"Fecha\"") is missing.
func NewNotFoundError(resource string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewBrowserError wraps a failed browser automation step.
func NewBrowserError(message string, cause error) *AppError {
	return NewAppError(ErrTypeBrowser, message, cause)
}
