package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types (RFC 7807 "type" member)
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeConflict   = "/errors/conflict"
	TypeRateLimit  = "/errors/rate-limit"
	TypeTimeout    = "/errors/timeout"
	TypeInternal   = "/errors/internal"
	TypeParsing    = "/errors/data/parsing"
	TypeStorage    = "/errors/storage"
	TypeBrowser    = "/errors/browser"
	TypeConfig     = "/errors/config"
)

type problemClass struct {
	status int
	kind   string
}

// appErrorClasses maps each ErrorType to its HTTP status and problem type.
// Bad user input is a 4xx, broken exports are 422, everything on our side
// of the wire is a 5xx.
var appErrorClasses = map[ErrorType]problemClass{
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation},
	ErrTypeParsing:    {http.StatusUnprocessableEntity, TypeParsing},
	ErrTypeNotFound:   {http.StatusNotFound, TypeNotFound},
	ErrTypeStorage:    {http.StatusInternalServerError, TypeStorage},
	ErrTypeBrowser:    {http.StatusBadGateway, TypeBrowser},
	ErrTypeConfig:     {http.StatusInternalServerError, TypeConfig},
}

var apiErrorTypes = map[string]string{
	CodeInvalidRequest:   TypeValidation,
	CodeValidationFailed: TypeValidation,
	CodeRunInProgress:    TypeConflict,
	CodeRateLimited:      TypeRateLimit,
}

// ErrorHandler renders errors as RFC 7807 problem details and logs them.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes it as a problem document.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)
	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		LogAttr(err),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}
	h.write(w, r, problem)
}

// ErrorToProblem classifies err. Cancellation maps to 504, APIError and
// AppError to their tables, anything else to 500 without leaking the message.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The report run was cancelled before it finished", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		kind, ok := apiErrorTypes[apiErr.ErrorCode]
		if !ok {
			kind = TypeInternal
		}
		problem := NewProblemDetails(apiErr.StatusCode, kind, http.StatusText(apiErr.StatusCode), apiErr.Message, r.URL.Path).
			WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		class, ok := appErrorClasses[appErr.Type]
		if !ok {
			class = problemClass{http.StatusInternalServerError, TypeInternal}
		}
		problem := NewProblemDetails(class.status, class.kind, http.StatusText(class.status), appErr.Error(), r.URL.Path).
			WithExtension("error_type", string(appErr.Type))
		for k, v := range appErr.Context {
			problem.WithExtension(k, v)
		}
		return problem
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", r.URL.Path)
}

// HandlePanic answers 500 for a recovered panic.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())))

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
	}
	h.write(w, r, problem)
}

// NotFound is the router fallback for unknown paths.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// Middleware recovers panics raised by downstream handlers.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *ErrorHandler) write(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}
	render.Render(w, r, problem)
}
