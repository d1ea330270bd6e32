package utils

import (
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies a failure so controllers can map it to a transport
// status without inspecting message strings.
type ErrorKind string

const (
	ErrorKindValidation     ErrorKind = "VALIDATION_ERROR"
	ErrorKindAuthentication ErrorKind = "AUTHENTICATION_ERROR"
	ErrorKindAuthorization  ErrorKind = "AUTHORIZATION_ERROR"
	ErrorKindNotFound       ErrorKind = "NOT_FOUND_ERROR"
	ErrorKindInternal       ErrorKind = "INTERNAL_ERROR"
)

// AppError is the single error type crossing the service boundary. Guard
// failures carry a caller-facing message; internal errors wrap their cause
// and surface a generic message instead.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case ErrorKindValidation:
		return fiber.StatusBadRequest
	case ErrorKindAuthentication:
		return fiber.StatusUnauthorized
	case ErrorKindAuthorization:
		return fiber.StatusForbidden
	case ErrorKindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrorKindValidation, Message: message}
}

func NewAuthenticationError(message string) *AppError {
	if message == "" {
		message = "Not authenticated"
	}
	return &AppError{Kind: ErrorKindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: ErrorKindAuthorization, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

// NewInternalError wraps an unexpected failure, typically from the store.
// The message returned to callers stays generic.
func NewInternalError(err error) *AppError {
	return &AppError{Kind: ErrorKindInternal, Message: "Internal server error", Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HandleError renders err as a JSON response. Classified errors keep their
// status and message; anything else becomes a generic 500. Internal and
// unclassified errors are reported to Sentry.
func HandleError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == ErrorKindInternal {
			sentry.CaptureException(appErr)
		}
		return c.Status(appErr.StatusCode()).JSON(fiber.Map{
			"error": appErr.Message,
			"code":  string(appErr.Kind),
		})
	}

	sentry.CaptureException(err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
		"code":  string(ErrorKindInternal),
	})
}
