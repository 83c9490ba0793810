package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrEmailInUse is returned when a profile update collides with another user's email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials is returned on bad login. The message is deliberately the
	// same for an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDeactivated is returned when logging into a deactivated account.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrMissingCredentials is returned when login lacks email or password.
	ErrMissingCredentials = errors.New("please provide email and password")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrWorkflowNotFound is returned when a workflow does not exist or is owned by someone else.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrWorkflowNameTaken is returned on a (name, owner) uniqueness violation.
	ErrWorkflowNameTaken = errors.New("a workflow with this name already exists")
	// ErrNoValidFields is returned when a profile update touches no updatable field.
	ErrNoValidFields = errors.New("no valid fields to update")
	// ErrEmptyBody is returned when a request body is missing or has no keys.
	ErrEmptyBody = errors.New("request body is required")
)

// ValidationError carries per-field constraint violations.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Fields, "; ")
}

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized is an
// internal error with a generic message; callers are expected to log the cause.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewHTTPError(http.StatusBadRequest, verr.Error(), "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrEmailInUse):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_IN_USE")
	case errors.Is(err, ErrWorkflowNameTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "WORKFLOW_NAME_TAKEN")
	case errors.Is(err, ErrEmptyBody):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrNoValidFields):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrMissingCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountDeactivated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "ACCOUNT_DEACTIVATED")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrWorkflowNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
