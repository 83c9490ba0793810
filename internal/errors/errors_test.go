package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		code       string
	}{
		{name: "email taken", err: ErrEmailTaken, statusCode: http.StatusBadRequest, code: "EMAIL_TAKEN"},
		{name: "email in use", err: ErrEmailInUse, statusCode: http.StatusBadRequest, code: "EMAIL_IN_USE"},
		{name: "workflow name taken", err: ErrWorkflowNameTaken, statusCode: http.StatusBadRequest, code: "WORKFLOW_NAME_TAKEN"},
		{name: "empty body", err: ErrEmptyBody, statusCode: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "no valid fields", err: ErrNoValidFields, statusCode: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "missing credentials", err: ErrMissingCredentials, statusCode: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "invalid credentials", err: ErrInvalidCredentials, statusCode: http.StatusUnauthorized, code: "INVALID_CREDENTIALS"},
		{name: "deactivated", err: ErrAccountDeactivated, statusCode: http.StatusUnauthorized, code: "ACCOUNT_DEACTIVATED"},
		{name: "user not found", err: ErrUserNotFound, statusCode: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "workflow not found", err: ErrWorkflowNotFound, statusCode: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "validation error", err: NewValidationError("name is required"), statusCode: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "wrapped sentinel", err: fmt.Errorf("login: %w", ErrInvalidCredentials), statusCode: http.StatusUnauthorized, code: "INVALID_CREDENTIALS"},
		{name: "unknown fault", err: errors.New("connection reset"), statusCode: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

// Internal faults never leak their cause to the client.
func TestMapErrorToHTTP_GenericInternalMessage(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("name is required", "status is invalid")
	assert.Equal(t, "name is required; status is invalid", err.Error())
	assert.Equal(t, "validation failed", NewValidationError().Error())
}
