package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsMapToStatus(t *testing.T) {
	tests := []struct {
		err    *APIError
		code   string
		status int
	}{
		{Validation("bad", nil), CodeValidation, http.StatusBadRequest},
		{BadRequest("bad"), CodeBadRequest, http.StatusBadRequest},
		{Unauthenticated("no"), CodeUnauthenticated, http.StatusUnauthorized},
		{Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{NotFound("gone"), CodeNotFound, http.StatusNotFound},
		{Conflict("dup"), CodeConflict, http.StatusConflict},
		{Internal(), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestValidationDetails(t *testing.T) {
	err := Validation("invalid request", map[string]string{"email": "must be a valid email"})
	assert.Equal(t, map[string]string{"email": "must be a valid email"}, err.Details)
	assert.Contains(t, err.Error(), "email")

	empty := Validation("invalid request", map[string]string{})
	assert.Nil(t, empty.Details)
	assert.Equal(t, "VALIDATION_ERROR: invalid request", empty.Error())
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Conflict("email already registered"))

	var apiErr *APIError
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus)
}

func TestNilErrorString(t *testing.T) {
	var err *APIError
	assert.Equal(t, "", err.Error())
}
