package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/llm"
	"go-auth-api/internal/model"
	"go-auth-api/internal/security"
	"go-auth-api/internal/service"
	"go-auth-api/pkg/apierror"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"incorrect password is not a 401", model.ErrIncorrectPassword, http.StatusBadRequest, "Incorrect password"},
		{"invalid credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, incorrectCredentials},
		{"inactive user", model.ErrInactiveUser, http.StatusUnauthorized, incorrectCredentials},
		{"expired token", fmt.Errorf("verify: %w", security.ErrTokenExpired), http.StatusUnauthorized, incorrectCredentials},
		{"wrong token type", security.ErrWrongTokenType, http.StatusUnauthorized, incorrectCredentials},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, "Not enough privileges"},
		{"not found", model.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"email taken", model.ErrEmailTaken, http.StatusConflict, "Email already registered"},
		{"username taken", fmt.Errorf("create user %q: %w", "bob", model.ErrUsernameTaken), http.StatusConflict, "Username already taken"},
		{"password too long", security.ErrPasswordTooLong, http.StatusBadRequest, "Password must be at most 72 bytes"},
		{"provider missing", &llm.NotConfiguredError{Setting: "OPENAI_API_KEY"}, http.StatusBadRequest, "OPENAI_API_KEY is not configured"},
		{"api error passes through", apierror.Conflict("custom"), http.StatusConflict, "custom"},
		{"unknown error", errors.New("db exploded"), http.StatusInternalServerError, "Unexpected server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := toAPIError(tt.err)
			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestWriteError_Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(rec, req, model.ErrInvalidCredentials)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	var body model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, apierror.CodeUnauthenticated, body.Error.Code)
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	writeSuccess(rec, http.StatusOK, "ok", map[string]int{"n": 1}, model.NewMeta(2, 10, 25))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])
	assert.NotContains(t, body, "error")

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(3), meta["pages"])
	assert.Equal(t, true, meta["has_next"])
	assert.Equal(t, true, meta["has_prev"])
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", "", http.StatusBadRequest, apierror.CodeBadRequest},
		{"malformed json", "{", http.StatusBadRequest, apierror.CodeBadRequest},
		{"missing field", `{"email":"a@example.com"}`, http.StatusBadRequest, apierror.CodeValidation},
		{"too large", `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, apierror.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst model.LoginRequest
			err := decodeAndValidate(rec, req, &dst)

			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com","password":"x"}`))
		var dst model.LoginRequest
		require.NoError(t, decodeAndValidate(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "a@example.com", dst.Email)
	})
}

func TestQueryInt_PageIsBounded(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=4611686018427387904", nil)
	_, err := queryInt(req, "page", 1, 1, service.MaxPage)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/?page=21474836", nil)
	got, err := queryInt(req, "page", 1, 1, service.MaxPage)
	require.NoError(t, err)
	assert.Equal(t, service.MaxPage, got)
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 20, false},
		{"size=5", 5, false},
		{"size=abc", 0, true},
		{"size=0", 0, true},
		{"size=101", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got, err := queryInt(req, "size", 20, 1, 100)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
