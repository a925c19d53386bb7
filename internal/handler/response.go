package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-auth-api/internal/middleware"
	"go-auth-api/internal/model"
	"go-auth-api/internal/security"
	"go-auth-api/pkg/apierror"
)

const incorrectCredentials = "Incorrect credentials"

func writeSuccess(w http.ResponseWriter, status int, message string, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError is the single place where domain errors become HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)

	if apiErr.HTTPStatus == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "unhandled error",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}

func toAPIError(err error) *apierror.APIError {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	// Must precede ErrInvalidCredentials, which it wraps.
	case errors.Is(err, model.ErrIncorrectPassword):
		return apierror.BadRequest("Incorrect password")
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrInactiveUser),
		errors.Is(err, model.ErrUnauthenticated),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, security.ErrWrongTokenType):
		return apierror.Unauthenticated(incorrectCredentials)
	case errors.Is(err, model.ErrForbidden):
		return apierror.Forbidden("Not enough privileges")
	case errors.Is(err, model.ErrUserNotFound):
		return apierror.NotFound("User not found")
	case errors.Is(err, model.ErrEmailTaken):
		return apierror.Conflict("Email already registered")
	case errors.Is(err, model.ErrUsernameTaken):
		return apierror.Conflict("Username already taken")
	case errors.Is(err, model.ErrUserAlreadyExists):
		return apierror.Conflict("User already exists")
	case errors.Is(err, security.ErrPasswordTooLong):
		return apierror.Validation("Password must be at most 72 bytes", nil)
	case errors.Is(err, model.ErrProviderNotConfigured):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, model.ErrUnknownProvider):
		return apierror.BadRequest("Unknown LLM provider")
	case errors.Is(err, model.ErrInvalidInput):
		return apierror.BadRequest("Invalid input")
	default:
		return apierror.Internal()
	}
}
