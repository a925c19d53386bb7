package apierror

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeTimeout         = "REQUEST_TIMEOUT"
	CodeInternal        = "INTERNAL_ERROR"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details any, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation carries per-field messages keyed by the JSON field name.
func Validation(message string, fields map[string]string) *APIError {
	var details any
	if len(fields) > 0 {
		details = fields
	}
	return New(CodeValidation, message, details, http.StatusBadRequest)
}

func BadRequest(message string) *APIError {
	return New(CodeBadRequest, message, nil, http.StatusBadRequest)
}

func Unauthenticated(message string) *APIError {
	return New(CodeUnauthenticated, message, nil, http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New(CodeForbidden, message, nil, http.StatusForbidden)
}

func NotFound(message string) *APIError {
	return New(CodeNotFound, message, nil, http.StatusNotFound)
}

func Conflict(message string) *APIError {
	return New(CodeConflict, message, nil, http.StatusConflict)
}

func RateLimited() *APIError {
	return New(CodeRateLimited, "Too many requests", nil, http.StatusTooManyRequests)
}

func Internal() *APIError {
	return New(CodeInternal, "Unexpected server error", nil, http.StatusInternalServerError)
}
