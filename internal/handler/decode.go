package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-auth-api/internal/validation"
	"go-auth-api/pkg/apierror"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apierror.New(apierror.CodeBadRequest, "Request body too large", nil, http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			return apierror.BadRequest("Request body is required")
		default:
			return apierror.BadRequest("Invalid JSON body")
		}
	}

	return validation.Struct(dst)
}
