package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP failure envelopes.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal server error")
	}
}
