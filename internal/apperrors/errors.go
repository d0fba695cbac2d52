package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for the service layer. Handlers translate these to HTTP
// status codes with MapHTTPStatus; anything outside the taxonomy is an
// internal error and must not leak its message to the client.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExpired    = errors.New("expired")
	ErrUpstream   = errors.New("upstream error")
)

// MapHTTPStatus returns the HTTP status code for a taxonomy error,
// or http.StatusInternalServerError for anything else.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsTaxonomy reports whether err belongs to the service error taxonomy,
// meaning its message is safe to return to the caller.
func IsTaxonomy(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrUpstream)
}
