// Package httperr maps the structured application errors returned by the
// usecase layer onto HTTP status codes, for the legacy protocol's dual
// status-code/@status signalling and the admin JSON API's responses.
package httperr

import (
	"errors"
	"net/http"

	"github.com/pannpers/go-apperr/apperr"
)

// sentinel pairs an apperr sentinel with the HTTP status it maps to, checked
// in order with errors.Is. apperr does not expose a code-extraction helper,
// so this list is the only grounded way to recover a status from an error
// built with apperr.New/apperr.Wrap.
var sentinels = []struct {
	err    error
	status int
}{
	{apperr.ErrInvalidArgument, http.StatusBadRequest},
	{apperr.ErrUnauthenticated, http.StatusUnauthorized},
	{apperr.ErrPermissionDenied, http.StatusForbidden},
	{apperr.ErrNotFound, http.StatusNotFound},
	{apperr.ErrAlreadyExists, http.StatusConflict},
	{apperr.ErrUnavailable, http.StatusServiceUnavailable},
	{apperr.ErrInternal, http.StatusInternalServerError},
}

// Status returns the HTTP status err maps to, defaulting to 500 for errors
// that carry no recognised apperr sentinel (including nil, which callers
// should never pass in here).
func Status(err error) int {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
