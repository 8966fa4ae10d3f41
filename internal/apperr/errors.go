// Package apperr holds the error kinds shared by the scoring, stats, league and
// transfer packages. Callers wrap them with fmt.Errorf("...: %w", ...) and match
// with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput marks a structurally wrong request: wrong player count,
	// points not summing to the table total, a missing required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateName marks a team or player name that already exists.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrMissingReference marks a player or team id that does not resolve.
	ErrMissingReference = errors.New("missing reference")
	// ErrDependentRecordsExist marks a delete blocked by referencing rows.
	ErrDependentRecordsExist = errors.New("dependent records exist")
)

// HTTPStatus maps an error to the status code the REST layer answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingReference):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrDependentRecordsExist):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
