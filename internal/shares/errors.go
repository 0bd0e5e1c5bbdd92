package shares

import (
	"errors"
	"net/http"

	"github.com/docrelay/docrelay/pkg/repository"
)

// Sentinel errors for share operations.
var (
	ErrNotFound             = errors.New("share not found")
	ErrUnavailable          = errors.New("share no longer available")
	ErrAuthenticationFailed = errors.New("share authentication failed")
	ErrInvalidShare         = errors.New("invalid share")
)

// MapHTTPStatus translates share errors into HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusGone
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidShare):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
