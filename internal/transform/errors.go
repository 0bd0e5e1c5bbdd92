package transform

import (
	"errors"
	"net/http"

	"github.com/docrelay/docrelay/internal/codec"
)

// Sentinel errors for transform operations.
var (
	ErrUnknownOperation      = errors.New("unknown operation")
	ErrInsufficientInputs    = errors.New("insufficient input documents")
	ErrInvalidParameter      = errors.New("invalid operation parameter")
	ErrEmptyDocument         = errors.New("document has no extractable content")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrAuthenticationFailed  = errors.New("document authentication failed")
)

// MapHTTPStatus translates transform and codec errors into HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientInputs),
		errors.Is(err, ErrInvalidParameter),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrUnsupportedConversion),
		errors.Is(err, codec.ErrMalformed),
		errors.Is(err, codec.ErrPageOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
