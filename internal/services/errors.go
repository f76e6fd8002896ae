// Package services defines the business logic for country reads and the
// refresh pipeline. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer. Upstream-source failures are not listed here: they are
// reported as *sources.UnavailableError so the failing source stays attached
// to the error.
package services

import (
	"errors"

	"github.com/tbourn/go-countries-backend/internal/sources"
)

var (
	// ErrCountryNotFound indicates that no country row matched the requested
	// name (case-insensitive).
	ErrCountryNotFound = errors.New("country not found")

	// ErrRenderFailed is returned when the refresh transaction committed but
	// producing or persisting the summary artifact failed. The committed
	// country data remains valid; the artifact catches up on the next
	// successful refresh.
	ErrRenderFailed = errors.New("summary artifact generation failed")
)

// isUnavailable reports whether err carries a *sources.UnavailableError
// anywhere in its chain.
func isUnavailable(err error) bool {
	var ue *sources.UnavailableError
	return errors.As(err, &ue)
}

// isRenderFailure reports whether err stems from the post-commit render phase.
func isRenderFailure(err error) bool {
	return errors.Is(err, ErrRenderFailed)
}
