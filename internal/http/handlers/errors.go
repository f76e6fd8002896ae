// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail() helper
// and give clients a stable, machine-readable error taxonomy that supplements
// human-readable messages. Codes are lowercase snake_case; generic codes
// mirror common HTTP status semantics, domain-specific codes cover outcomes a
// status alone cannot convey (e.g. which refresh phase failed).
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeSourceUnavailable = "source_unavailable"
	ErrCodeRefreshFailed     = "refresh_failed"
	ErrCodeListFailed        = "list_failed"
	ErrCodeNoArtifact        = "summary_not_generated"
)
