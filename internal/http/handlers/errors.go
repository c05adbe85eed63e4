// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// Codes are lowercase snake_case and form a stable, machine-readable
// taxonomy supplementing the human-readable message. Handlers pick the most
// specific matching code and pass it to fail() with the HTTP status.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeListFailed       = "list_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeToggleFailed     = "toggle_failed"
	ErrCodeModerationFailed = "moderation_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
