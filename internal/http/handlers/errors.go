// Package handlers defines the HTTP-layer error codes used across the admin
// endpoints. Codes are lowercase snake_case and stable: clients branch on
// them programmatically, while the message field stays human-readable.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeJobFailed  = "job_failed"
	ErrCodeListFailed = "list_failed"
)
