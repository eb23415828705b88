// Package services implements the autonomous job layer: publishing due
// posts under safety limits, responding to comments, generating daily
// content, collecting engagement metrics, and monitoring the platform
// credential. This file centralizes common service-level error values so
// they can be consistently returned by job methods and checked by callers.
package services

import "errors"

var (
	// ErrBadStrategy is returned when the AI strategy response cannot be
	// parsed into a daily plan.
	ErrBadStrategy = errors.New("strategy response could not be parsed")

	// ErrBadDraft is returned when the AI post-generation response cannot
	// be parsed into a post draft.
	ErrBadDraft = errors.New("post draft response could not be parsed")

	// ErrPublishFailed wraps a platform publish error after the in-flight
	// post was marked FAILED.
	ErrPublishFailed = errors.New("publish failed")
)
