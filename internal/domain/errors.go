// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDependencyMissing is returned when a required external binary is not on PATH.
	// It is reported before any network activity.
	ErrDependencyMissing = errors.New("required tool not installed")

	// ErrGrantRequestFailed is returned when the initial device code request fails
	// or the provider answers with a malformed body. It is never retried.
	ErrGrantRequestFailed = errors.New("device code request failed")

	// ErrAuthDenied is matched by DeniedError. The operator declined the authorization.
	ErrAuthDenied = errors.New("authorization denied")

	// ErrAuthTimedOut is returned when the poll attempt budget is exhausted
	// or the provider reports the device code as expired.
	ErrAuthTimedOut = errors.New("authorization timed out, run sitekit again to restart authentication")

	// ErrCancelled is returned when the operator aborts the session.
	ErrCancelled = errors.New("cancelled")
)

// DependencyMissingError names the binary that could not be found.
// Callers can check for it using errors.Is(err, ErrDependencyMissing).
type DependencyMissingError struct {
	Binary string
	Hint   string
}

func (e *DependencyMissingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("sitekit requires %s, please install it before proceeding (%s)", e.Binary, e.Hint)
	}
	return fmt.Sprintf("sitekit requires %s, please install it before proceeding", e.Binary)
}

func (e *DependencyMissingError) Is(target error) bool {
	return target == ErrDependencyMissing
}

// DeniedError carries the provider's reason for an explicit denial.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return ErrAuthDenied.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAuthDenied, e.Reason)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrAuthDenied
}

// TransientPollError wraps a single anomalous poll tick.
// The poller absorbs it and keeps polling; it is never surfaced to the operator.
type TransientPollError struct {
	Attempt int
	Cause   error
}

func (e *TransientPollError) Error() string {
	return fmt.Sprintf("poll attempt %d: %v", e.Attempt, e.Cause)
}

func (e *TransientPollError) Unwrap() error {
	return e.Cause
}
