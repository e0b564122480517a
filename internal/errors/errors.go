// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors are wrapped by domain packages and
// matched by callers with Is; callers never parse error strings.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates an infrastructure dependency (storage, OS keyring) cannot
	// currently serve the request. Callers decide whether to retry.
	ErrUnavailable = errors.New("unavailable")

	// ErrIntegrity indicates stored data failed an integrity check (authentication tag,
	// hash chain). It signals tampering, corruption or the wrong key.
	ErrIntegrity = errors.New("integrity violation")

	// ErrInternal indicates an unexpected failure that has no more specific kind.
	ErrInternal = errors.New("internal error")
)

// Storage errors shared by every repository and the audit log.
var (
	// ErrStorageUnavailable indicates the database failed or timed out. It is never
	// retried silently by this module.
	ErrStorageUnavailable = Wrap(ErrUnavailable, "storage unavailable")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap with a format string for the context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors. Nil errors are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
