// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
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

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	// Returned uniformly for unknown, revoked, and suspended credentials so that
	// callers cannot distinguish the cases via response shape.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated account doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrKeyManagement indicates a master-key provisioning or key-unwrap failure.
	// At startup this is fatal to the process; at runtime it is fatal to the
	// affected account's operation and is never retried.
	ErrKeyManagement = errors.New("key management failure")

	// ErrDecryptionFailed indicates an AEAD tag-verification failure on a stored
	// record (corruption, tampering, or cross-account misuse). Never retried.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrStorage indicates a transient storage backend failure. Retryable by the
	// caller with backoff, and deliberately distinct from cryptographic and
	// authentication failures so retries are never attempted on those.
	ErrStorage = errors.New("storage failure")
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
