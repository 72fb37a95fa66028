// Package domain defines audit trail domain models.
//
// Audit events record security-relevant activity (account lifecycle, API key
// lifecycle, authentication outcomes, decryption failures) and are append-only:
// events are never updated or deleted, and each one carries an HMAC signature
// so tampering with the stored trail is detectable.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of security event being recorded.
type EventType string

const (
	// EventAccountCreated records the creation of a new account.
	EventAccountCreated EventType = "account_created"

	// EventAccountSuspended records an account status transition to suspended.
	EventAccountSuspended EventType = "account_suspended"

	// EventAccountActivated records an account status transition back to active.
	EventAccountActivated EventType = "account_activated"

	// EventAPIKeyIssued records the issuance of a new API key.
	EventAPIKeyIssued EventType = "api_key_issued"

	// EventAPIKeyRevoked records the revocation of an API key.
	EventAPIKeyRevoked EventType = "api_key_revoked"

	// EventAuthSucceeded records a successful credential validation.
	EventAuthSucceeded EventType = "auth_succeeded"

	// EventAuthFailed records a rejected credential. The account ID is nil
	// when the credential did not resolve to any account.
	EventAuthFailed EventType = "auth_failed"

	// EventDecryptionFailed records an AEAD tag-verification failure on a
	// stored record (corruption, tampering, or cross-account misuse).
	EventDecryptionFailed EventType = "decryption_failed"

	// EventContentStored records an encrypted payload being written.
	EventContentStored EventType = "content_stored"

	// EventContentRead records an encrypted payload being decrypted and read.
	EventContentRead EventType = "content_read"
)

// Event is an immutable audit trail entry.
type Event struct {
	ID uuid.UUID
	// AccountID is nil for events that could not be attributed to an account
	// (e.g., failed authentication with an unknown credential).
	AccountID *uuid.UUID
	EventType EventType
	Metadata  map[string]any
	// IP and UserAgent describe the request origin when the event was
	// triggered by an inbound request; empty for administrative operations.
	IP        string
	UserAgent string
	// MasterKeyID identifies which master key derived the signing key.
	MasterKeyID string
	// Signature is the HMAC-SHA256 over the event's canonical form.
	Signature []byte
	CreatedAt time.Time
}
