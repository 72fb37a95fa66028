// Package service provides audit event signing.
package service

import (
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
)

// EventSigner signs audit events and verifies stored signatures.
type EventSigner interface {
	// Sign computes the event's HMAC signature using a key derived from the
	// active master key, and sets Signature and MasterKeyID on the event.
	Sign(event *auditDomain.Event) error
	// Verify recomputes the signature with the master key named by the event
	// and compares it in constant time. Returns ErrSignatureMismatch when the
	// stored signature does not match.
	Verify(event *auditDomain.Event) error
}
