// Package domain defines account domain models.
//
// An account is the tenant boundary for all encryption and authentication:
// every account owns exactly one data-encryption key (stored wrapped under a
// master key) and any number of API keys that authenticate as that account.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
)

// Status represents the lifecycle state of an account.
type Status string

const (
	// StatusActive allows authentication and cryptographic operations.
	StatusActive Status = "active"

	// StatusSuspended blocks authentication and cryptographic operations.
	// Suspension is reversible; the account's key material is retained.
	StatusSuspended Status = "suspended"
)

// Account represents a tenant with its wrapped data-encryption key.
type Account struct {
	ID   uuid.UUID
	Name string
	// Status gates all account activity. Only active accounts may
	// authenticate, encrypt, or decrypt.
	Status Status
	// WrappedKey is the account's data-encryption key, sealed under the
	// master key identified by WrappedKey.MasterKeyID. The plaintext key
	// never touches the database.
	WrappedKey cryptoDomain.WrappedKey
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the account may authenticate and use its key.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// CreateAccountInput contains the parameters for creating a new account.
// The account key is always generated server-side and cannot be supplied.
type CreateAccountInput struct {
	Name string
}

// CreateAccountOutput contains the result of creating a new account.
// SECURITY: PlainAPIKey is the account's first credential and is only
// returned once; it can never be retrieved again.
type CreateAccountOutput struct {
	ID          uuid.UUID
	APIKeyID    uuid.UUID
	PlainAPIKey string
}
