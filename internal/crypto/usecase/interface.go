// Package usecase implements business logic orchestration for key management.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
)

// WrappedKeyRepository reads and rewrites the wrapped form of account keys.
// Implemented by the account repositories; every method takes the account ID
// so tenant scoping is part of the contract, not a convention.
type WrappedKeyRepository interface {
	// GetWrappedKey returns the stored wrapped key for the account.
	// Returns a not-found error when the account has no wrapped key; the
	// keystore treats that as a hard error and never auto-creates one.
	GetWrappedKey(ctx context.Context, accountID uuid.UUID) (cryptoDomain.WrappedKey, error)

	// UpdateWrappedKey replaces the account's wrapped key. Used only by the
	// offline master-key rotation path.
	UpdateWrappedKey(ctx context.Context, accountID uuid.UUID, wrapped cryptoDomain.WrappedKey) error
}

// AccountKeyStore owns the lifecycle of per-account data-encryption keys.
//
// Get unwraps on demand and memoizes the result with a bounded TTL; concurrent
// calls for the same account coalesce into a single unwrap. Returned key
// material is a private copy the caller should zero after use.
type AccountKeyStore interface {
	// Get returns the unwrapped data-encryption key for the account.
	Get(ctx context.Context, accountID uuid.UUID) ([]byte, error)

	// Create generates a fresh random account key and returns its wrapped form
	// for persistence. The plaintext key never leaves this call.
	Create(ctx context.Context, accountID uuid.UUID) (cryptoDomain.WrappedKey, error)

	// Invalidate evicts the account's cached key, forcing the next Get to
	// unwrap from storage again.
	Invalidate(accountID uuid.UUID)

	// Close zeroes and drops all cached key material.
	Close()
}
