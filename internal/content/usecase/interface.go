// Package usecase implements encryption and retrieval of account-scoped
// content records.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
)

// RecordRepository defines persistence operations for content records. Every
// read takes the owning account ID so tenant scoping is part of the contract.
type RecordRepository interface {
	Create(ctx context.Context, record *contentDomain.Record) error
	// Get returns the record only if it belongs to the account. Unknown IDs
	// and records owned by other accounts both return a not-found error.
	Get(ctx context.Context, accountID, recordID uuid.UUID) (*contentDomain.Record, error)
	// ListByAccount returns record metadata newest first. Payload columns
	// (ciphertext, nonce, tag) are not selected.
	ListByAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*contentDomain.Record, error)
}

// AccountGetter is the slice of account persistence the content flows need.
type AccountGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error)
}

// ContentUseCase encrypts, stores, and retrieves content for accounts.
//
// All cryptographic operations require an active account and bind the account
// ID as AAD, so a record's ciphertext can only ever be opened with its owning
// account's key.
type ContentUseCase interface {
	// EncryptForAccount encrypts plaintext under the account's key and
	// returns an unsaved record holding ciphertext, nonce, and tag.
	EncryptForAccount(ctx context.Context, accountID uuid.UUID, plaintext []byte) (*contentDomain.Record, error)

	// DecryptForAccount decrypts a record's payload with the account's key.
	// Tag verification failure returns a decryption error; it is never
	// retried and never distinguishes tampering from cross-account misuse.
	DecryptForAccount(ctx context.Context, accountID uuid.UUID, record *contentDomain.Record) ([]byte, error)

	// Store encrypts and persists a payload for the account.
	Store(ctx context.Context, accountID uuid.UUID, kind string, plaintext []byte) (*contentDomain.Record, error)

	// Get retrieves and decrypts a record. The returned record carries the
	// payload in Plaintext; callers should zero it after use.
	Get(ctx context.Context, accountID, recordID uuid.UUID) (*contentDomain.Record, error)

	// List returns record metadata for the account, newest first.
	List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*contentDomain.Record, error)
}
