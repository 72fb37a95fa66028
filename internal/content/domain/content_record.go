// Package domain defines content record domain models.
//
// A content record is an encrypted payload owned by exactly one account. The
// ciphertext, nonce, and tag are stored as separate columns; the plaintext
// only ever exists in memory during an encrypt or decrypt operation.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record represents an encrypted content payload scoped to an account.
type Record struct {
	// ID is the unique identifier of this record.
	ID uuid.UUID
	// AccountID is the owning account. Decryption is only possible with that
	// account's key; the account identity is bound as AAD during encryption.
	AccountID uuid.UUID
	// Kind is a caller-supplied label for the payload (e.g. "analysis", "note").
	Kind string
	// Ciphertext is the encrypted payload, without the tag.
	Ciphertext []byte
	// Plaintext holds the decrypted payload in memory only; never persisted.
	Plaintext []byte `json:"-"`
	// Nonce is the random value generated for this encryption.
	Nonce []byte
	// Tag is the 16-byte AEAD authentication tag.
	Tag []byte
	// CreatedAt is the UTC timestamp when the record was stored.
	CreatedAt time.Time
}
