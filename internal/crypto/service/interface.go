// Package service provides cryptographic services for account-scoped envelope
// encryption. Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), the
// master keyring used to wrap and unwrap account keys, and KMS-backed
// provisioning of master key material.
package service

import (
	"context"

	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	// The returned ciphertext includes the authentication tag appended at the end.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Keyring performs master-key wrapping primitives. It is the only component
// that touches raw master key material; everything above it handles account
// keys and wrapped blobs.
type Keyring interface {
	// GenerateAccountKey returns a fresh cryptographically random account key.
	GenerateAccountKey() ([]byte, error)

	// Wrap seals an account key under the active master key, binding the owning
	// account's identity as AAD. A fresh random nonce is generated per call.
	Wrap(accountKey []byte, accountID string) (cryptoDomain.WrappedKey, error)

	// Unwrap opens a wrapped account key using the master key it references.
	// Fails with a key-management error if the tag does not verify (corruption
	// or wrong master key) - never silently returns garbage key material.
	Unwrap(wrapped cryptoDomain.WrappedKey, accountID string) ([]byte, error)

	// ActiveMasterKeyID reports which master key new wraps will use.
	ActiveMasterKeyID() string
}

// KMSService opens gocloud.dev secret keepers for master-key provisioning.
type KMSService interface {
	// OpenKeeper opens a keeper for the configured KMS provider.
	// Returns an error if the key URI is invalid or the connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// KMSKeeper is the subset of *gocloud.dev/secrets.Keeper the application uses.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Close() error
}
