package domain

import (
	"github.com/guardvault/guardvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	// Master keys and account keys must be exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMasterKeysNotSet indicates the MASTER_KEYS environment variable is missing.
	// This is a fatal startup condition.
	ErrMasterKeysNotSet = errors.Wrap(errors.ErrKeyManagement, "MASTER_KEYS not set")

	// ErrActiveMasterKeyIDNotSet indicates ACTIVE_MASTER_KEY_ID is missing.
	ErrActiveMasterKeyIDNotSet = errors.Wrap(errors.ErrKeyManagement, "ACTIVE_MASTER_KEY_ID not set")

	// ErrInvalidMasterKeysFormat indicates MASTER_KEYS entries are not "id:base64key".
	ErrInvalidMasterKeysFormat = errors.Wrap(errors.ErrKeyManagement, "invalid MASTER_KEYS format")

	// ErrInvalidMasterKeyBase64 indicates base64 decoding of a master key failed.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrKeyManagement, "invalid master key base64")

	// ErrInvalidMasterKeySize indicates a configured master key is not
	// KeySize bytes after decoding and decryption.
	ErrInvalidMasterKeySize = errors.Wrap(errors.ErrKeyManagement, "invalid master key size")

	// ErrActiveMasterKeyNotFound indicates the active key ID is not in the keyring.
	ErrActiveMasterKeyNotFound = errors.Wrap(errors.ErrKeyManagement, "active master key not found")

	// ErrMasterKeyNotFound indicates a wrapped key references a master key that
	// is no longer in the keyring. The account's wrapped key cannot be unwrapped
	// until the referenced master key is restored or the key is re-wrapped.
	ErrMasterKeyNotFound = errors.Wrap(errors.ErrKeyManagement, "master key not found")

	// ErrUnwrapFailed indicates the authentication tag did not verify while
	// unwrapping an account key (corrupted data or wrong master key). This must
	// never silently return garbage key material and is never retried.
	ErrUnwrapFailed = errors.Wrap(errors.ErrKeyManagement, "account key unwrap failed")

	// ErrMalformedWrappedKey indicates a stored wrapped key is structurally
	// invalid (missing nonce or tag, wrong lengths). Treated as corruption.
	ErrMalformedWrappedKey = errors.Wrap(errors.ErrKeyManagement, "malformed wrapped key")
)
