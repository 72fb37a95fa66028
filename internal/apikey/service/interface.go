// Package service provides API key secret generation and hashing.
package service

// KeyService generates, hashes, and verifies API key secrets.
type KeyService interface {
	// GenerateKey creates a new random secret rendered "gv_<base64url>" and
	// returns the plaintext, its lookup prefix, and its Argon2id hash.
	GenerateKey() (plainKey, prefix, keyHash string, err error)
	// Prefix derives the lookup prefix from a presented key. Returns false
	// when the presented value is too short or does not carry the label.
	Prefix(presented string) (string, bool)
	// HashKey hashes a plaintext key with Argon2id.
	HashKey(plainKey string) (string, error)
	// CompareKey verifies a plaintext key against a stored hash in constant
	// time. Any comparison failure reads as a mismatch.
	CompareKey(plainKey, keyHash string) bool
}
