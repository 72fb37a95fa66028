package domain

// WrappedKey is the at-rest form of an account's data-encryption key: the key
// material sealed under a master key. The nonce is not secret but must never
// repeat under the same master key; the tag authenticates both the key
// material and the owning account's identity (bound as AAD during wrapping).
type WrappedKey struct {
	// MasterKeyID identifies which master key performed the wrap.
	MasterKeyID string
	// Ciphertext is the encrypted account key, without the tag.
	Ciphertext []byte
	// Nonce is the random value generated for this wrap operation.
	Nonce []byte
	// Tag is the 16-byte AEAD authentication tag.
	Tag []byte
}

// Validate checks the structural integrity of a wrapped key. A wrapped key
// with a missing or wrong-length nonce or tag is treated as corrupt and must
// fail unwrapping rather than reach the cipher.
func (w *WrappedKey) Validate() error {
	if w.MasterKeyID == "" {
		return ErrMalformedWrappedKey
	}
	if len(w.Nonce) != NonceSize {
		return ErrMalformedWrappedKey
	}
	if len(w.Tag) != TagSize {
		return ErrMalformedWrappedKey
	}
	if len(w.Ciphertext) == 0 {
		return ErrMalformedWrappedKey
	}
	return nil
}
