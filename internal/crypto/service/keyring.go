package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
)

// KeyringService implements Keyring on top of a MasterKeyChain.
//
// Wrap always uses the chain's active master key; Unwrap looks up the master
// key recorded in the wrapped blob, so account keys wrapped before a
// master-key rotation stay readable until the rotate-master-key command
// re-wraps them. The account ID is bound as AAD on both sides, so a wrapped
// key copied onto another account row fails tag verification.
type KeyringService struct {
	chain       *cryptoDomain.MasterKeyChain
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewKeyring creates a KeyringService using the given master key chain.
// Wrapping always uses AES-256-GCM regardless of the content algorithm; the
// wrapped blob format is independent of what the account key later encrypts.
func NewKeyring(chain *cryptoDomain.MasterKeyChain, aeadManager AEADManager) *KeyringService {
	return &KeyringService{
		chain:       chain,
		aeadManager: aeadManager,
		algorithm:   cryptoDomain.AESGCM,
	}
}

// GenerateAccountKey returns a fresh cryptographically random 32-byte key.
func (k *KeyringService) GenerateAccountKey() ([]byte, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}
	return key, nil
}

// ActiveMasterKeyID reports which master key new wraps will use.
func (k *KeyringService) ActiveMasterKeyID() string {
	return k.chain.ActiveMasterKeyID()
}

// Wrap seals an account key under the active master key with the account ID
// as AAD. The sealed output is split at the tag boundary so ciphertext, nonce,
// and tag persist as separate columns and a missing piece is detectable before
// the cipher runs.
func (k *KeyringService) Wrap(accountKey []byte, accountID string) (cryptoDomain.WrappedKey, error) {
	if len(accountKey) != cryptoDomain.KeySize {
		return cryptoDomain.WrappedKey{}, cryptoDomain.ErrInvalidKeySize
	}

	master, ok := k.chain.Active()
	if !ok {
		return cryptoDomain.WrappedKey{}, cryptoDomain.ErrActiveMasterKeyNotFound
	}

	aead, err := k.aeadManager.CreateCipher(master.Key, k.algorithm)
	if err != nil {
		return cryptoDomain.WrappedKey{}, err
	}

	sealed, nonce, err := aead.Encrypt(accountKey, []byte(accountID))
	if err != nil {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("failed to wrap account key: %w", err)
	}

	// tag is the trailing 16 bytes of the sealed output
	split := len(sealed) - cryptoDomain.TagSize
	return cryptoDomain.WrappedKey{
		MasterKeyID: master.ID,
		Ciphertext:  sealed[:split],
		Nonce:       nonce,
		Tag:         sealed[split:],
	}, nil
}

// Unwrap opens a wrapped account key using the master key it references.
//
// Returns ErrMasterKeyNotFound when the referenced master key is absent from
// the chain and ErrUnwrapFailed when tag verification fails - both wrap the
// key-management error category and are never retried.
func (k *KeyringService) Unwrap(wrapped cryptoDomain.WrappedKey, accountID string) ([]byte, error) {
	if err := wrapped.Validate(); err != nil {
		return nil, err
	}

	master, ok := k.chain.Get(wrapped.MasterKeyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrMasterKeyNotFound, wrapped.MasterKeyID)
	}

	aead, err := k.aeadManager.CreateCipher(master.Key, k.algorithm)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(wrapped.Ciphertext)+len(wrapped.Tag))
	sealed = append(sealed, wrapped.Ciphertext...)
	sealed = append(sealed, wrapped.Tag...)

	accountKey, err := aead.Decrypt(sealed, wrapped.Nonce, []byte(accountID))
	if err != nil {
		return nil, cryptoDomain.ErrUnwrapFailed
	}

	if len(accountKey) != cryptoDomain.KeySize {
		cryptoDomain.Zero(accountKey)
		return nil, cryptoDomain.ErrUnwrapFailed
	}

	return accountKey, nil
}
