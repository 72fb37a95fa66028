// Package domain defines the core cryptographic domain models for account-scoped
// envelope encryption.
//
// It implements a two-tier key hierarchy: Master Key → Account Key → Data.
// Each account owns exactly one data-encryption key, wrapped with a master key
// for at-rest storage. Multiple master keys may be held at once so that old
// wrapped keys remain readable while new wraps use the active key.
package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
)

// MasterKey represents a root symmetric key used to wrap account keys.
//
// Master keys exist only in process memory, are provisioned once at startup,
// and are read-only afterwards, so they may be shared freely across
// goroutines without synchronization.
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyChain manages a collection of master keys with one designated as active.
//
// The chain allows master-key rotation: old keys remain available to unwrap
// existing account keys while new account keys are wrapped with the active key.
// The rotate-master-key maintenance command re-wraps every account key under
// the active master, after which old entries can be dropped from MASTER_KEYS.
//
// Thread safety: uses sync.Map internally for concurrent access.
type MasterKeyChain struct {
	activeID string
	keys     sync.Map
}

// ActiveMasterKeyID returns the ID of the currently active master key.
// The active master key is used to wrap newly created account keys.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Active returns the currently active master key.
func (m *MasterKeyChain) Active() (*MasterKey, bool) {
	return m.Get(m.activeID)
}

// Get retrieves a master key from the chain by its ID. Used to obtain the
// appropriate master key for unwrapping account keys wrapped under older
// masters during rotation.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	if masterKey, ok := m.keys.Load(id); ok {
		return masterKey.(*MasterKey), ok
	}

	return nil, false
}

// Close securely clears all master keys from memory and resets the chain.
// Should be called during application shutdown.
func (m *MasterKeyChain) Close() {
	m.keys.Range(func(key, value interface{}) bool {
		if mk, ok := value.(*MasterKey); ok {
			Zero(mk.Key)
		}
		return true
	})
	m.activeID = ""
	m.keys.Clear()
}

// KeyDecrypter decrypts KMS-protected master key material at startup.
// *gocloud.dev/secrets.Keeper satisfies this interface.
type KeyDecrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// LoadMasterKeyChain loads master keys from environment variables.
//
// Two environment variables are read:
//   - MASTER_KEYS: comma-separated list of entries in format "id:base64key"
//   - ACTIVE_MASTER_KEY_ID: ID of the key used to wrap new account keys
//
// When decrypter is non-nil (KMS mode), each base64-decoded entry is KMS
// ciphertext that is decrypted through the keeper before use; otherwise the
// decoded bytes are the raw key material. Every key must be exactly 32 bytes
// after decryption.
//
// Absence of a valid master key configuration is a fatal startup condition:
// all returned errors wrap ErrKeyManagement and the caller is expected to
// abort the process rather than continue without encryption.
func LoadMasterKeyChain(ctx context.Context, decrypter KeyDecrypter) (*MasterKeyChain, error) {
	raw := os.Getenv("MASTER_KEYS")
	if raw == "" {
		return nil, ErrMasterKeysNotSet
	}

	active := os.Getenv("ACTIVE_MASTER_KEY_ID")
	if active == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	mkc := &MasterKeyChain{activeID: active}

	parts := strings.SplitSeq(raw, ",")
	for part := range parts {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			mkc.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, part)
		}
		id := p[0]
		key, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			mkc.Close()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
		}

		if decrypter != nil {
			plaintext, err := decrypter.Decrypt(ctx, key)
			if err != nil {
				mkc.Close()
				return nil, fmt.Errorf("%w: kms decrypt for %s: %v", ErrUnwrapFailed, id, err)
			}
			key = plaintext
		}

		if len(key) != KeySize {
			Zero(key)
			mkc.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be %d bytes, got %d",
				ErrInvalidMasterKeySize,
				id,
				KeySize,
				len(key),
			)
		}
		mkc.keys.Store(id, &MasterKey{ID: id, Key: key})
	}

	if _, ok := mkc.Get(active); !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", ErrActiveMasterKeyNotFound, active)
	}

	return mkc, nil
}
