package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	cryptoService "github.com/guardvault/guardvault/internal/crypto/service"
)

// cacheEntry holds an unwrapped account key until its TTL expires.
type cacheEntry struct {
	key       []byte
	expiresAt time.Time
}

// accountKeyStore implements AccountKeyStore with a per-account TTL cache.
//
// The cache is a sync.Map keyed by account ID so unrelated accounts never
// contend on a shared lock, and a singleflight group coalesces concurrent
// unwraps of the same account into one storage read + one AEAD open. The
// unwrap result is idempotent for a given wrapped blob, so memoization is
// safe without further synchronization.
type accountKeyStore struct {
	keyring cryptoService.Keyring
	repo    WrappedKeyRepository
	ttl     time.Duration

	cache   sync.Map // uuid.UUID -> *cacheEntry
	group   singleflight.Group
	nowFunc func() time.Time
}

// NewAccountKeyStore creates an AccountKeyStore backed by the keyring and the
// wrapped-key repository. ttl bounds how long an unwrapped key is memoized;
// zero disables caching entirely.
func NewAccountKeyStore(
	keyring cryptoService.Keyring,
	repo WrappedKeyRepository,
	ttl time.Duration,
) AccountKeyStore {
	return &accountKeyStore{
		keyring: keyring,
		repo:    repo,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Get returns a copy of the unwrapped data-encryption key for the account.
//
// A missing wrapped key surfaces as the repository's not-found error: key
// creation must have completed and been persisted before any encrypt/decrypt
// against the account can succeed. Unwrap failures (tag mismatch, unknown
// master key) surface as key-management errors and are never retried here.
func (s *accountKeyStore) Get(ctx context.Context, accountID uuid.UUID) ([]byte, error) {
	if entry := s.lookup(accountID); entry != nil {
		return copyKey(entry.key), nil
	}

	// Coalesce concurrent unwraps for the same account. The closure returns
	// the canonical slice; every coalesced waiter receives that same value,
	// so the per-caller copy must happen after Do, not inside it.
	v, err, _ := s.group.Do(accountID.String(), func() (any, error) {
		if entry := s.lookup(accountID); entry != nil {
			return entry.key, nil
		}

		wrapped, err := s.repo.GetWrappedKey(ctx, accountID)
		if err != nil {
			return nil, err
		}

		key, err := s.keyring.Unwrap(wrapped, accountID.String())
		if err != nil {
			return nil, err
		}

		if s.ttl > 0 {
			s.cache.Store(accountID, &cacheEntry{
				key:       key,
				expiresAt: s.nowFunc().Add(s.ttl),
			})
		}

		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return copyKey(v.([]byte)), nil
}

// Create generates a fresh random account key, wraps it under the active
// master key, and returns the wrapped form. The plaintext key is zeroed
// before returning; the first Get for the account unwraps from storage.
func (s *accountKeyStore) Create(ctx context.Context, accountID uuid.UUID) (cryptoDomain.WrappedKey, error) {
	key, err := s.keyring.GenerateAccountKey()
	if err != nil {
		return cryptoDomain.WrappedKey{}, err
	}
	defer cryptoDomain.Zero(key)

	return s.keyring.Wrap(key, accountID.String())
}

// Invalidate evicts the account's cached key.
func (s *accountKeyStore) Invalidate(accountID uuid.UUID) {
	if v, ok := s.cache.LoadAndDelete(accountID); ok {
		cryptoDomain.Zero(v.(*cacheEntry).key)
	}
}

// Close zeroes and drops all cached key material.
func (s *accountKeyStore) Close() {
	s.cache.Range(func(k, v any) bool {
		cryptoDomain.Zero(v.(*cacheEntry).key)
		s.cache.Delete(k)
		return true
	})
}

// lookup returns the live cache entry for the account, evicting expired ones.
func (s *accountKeyStore) lookup(accountID uuid.UUID) *cacheEntry {
	v, ok := s.cache.Load(accountID)
	if !ok {
		return nil
	}

	entry := v.(*cacheEntry)
	if s.nowFunc().After(entry.expiresAt) {
		s.Invalidate(accountID)
		return nil
	}

	return entry
}

// copyKey returns a private copy so callers can zero their slice without
// destroying the cached key.
func copyKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)
	return out
}
