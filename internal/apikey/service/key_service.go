package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/allisson/go-pwdhash"

	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// keyService implements KeyService using Argon2id for secret hashing.
type keyService struct {
	hasher *pwdhash.PasswordHasher
}

// NewKeyService creates a KeyService with the named Argon2id policy
// ("interactive", "moderate", or "sensitive"). Unknown names fall back to
// the moderate policy.
func NewKeyService(policyName string) KeyService {
	var policy pwdhash.Policy
	switch strings.ToLower(policyName) {
	case "interactive":
		policy = pwdhash.PolicyInteractive
	case "sensitive":
		policy = pwdhash.PolicySensitive
	default:
		policy = pwdhash.PolicyModerate
	}

	hasher, err := pwdhash.New(pwdhash.WithPolicy(policy))
	if err != nil {
		// This should never happen with a valid policy
		panic(err)
	}

	return &keyService{hasher: hasher}
}

// GenerateKey creates a new cryptographically secure 32-byte random secret,
// rendered as "gv_" plus its base64url encoding. Returns the plaintext, the
// lookup prefix, and the Argon2id hash of the full plaintext.
func (k *keyService) GenerateKey() (string, string, string, error) {
	randomBytes := make([]byte, apikeyDomain.SecretBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to generate random api key")
	}

	plainKey := apikeyDomain.SecretLabel + base64.RawURLEncoding.EncodeToString(randomBytes)

	prefix, ok := k.Prefix(plainKey)
	if !ok {
		return "", "", "", apperrors.New("generated api key shorter than prefix length")
	}

	keyHash, err := k.HashKey(plainKey)
	if err != nil {
		return "", "", "", err
	}

	return plainKey, prefix, keyHash, nil
}

// Prefix derives the lookup prefix: the first PrefixLength characters of the
// rendered key. The label must be present, so malformed credentials are
// rejected before any database access.
func (k *keyService) Prefix(presented string) (string, bool) {
	if !strings.HasPrefix(presented, apikeyDomain.SecretLabel) {
		return "", false
	}
	if len(presented) < apikeyDomain.PrefixLength {
		return "", false
	}
	return presented[:apikeyDomain.PrefixLength], true
}

// HashKey hashes a plaintext key using Argon2id.
func (k *keyService) HashKey(plainKey string) (string, error) {
	keyHash, err := k.hasher.Hash([]byte(plainKey))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api key")
	}
	return keyHash, nil
}

// CompareKey performs a constant-time comparison between a plaintext key and
// its stored hash.
func (k *keyService) CompareKey(plainKey, keyHash string) bool {
	ok, err := k.hasher.Verify([]byte(plainKey), keyHash)
	if err != nil {
		return false
	}
	return ok
}
