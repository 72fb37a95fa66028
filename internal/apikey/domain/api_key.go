// Package domain defines API key domain models.
//
// API keys are the only credential type: a 256-bit random secret rendered as
// "gv_<base64url>". Only an Argon2id hash of the secret is stored, alongside
// a short deterministic prefix that allows indexed lookup without comparing
// the slow hash against every row.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SecretLabel prefixes every rendered API key secret.
	SecretLabel = "gv_"

	// SecretBytes is the entropy of the random secret (256 bits).
	SecretBytes = 32

	// PrefixLength is the number of leading characters of the rendered
	// secret stored in clear for indexed lookup. Covers the label plus nine
	// base64url characters, enough to make collisions rare while revealing
	// none of the secret's effective entropy.
	PrefixLength = 12
)

// APIKey represents a stored API key credential. The plaintext secret is
// never persisted; Prefix and SecretHash are the only stored derivatives.
type APIKey struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Prefix    string
	SecretHash string
	// LastUsedAt tracks the most recent successful validation. Updated
	// asynchronously, so it is a floor, not an exact timestamp.
	LastUsedAt *time.Time
	// RevokedAt is nil while the key is active. Once set the key is revoked
	// permanently; there is no un-revoke transition.
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsRevoked reports whether the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// Revoke marks the key revoked at the given time. Revocation is terminal:
// calling Revoke on an already revoked key keeps the original timestamp.
func (k *APIKey) Revoke(at time.Time) {
	if k.RevokedAt != nil {
		return
	}
	k.RevokedAt = &at
}

// IssueAPIKeyInput contains the parameters for issuing a new API key.
type IssueAPIKeyInput struct {
	AccountID uuid.UUID
	Name      string
}

// IssueAPIKeyOutput contains the result of issuing a new API key.
// SECURITY: PlainKey is returned exactly once and can never be retrieved
// again; only its hash is stored.
type IssueAPIKeyOutput struct {
	ID       uuid.UUID
	Prefix   string
	PlainKey string
}
