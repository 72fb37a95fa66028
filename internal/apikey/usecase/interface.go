// Package usecase implements business logic orchestration for API key operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
)

// APIKeyRepository defines persistence operations for API keys.
type APIKeyRepository interface {
	// Create persists a new API key. Returns an error wrapping ErrConflict
	// when the prefix collides with an existing key.
	Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error
	Get(ctx context.Context, id uuid.UUID) (*apikeyDomain.APIKey, error)
	// GetByPrefix retrieves a key by its unique lookup prefix. Returns an
	// error wrapping ErrNotFound for unknown prefixes.
	GetByPrefix(ctx context.Context, prefix string) (*apikeyDomain.APIKey, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*apikeyDomain.APIKey, error)
	// Revoke sets revoked_at if and only if it is currently NULL, keeping
	// revocation terminal even under concurrent revoke attempts.
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

// AccountGetter is the slice of account persistence the API key flows need.
type AccountGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error)
}

// RevokeAPIKeyInput describes a revocation request. AuthenticatedKeyID is the
// key that authenticated the caller (uuid.Nil for administrative commands);
// revoking that key is refused unless Force is set.
type RevokeAPIKeyInput struct {
	KeyID               uuid.UUID
	RequestingAccountID uuid.UUID
	AuthenticatedKeyID  uuid.UUID
	Force               bool
}

// APIKeyUseCase manages the API key lifecycle and credential validation.
type APIKeyUseCase interface {
	// Issue creates a new API key for an active account. The plaintext
	// secret appears only in the returned output.
	Issue(ctx context.Context, input *apikeyDomain.IssueAPIKeyInput) (*apikeyDomain.IssueAPIKeyOutput, error)
	// Validate resolves a presented credential to its account. All rejection
	// paths return ErrInvalidCredentials so callers cannot distinguish
	// unknown, revoked, and suspended credentials.
	Validate(ctx context.Context, presented string) (*accountDomain.Account, *apikeyDomain.APIKey, error)
	// Revoke permanently revokes a key owned by the requesting account.
	Revoke(ctx context.Context, input *RevokeAPIKeyInput) error
	// List returns key metadata for an account, newest first. Secret hashes
	// are stripped from the result.
	List(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*apikeyDomain.APIKey, error)
}
