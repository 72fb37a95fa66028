// Package usecase implements business logic orchestration for account operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	cryptoUsecase "github.com/guardvault/guardvault/internal/crypto/usecase"
)

// AccountRepository defines persistence operations for accounts. It also
// serves the key store's wrapped-key access, so the wrapped key lives in the
// account row and has no separate lifecycle.
type AccountRepository interface {
	cryptoUsecase.WrappedKeyRepository

	Create(ctx context.Context, account *accountDomain.Account) error
	Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status accountDomain.Status, updatedAt time.Time) error
	// List retrieves accounts ordered by created_at ascending so rotation
	// sweeps visit accounts in a stable order.
	List(ctx context.Context, offset, limit int) ([]*accountDomain.Account, error)
}

// APIKeyIssuer issues the bootstrap API key during account creation.
// Satisfied by the API key usecase.
type APIKeyIssuer interface {
	Issue(ctx context.Context, input *apikeyDomain.IssueAPIKeyInput) (*apikeyDomain.IssueAPIKeyOutput, error)
}

// RotateResult summarizes a master-key rotation sweep.
type RotateResult struct {
	Scanned int
	Rotated int
	Skipped int
}

// AccountUseCase manages the account lifecycle.
type AccountUseCase interface {
	// Create provisions a new account: generates and wraps its data key,
	// persists the account, and issues its first API key, all in one
	// transaction. The first key's plaintext appears only in the output.
	Create(ctx context.Context, input *accountDomain.CreateAccountInput) (*accountDomain.CreateAccountOutput, error)
	Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error)
	List(ctx context.Context, offset, limit int) ([]*accountDomain.Account, error)
	// Suspend blocks authentication and cryptographic operations for the
	// account and evicts its cached key material. Idempotent.
	Suspend(ctx context.Context, id uuid.UUID) error
	// Activate reverses a suspension. Idempotent.
	Activate(ctx context.Context, id uuid.UUID) error
	// RotateMasterKeys re-wraps every account key under the active master
	// key, one transaction per account. Already-rotated accounts are
	// skipped, so an interrupted sweep can simply be rerun.
	RotateMasterKeys(ctx context.Context) (*RotateResult, error)
}
