package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	apikeyService "github.com/guardvault/guardvault/internal/apikey/service"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// lastUsedResolution throttles last_used_at writes: a validation only bumps
// the timestamp when the stored value is older than this.
const lastUsedResolution = time.Minute

// bumpTimeout bounds the background last_used_at write.
const bumpTimeout = 5 * time.Second

type apiKeyUseCase struct {
	apiKeyRepo  APIKeyRepository
	accountRepo AccountGetter
	keyService  apikeyService.KeyService
	logger      *slog.Logger
	// maxAttempts bounds the regenerate-and-retry loop on prefix collision.
	maxAttempts int

	// bumpWG tracks in-flight asynchronous last_used_at writes so shutdown
	// and tests can wait for them.
	bumpWG sync.WaitGroup
}

// NewAPIKeyUseCase creates an APIKeyUseCase with the provided dependencies.
func NewAPIKeyUseCase(
	apiKeyRepo APIKeyRepository,
	accountRepo AccountGetter,
	keyService apikeyService.KeyService,
	logger *slog.Logger,
	maxAttempts int,
) APIKeyUseCase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &apiKeyUseCase{
		apiKeyRepo:  apiKeyRepo,
		accountRepo: accountRepo,
		keyService:  keyService,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// Issue generates and persists a new API key for an active account.
//
// The secret is generated server-side, hashed with Argon2id, and stored with
// its lookup prefix. The prefix carries a uniqueness constraint; on a
// collision the whole secret is regenerated and the insert retried a bounded
// number of times. The plaintext is returned exactly once and never stored.
func (a *apiKeyUseCase) Issue(
	ctx context.Context,
	input *apikeyDomain.IssueAPIKeyInput,
) (*apikeyDomain.IssueAPIKeyOutput, error) {
	account, err := a.accountRepo.Get(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, accountDomain.ErrAccountSuspended
	}

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		plainKey, prefix, keyHash, err := a.keyService.GenerateKey()
		if err != nil {
			return nil, err
		}

		apiKey := &apikeyDomain.APIKey{
			ID:         uuid.Must(uuid.NewV7()),
			AccountID:  account.ID,
			Name:       input.Name,
			Prefix:     prefix,
			SecretHash: keyHash,
			CreatedAt:  time.Now().UTC(),
		}

		err = a.apiKeyRepo.Create(ctx, apiKey)
		if err == nil {
			return &apikeyDomain.IssueAPIKeyOutput{
				ID:       apiKey.ID,
				Prefix:   prefix,
				PlainKey: plainKey,
			}, nil
		}
		if !apperrors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}

		a.logger.Warn("api key prefix collision, regenerating", "prefix", prefix, "attempt", attempt+1)
	}

	return nil, apikeyDomain.ErrPrefixExhausted
}

// Validate resolves a presented credential to its account and key.
//
// The prefix is derived from the presented value and used for an indexed
// lookup; the slow Argon2id comparison runs only against the single matching
// row, never against unknown prefixes. Unknown prefix, wrong secret, revoked
// key, missing account, and suspended account all reject with the same
// ErrInvalidCredentials. On success last_used_at is bumped asynchronously;
// a failed bump never fails the validation.
func (a *apiKeyUseCase) Validate(
	ctx context.Context,
	presented string,
) (*accountDomain.Account, *apikeyDomain.APIKey, error) {
	prefix, ok := a.keyService.Prefix(presented)
	if !ok {
		return nil, nil, apikeyDomain.ErrInvalidCredentials
	}

	apiKey, err := a.apiKeyRepo.GetByPrefix(ctx, prefix)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apikeyDomain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if apiKey.IsRevoked() {
		return nil, nil, apikeyDomain.ErrInvalidCredentials
	}

	if !a.keyService.CompareKey(presented, apiKey.SecretHash) {
		return nil, nil, apikeyDomain.ErrInvalidCredentials
	}

	account, err := a.accountRepo.Get(ctx, apiKey.AccountID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apikeyDomain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !account.IsActive() {
		return nil, nil, apikeyDomain.ErrInvalidCredentials
	}

	a.bumpLastUsed(apiKey)

	return account, apiKey, nil
}

// bumpLastUsed updates last_used_at in the background when the stored value
// is stale. Failures are logged and swallowed.
func (a *apiKeyUseCase) bumpLastUsed(apiKey *apikeyDomain.APIKey) {
	now := time.Now().UTC()
	if apiKey.LastUsedAt != nil && now.Sub(*apiKey.LastUsedAt) < lastUsedResolution {
		return
	}

	keyID := apiKey.ID
	a.bumpWG.Add(1)
	go func() {
		defer a.bumpWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), bumpTimeout)
		defer cancel()

		if err := a.apiKeyRepo.UpdateLastUsed(ctx, keyID, now); err != nil {
			a.logger.Debug("failed to bump api key last_used_at", "api_key_id", keyID, "error", err)
		}
	}()
}

// Revoke permanently revokes an API key.
//
// Revocation is one-way: the repository only sets revoked_at when it is
// currently NULL, and revoking an already revoked key is a no-op success.
// Keys of other accounts cannot be revoked, and revoking the key that
// authenticated the current request is refused unless forced.
func (a *apiKeyUseCase) Revoke(ctx context.Context, input *RevokeAPIKeyInput) error {
	apiKey, err := a.apiKeyRepo.Get(ctx, input.KeyID)
	if err != nil {
		return err
	}

	if apiKey.AccountID != input.RequestingAccountID {
		return apikeyDomain.ErrRevokeForbidden
	}

	if apiKey.IsRevoked() {
		return nil
	}

	if !input.Force && input.AuthenticatedKeyID == apiKey.ID {
		return apikeyDomain.ErrSelfRevoke
	}

	return a.apiKeyRepo.Revoke(ctx, apiKey.ID, time.Now().UTC())
}

// List retrieves API key metadata for an account ordered newest first.
// Secret hashes are cleared before return.
func (a *apiKeyUseCase) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*apikeyDomain.APIKey, error) {
	apiKeys, err := a.apiKeyRepo.ListByAccount(ctx, accountID, offset, limit)
	if err != nil {
		return nil, err
	}

	for _, apiKey := range apiKeys {
		apiKey.SecretHash = ""
	}

	return apiKeys, nil
}

// waitForBumps blocks until all in-flight last_used_at writes finish.
func (a *apiKeyUseCase) waitForBumps() {
	a.bumpWG.Wait()
}
