package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	cryptoService "github.com/guardvault/guardvault/internal/crypto/service"
	cryptoUsecase "github.com/guardvault/guardvault/internal/crypto/usecase"
	"github.com/guardvault/guardvault/internal/database"
)

// rotatePageSize is how many accounts a rotation sweep loads per page.
const rotatePageSize = 100

type accountUseCase struct {
	txManager    database.TxManager
	accountRepo  AccountRepository
	keyStore     cryptoUsecase.AccountKeyStore
	keyring      cryptoService.Keyring
	apiKeyIssuer APIKeyIssuer
	recorder     auditUseCase.Recorder
	logger       *slog.Logger
}

// NewAccountUseCase creates an AccountUseCase with the provided dependencies.
func NewAccountUseCase(
	txManager database.TxManager,
	accountRepo AccountRepository,
	keyStore cryptoUsecase.AccountKeyStore,
	keyring cryptoService.Keyring,
	apiKeyIssuer APIKeyIssuer,
	recorder auditUseCase.Recorder,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		keyStore:     keyStore,
		keyring:      keyring,
		apiKeyIssuer: apiKeyIssuer,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create provisions a new account.
//
// A fresh data-encryption key is generated and wrapped under the active
// master key before anything is persisted; the plaintext key never leaves the
// key store. The account row and its first API key are written in a single
// transaction, so a half-created account (key but no credential, or the
// reverse) cannot exist.
func (a *accountUseCase) Create(
	ctx context.Context,
	input *accountDomain.CreateAccountInput,
) (*accountDomain.CreateAccountOutput, error) {
	accountID := uuid.Must(uuid.NewV7())

	wrapped, err := a.keyStore.Create(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &accountDomain.Account{
		ID:         accountID,
		Name:       input.Name,
		Status:     accountDomain.StatusActive,
		WrappedKey: wrapped,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var issued *apikeyDomain.IssueAPIKeyOutput
	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.accountRepo.Create(ctx, account); err != nil {
			return err
		}

		issued, err = a.apiKeyIssuer.Issue(ctx, &apikeyDomain.IssueAPIKeyInput{
			AccountID: accountID,
			Name:      "bootstrap",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	a.recorder.Record(auditUseCase.RecordInput{
		AccountID: &accountID,
		EventType: auditDomain.EventAccountCreated,
		Metadata:  map[string]any{"name": input.Name},
	})
	a.recorder.Record(auditUseCase.RecordInput{
		AccountID: &accountID,
		EventType: auditDomain.EventAPIKeyIssued,
		Metadata:  map[string]any{"api_key_id": issued.ID.String(), "name": "bootstrap"},
	})

	return &accountDomain.CreateAccountOutput{
		ID:          accountID,
		APIKeyID:    issued.ID,
		PlainAPIKey: issued.PlainKey,
	}, nil
}

// Get retrieves an account by ID. Returns ErrAccountNotFound if it doesn't exist.
func (a *accountUseCase) Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error) {
	return a.accountRepo.Get(ctx, id)
}

// List retrieves accounts with pagination.
func (a *accountUseCase) List(ctx context.Context, offset, limit int) ([]*accountDomain.Account, error) {
	return a.accountRepo.List(ctx, offset, limit)
}

// Suspend marks the account suspended and evicts its cached key so no further
// cryptographic operations can use it. Suspending a suspended account is a
// no-op success.
func (a *accountUseCase) Suspend(ctx context.Context, id uuid.UUID) error {
	account, err := a.accountRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if account.Status == accountDomain.StatusSuspended {
		return nil
	}

	if err := a.accountRepo.UpdateStatus(ctx, id, accountDomain.StatusSuspended, time.Now().UTC()); err != nil {
		return err
	}

	a.keyStore.Invalidate(id)
	a.recorder.Record(auditUseCase.RecordInput{
		AccountID: &id,
		EventType: auditDomain.EventAccountSuspended,
	})
	return nil
}

// Activate reverses a suspension. Activating an active account is a no-op
// success.
func (a *accountUseCase) Activate(ctx context.Context, id uuid.UUID) error {
	account, err := a.accountRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if account.Status == accountDomain.StatusActive {
		return nil
	}

	if err := a.accountRepo.UpdateStatus(ctx, id, accountDomain.StatusActive, time.Now().UTC()); err != nil {
		return err
	}

	a.recorder.Record(auditUseCase.RecordInput{
		AccountID: &id,
		EventType: auditDomain.EventAccountActivated,
	})
	return nil
}

// RotateMasterKeys re-wraps every account key under the active master key.
//
// Accounts already wrapped under the active master are skipped, so the sweep
// is restartable after an interruption. Each account's rewrap is its own
// transaction; a failure aborts the sweep and leaves earlier accounts
// rotated, which the next run will skip.
func (a *accountUseCase) RotateMasterKeys(ctx context.Context) (*RotateResult, error) {
	activeID := a.keyring.ActiveMasterKeyID()
	result := &RotateResult{}

	for offset := 0; ; offset += rotatePageSize {
		accounts, err := a.accountRepo.List(ctx, offset, rotatePageSize)
		if err != nil {
			return result, err
		}
		if len(accounts) == 0 {
			return result, nil
		}

		for _, account := range accounts {
			result.Scanned++

			if account.WrappedKey.MasterKeyID == activeID {
				result.Skipped++
				continue
			}

			if err := a.rotateAccount(ctx, account); err != nil {
				return result, err
			}
			result.Rotated++

			a.logger.Info(
				"rotated account key",
				"account_id", account.ID,
				"from_master_key", account.WrappedKey.MasterKeyID,
				"to_master_key", activeID,
			)
		}
	}
}

// rotateAccount unwraps with the old master key and rewraps with the active
// one inside a transaction. The plaintext key is zeroed before returning.
func (a *accountUseCase) rotateAccount(ctx context.Context, account *accountDomain.Account) error {
	accountKey, err := a.keyring.Unwrap(account.WrappedKey, account.ID.String())
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(accountKey)

	rewrapped, err := a.keyring.Wrap(accountKey, account.ID.String())
	if err != nil {
		return err
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		return a.accountRepo.UpdateWrappedKey(ctx, account.ID, rewrapped)
	})
	if err != nil {
		return err
	}

	a.keyStore.Invalidate(account.ID)
	return nil
}
