package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	cryptoService "github.com/guardvault/guardvault/internal/crypto/service"
	cryptoUsecase "github.com/guardvault/guardvault/internal/crypto/usecase"
)

// contentUseCase implements ContentUseCase.
type contentUseCase struct {
	recordRepo  RecordRepository
	accountRepo AccountGetter
	keyStore    cryptoUsecase.AccountKeyStore
	aeadManager cryptoService.AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewContentUseCase creates a new content use case instance.
func NewContentUseCase(
	recordRepo RecordRepository,
	accountRepo AccountGetter,
	keyStore cryptoUsecase.AccountKeyStore,
	aeadManager cryptoService.AEADManager,
	algorithm cryptoDomain.Algorithm,
) ContentUseCase {
	return &contentUseCase{
		recordRepo:  recordRepo,
		accountRepo: accountRepo,
		keyStore:    keyStore,
		aeadManager: aeadManager,
		algorithm:   algorithm,
	}
}

// accountCipher fetches the account's key and builds its content cipher.
// Suspended accounts are refused before any key material is touched.
func (c *contentUseCase) accountCipher(ctx context.Context, accountID uuid.UUID) (cryptoService.AEAD, error) {
	account, err := c.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, accountDomain.ErrAccountSuspended
	}

	key, err := c.keyStore.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	return c.aeadManager.CreateCipher(key, c.algorithm)
}

// EncryptForAccount encrypts plaintext under the account's key with the
// account ID as AAD and a fresh random nonce. The sealed output is split at
// the tag boundary so ciphertext, nonce, and tag persist as separate columns.
func (c *contentUseCase) EncryptForAccount(
	ctx context.Context,
	accountID uuid.UUID,
	plaintext []byte,
) (*contentDomain.Record, error) {
	cipher, err := c.accountCipher(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sealed, nonce, err := cipher.Encrypt(plaintext, []byte(accountID.String()))
	if err != nil {
		return nil, err
	}

	split := len(sealed) - cryptoDomain.TagSize
	return &contentDomain.Record{
		AccountID:  accountID,
		Ciphertext: sealed[:split],
		Nonce:      nonce,
		Tag:        sealed[split:],
	}, nil
}

// DecryptForAccount decrypts a record's payload with the account's key.
//
// A missing or wrong-length nonce or tag is rejected before the cipher runs;
// tag verification failure maps to ErrRecordDecryptionFailed regardless of
// cause, so tampering and cross-account misuse are indistinguishable.
func (c *contentUseCase) DecryptForAccount(
	ctx context.Context,
	accountID uuid.UUID,
	record *contentDomain.Record,
) ([]byte, error) {
	if len(record.Nonce) != cryptoDomain.NonceSize || len(record.Tag) != cryptoDomain.TagSize {
		return nil, contentDomain.ErrRecordDecryptionFailed
	}
	if len(record.Ciphertext) == 0 {
		return nil, contentDomain.ErrRecordDecryptionFailed
	}

	cipher, err := c.accountCipher(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(record.Ciphertext)+len(record.Tag))
	sealed = append(sealed, record.Ciphertext...)
	sealed = append(sealed, record.Tag...)

	plaintext, err := cipher.Decrypt(sealed, record.Nonce, []byte(accountID.String()))
	if err != nil {
		return nil, contentDomain.ErrRecordDecryptionFailed
	}

	return plaintext, nil
}

// Store encrypts and persists a payload for the account.
func (c *contentUseCase) Store(
	ctx context.Context,
	accountID uuid.UUID,
	kind string,
	plaintext []byte,
) (*contentDomain.Record, error) {
	record, err := c.EncryptForAccount(ctx, accountID, plaintext)
	if err != nil {
		return nil, err
	}

	record.ID = uuid.Must(uuid.NewV7())
	record.Kind = kind
	record.CreatedAt = time.Now().UTC()

	if err := c.recordRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Get retrieves and decrypts a record owned by the account.
func (c *contentUseCase) Get(
	ctx context.Context,
	accountID, recordID uuid.UUID,
) (*contentDomain.Record, error) {
	record, err := c.recordRepo.Get(ctx, accountID, recordID)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.DecryptForAccount(ctx, accountID, record)
	if err != nil {
		return nil, err
	}

	record.Plaintext = plaintext
	return record, nil
}

// List returns record metadata for the account, newest first.
func (c *contentUseCase) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*contentDomain.Record, error) {
	return c.recordRepo.ListByAccount(ctx, accountID, offset, limit)
}
