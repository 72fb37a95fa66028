package repository

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/testutil"
)

func newStoredAccount(t *testing.T, name string) *accountDomain.Account {
	t.Helper()

	ciphertext := make([]byte, 32)
	nonce := make([]byte, 12)
	tag := make([]byte, 16)
	for _, b := range [][]byte{ciphertext, nonce, tag} {
		_, err := rand.Read(b)
		require.NoError(t, err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	return &accountDomain.Account{
		ID:     uuid.Must(uuid.NewV7()),
		Name:   name,
		Status: accountDomain.StatusActive,
		WrappedKey: cryptoDomain.WrappedKey{
			MasterKeyID: "v1",
			Ciphertext:  ciphertext,
			Nonce:       nonce,
			Tag:         tag,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgreSQLAccountRepository(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAccountRepository(db)
	ctx := context.Background()

	t.Run("create and get round trips the wrapped key", func(t *testing.T) {
		account := newStoredAccount(t, "acme")
		require.NoError(t, repo.Create(ctx, account))

		got, err := repo.Get(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.Name, got.Name)
		assert.Equal(t, accountDomain.StatusActive, got.Status)
		assert.Equal(t, account.WrappedKey, got.WrappedKey)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		account := newStoredAccount(t, "status-test")
		require.NoError(t, repo.Create(ctx, account))

		err := repo.UpdateStatus(ctx, account.ID, accountDomain.StatusSuspended, time.Now().UTC())
		require.NoError(t, err)

		got, err := repo.Get(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, accountDomain.StatusSuspended, got.Status)
	})

	t.Run("update status on unknown account is not found", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, uuid.Must(uuid.NewV7()), accountDomain.StatusSuspended, time.Now().UTC())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("wrapped key reads and rotation rewrites", func(t *testing.T) {
		account := newStoredAccount(t, "rotation-test")
		require.NoError(t, repo.Create(ctx, account))

		wrapped, err := repo.GetWrappedKey(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.WrappedKey, wrapped)

		rewrapped := newStoredAccount(t, "ignored").WrappedKey
		rewrapped.MasterKeyID = "v2"
		require.NoError(t, repo.UpdateWrappedKey(ctx, account.ID, rewrapped))

		got, err := repo.GetWrappedKey(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, rewrapped, got)
	})

	t.Run("wrapped key for unknown account is not found", func(t *testing.T) {
		_, err := repo.GetWrappedKey(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("list pages in creation order", func(t *testing.T) {
		accounts, err := repo.List(ctx, 0, 100)
		require.NoError(t, err)
		require.NotEmpty(t, accounts)
		for i := 1; i < len(accounts); i++ {
			assert.False(t, accounts[i].CreatedAt.Before(accounts[i-1].CreatedAt))
		}
	})
}

func TestPostgreSQLAccountRepositoryStorageFailure(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	require.NoError(t, db.Close())

	repo := NewPostgreSQLAccountRepository(db)

	_, err := repo.List(context.Background(), 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
