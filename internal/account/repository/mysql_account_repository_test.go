package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/testutil"
)

func TestMySQLAccountRepository(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLAccountRepository(db)
	ctx := context.Background()

	t.Run("create and get round trips binary uuid and wrapped key", func(t *testing.T) {
		account := newStoredAccount(t, "acme")
		account.CreatedAt = account.CreatedAt.Truncate(time.Second)
		account.UpdatedAt = account.UpdatedAt.Truncate(time.Second)
		require.NoError(t, repo.Create(ctx, account))

		got, err := repo.Get(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
		assert.Equal(t, account.WrappedKey, got.WrappedKey)
	})

	t.Run("status transition and rotation rewrite", func(t *testing.T) {
		account := newStoredAccount(t, "mysql-rotate")
		require.NoError(t, repo.Create(ctx, account))

		require.NoError(t, repo.UpdateStatus(ctx, account.ID, accountDomain.StatusSuspended, time.Now().UTC()))

		rewrapped := account.WrappedKey
		rewrapped.MasterKeyID = "v2"
		require.NoError(t, repo.UpdateWrappedKey(ctx, account.ID, rewrapped))

		got, err := repo.Get(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, accountDomain.StatusSuspended, got.Status)
		assert.Equal(t, "v2", got.WrappedKey.MasterKeyID)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = repo.GetWrappedKey(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
