package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	"github.com/guardvault/guardvault/internal/testutil"
)

func TestMySQLContentRepository(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLContentRepository(db)
	ctx := context.Background()
	accountID := testutil.CreateTestAccount(t, db, "mysql", "content-owner")

	t.Run("create and get round trips binary uuid and payload", func(t *testing.T) {
		record := newStoredRecord(t, accountID, "analysis")
		record.CreatedAt = record.CreatedAt.Truncate(time.Second)
		require.NoError(t, repo.Create(ctx, record))

		got, err := repo.Get(ctx, accountID, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, record.AccountID, got.AccountID)
		assert.Equal(t, record.Ciphertext, got.Ciphertext)
		assert.Equal(t, record.Tag, got.Tag)
	})

	t.Run("record owned by another account is not found", func(t *testing.T) {
		otherID := testutil.CreateTestAccount(t, db, "mysql", "content-other")
		record := newStoredRecord(t, accountID, "analysis")
		record.CreatedAt = record.CreatedAt.Truncate(time.Second)
		require.NoError(t, repo.Create(ctx, record))

		_, err := repo.Get(ctx, otherID, record.ID)
		assert.ErrorIs(t, err, contentDomain.ErrRecordNotFound)
	})

	t.Run("unknown record is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, accountID, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, contentDomain.ErrRecordNotFound)
	})
}
