package repository

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/testutil"
)

func newStoredRecord(t *testing.T, accountID uuid.UUID, kind string) *contentDomain.Record {
	t.Helper()

	ciphertext := make([]byte, 64)
	_, err := rand.Read(ciphertext)
	require.NoError(t, err)

	nonce := make([]byte, 12)
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	tag := make([]byte, 16)
	_, err = rand.Read(tag)
	require.NoError(t, err)

	return &contentDomain.Record{
		ID:         uuid.Must(uuid.NewV7()),
		AccountID:  accountID,
		Kind:       kind,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Tag:        tag,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgreSQLContentRepository(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLContentRepository(db)
	ctx := context.Background()
	accountID := testutil.CreateTestAccount(t, db, "postgres", "content-owner")

	t.Run("create and get round trips payload columns", func(t *testing.T) {
		record := newStoredRecord(t, accountID, "analysis")
		require.NoError(t, repo.Create(ctx, record))

		got, err := repo.Get(ctx, accountID, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, record.Ciphertext, got.Ciphertext)
		assert.Equal(t, record.Nonce, got.Nonce)
		assert.Equal(t, record.Tag, got.Tag)
		assert.Equal(t, record.Kind, got.Kind)
	})

	t.Run("unknown record is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, accountID, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, contentDomain.ErrRecordNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("record owned by another account is not found", func(t *testing.T) {
		otherID := testutil.CreateTestAccount(t, db, "postgres", "content-other")
		record := newStoredRecord(t, accountID, "analysis")
		require.NoError(t, repo.Create(ctx, record))

		_, err := repo.Get(ctx, otherID, record.ID)
		assert.ErrorIs(t, err, contentDomain.ErrRecordNotFound)
	})

	t.Run("list returns metadata newest first without payload", func(t *testing.T) {
		listOwner := testutil.CreateTestAccount(t, db, "postgres", "content-list")

		first := newStoredRecord(t, listOwner, "analysis")
		first.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
		require.NoError(t, repo.Create(ctx, first))

		second := newStoredRecord(t, listOwner, "note")
		require.NoError(t, repo.Create(ctx, second))

		records, err := repo.ListByAccount(ctx, listOwner, 0, 10)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, second.ID, records[0].ID)
		assert.Equal(t, first.ID, records[1].ID)
		assert.Nil(t, records[0].Ciphertext)
		assert.Nil(t, records[0].Nonce)
		assert.Nil(t, records[0].Tag)
	})
}
