package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	"github.com/guardvault/guardvault/internal/testutil"
)

func TestMySQLEventRepository_CreateAndList(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLEventRepository(db)
	ctx := context.Background()

	accountID := testutil.CreateTestAccount(t, db, "mysql", "audit-mysql")

	base := time.Now().UTC().Truncate(time.Second)
	attributed := newStoredEvent(&accountID, auditDomain.EventAuthSucceeded, base)
	anonymous := newStoredEvent(nil, auditDomain.EventAuthFailed, base.Add(-time.Hour))
	anonymous.Metadata = nil

	require.NoError(t, repo.Create(ctx, attributed))
	require.NoError(t, repo.Create(ctx, anonymous))

	t.Run("round trips binary uuids and fields", func(t *testing.T) {
		events, err := repo.List(ctx, &accountID, 0, 50, nil, nil)
		require.NoError(t, err)
		require.Len(t, events, 1)

		got := events[0]
		assert.Equal(t, attributed.ID, got.ID)
		require.NotNil(t, got.AccountID)
		assert.Equal(t, accountID, *got.AccountID)
		assert.Equal(t, auditDomain.EventAuthSucceeded, got.EventType)
		assert.Equal(t, "gv_AbCdEfGhI", got.Metadata["api_key_prefix"])
		assert.Equal(t, attributed.Signature, got.Signature)
	})

	t.Run("nil account id round trips as nil", func(t *testing.T) {
		events, err := repo.List(ctx, nil, 0, 50, nil, nil)
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, attributed.ID, events[0].ID)
		assert.Nil(t, events[1].AccountID)
		assert.Nil(t, events[1].Metadata)
	})

	t.Run("time filter applies", func(t *testing.T) {
		from := base.Add(-30 * time.Minute)
		events, err := repo.List(ctx, nil, 0, 50, &from, nil)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, attributed.ID, events[0].ID)
	})

	t.Run("unknown account yields empty slice", func(t *testing.T) {
		unknown := uuid.Must(uuid.NewV7())
		events, err := repo.List(ctx, &unknown, 0, 50, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}
