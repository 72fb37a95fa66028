package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	"github.com/guardvault/guardvault/internal/database"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// MySQLAPIKeyRepository implements API key persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// NewMySQLAPIKeyRepository creates a new MySQL API key repository.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}

// Create inserts a new API key using BINARY(16) for UUIDs. A duplicate prefix
// surfaces as an error wrapping ErrConflict.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	accountID, err := apiKey.AccountID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key account_id")
	}

	query := `INSERT INTO api_keys (id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		accountID,
		apiKey.Name,
		apiKey.Prefix,
		apiKey.SecretHash,
		apiKey.LastUsedAt,
		apiKey.RevokedAt,
		apiKey.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "api key prefix already exists")
		}
		return database.WrapStorageError(err, "failed to create api key")
	}

	return nil
}

// Get retrieves an API key by ID. Returns ErrAPIKeyNotFound if it doesn't exist.
func (m *MySQLAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `SELECT id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at
			  FROM api_keys WHERE id = ?`

	return m.scanOne(querier.QueryRowContext(ctx, query, idBinary))
}

// GetByPrefix retrieves an API key by its unique prefix.
// Returns ErrAPIKeyNotFound for unknown prefixes.
func (m *MySQLAPIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at
			  FROM api_keys WHERE prefix = ?`

	return m.scanOne(querier.QueryRowContext(ctx, query, prefix))
}

// ListByAccount retrieves an account's API keys ordered by created_at
// descending with pagination.
func (m *MySQLAPIKeyRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	accountIDBinary, err := accountID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key account_id")
	}

	query := `SELECT id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at
			  FROM api_keys
			  WHERE account_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, accountIDBinary, limit, offset)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	apiKeys := make([]*apikeyDomain.APIKey, 0)
	for rows.Next() {
		var apiKey apikeyDomain.APIKey
		var idBinary, accountBinary []byte

		err := rows.Scan(
			&idBinary,
			&accountBinary,
			&apiKey.Name,
			&apiKey.Prefix,
			&apiKey.SecretHash,
			&apiKey.LastUsedAt,
			&apiKey.RevokedAt,
			&apiKey.CreatedAt,
		)
		if err != nil {
			return nil, database.WrapStorageError(err, "failed to scan api key")
		}

		if err := apiKey.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
		}
		if err := apiKey.AccountID.UnmarshalBinary(accountBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal api key account_id")
		}

		apiKeys = append(apiKeys, &apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate api keys")
	}

	return apiKeys, nil
}

// Revoke sets revoked_at only when it is currently NULL.
func (m *MySQLAPIKeyRepository) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`

	_, err = querier.ExecContext(ctx, query, revokedAt, idBinary)
	if err != nil {
		return database.WrapStorageError(err, "failed to revoke api key")
	}

	return nil
}

// UpdateLastUsed bumps last_used_at, advancing it monotonically.
func (m *MySQLAPIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET last_used_at = ?
			  WHERE id = ? AND (last_used_at IS NULL OR last_used_at < ?)`

	_, err = querier.ExecContext(ctx, query, usedAt, idBinary, usedAt)
	if err != nil {
		return database.WrapStorageError(err, "failed to update api key last_used_at")
	}

	return nil
}

func (m *MySQLAPIKeyRepository) scanOne(row *sql.Row) (*apikeyDomain.APIKey, error) {
	var apiKey apikeyDomain.APIKey
	var idBinary, accountBinary []byte

	err := row.Scan(
		&idBinary,
		&accountBinary,
		&apiKey.Name,
		&apiKey.Prefix,
		&apiKey.SecretHash,
		&apiKey.LastUsedAt,
		&apiKey.RevokedAt,
		&apiKey.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apikeyDomain.ErrAPIKeyNotFound
		}
		return nil, database.WrapStorageError(err, "failed to get api key")
	}

	if err := apiKey.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
	}
	if err := apiKey.AccountID.UnmarshalBinary(accountBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key account_id")
	}

	return &apiKey, nil
}
