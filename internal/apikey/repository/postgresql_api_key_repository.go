// Package repository provides database persistence for API keys.
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

// PostgreSQLAPIKeyRepository implements API key persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL API key repository.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}

// Create inserts a new API key. A duplicate prefix surfaces as an error
// wrapping ErrConflict so the caller can regenerate and retry.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, apiKey *apikeyDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		apiKey.ID,
		apiKey.AccountID,
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
func (p *PostgreSQLAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at
			  FROM api_keys WHERE id = $1`

	return p.scanOne(querier.QueryRowContext(ctx, query, id))
}

// GetByPrefix retrieves an API key by its unique prefix. The prefix column is
// uniquely indexed so the credential path is a single indexed lookup. Returns
// ErrAPIKeyNotFound for unknown prefixes.
func (p *PostgreSQLAPIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at
			  FROM api_keys WHERE prefix = $1`

	return p.scanOne(querier.QueryRowContext(ctx, query, prefix))
}

// ListByAccount retrieves an account's API keys ordered by created_at
// descending with pagination. Returns an empty slice if none exist.
func (p *PostgreSQLAPIKeyRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*apikeyDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, account_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at
			  FROM api_keys
			  WHERE account_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	apiKeys := make([]*apikeyDomain.APIKey, 0)
	for rows.Next() {
		var apiKey apikeyDomain.APIKey
		err := rows.Scan(
			&apiKey.ID,
			&apiKey.AccountID,
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
		apiKeys = append(apiKeys, &apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate api keys")
	}

	return apiKeys, nil
}

// Revoke sets revoked_at only when it is currently NULL, keeping revocation
// terminal even when two revocations race.
func (p *PostgreSQLAPIKeyRepository) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`

	_, err := querier.ExecContext(ctx, query, revokedAt, id)
	if err != nil {
		return database.WrapStorageError(err, "failed to revoke api key")
	}

	return nil
}

// UpdateLastUsed bumps last_used_at, advancing it monotonically.
func (p *PostgreSQLAPIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET last_used_at = $1
			  WHERE id = $2 AND (last_used_at IS NULL OR last_used_at < $1)`

	_, err := querier.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return database.WrapStorageError(err, "failed to update api key last_used_at")
	}

	return nil
}

func (p *PostgreSQLAPIKeyRepository) scanOne(row *sql.Row) (*apikeyDomain.APIKey, error) {
	var apiKey apikeyDomain.APIKey

	err := row.Scan(
		&apiKey.ID,
		&apiKey.AccountID,
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

	return &apiKey, nil
}
