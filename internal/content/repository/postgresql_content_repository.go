// Package repository provides database persistence for content records.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	"github.com/guardvault/guardvault/internal/database"
)

// PostgreSQLContentRepository implements content record persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLContentRepository struct {
	db *sql.DB
}

// NewPostgreSQLContentRepository creates a new PostgreSQL content repository.
func NewPostgreSQLContentRepository(db *sql.DB) *PostgreSQLContentRepository {
	return &PostgreSQLContentRepository{db: db}
}

// Create inserts a new content record with its ciphertext, nonce, and tag.
func (p *PostgreSQLContentRepository) Create(ctx context.Context, record *contentDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO content_records (id, account_id, kind, ciphertext, nonce, tag, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.AccountID,
		record.Kind,
		record.Ciphertext,
		record.Nonce,
		record.Tag,
		record.CreatedAt,
	)
	if err != nil {
		return database.WrapStorageError(err, "failed to create content record")
	}

	return nil
}

// Get retrieves a record by ID scoped to the owning account. Records owned by
// other accounts are indistinguishable from records that do not exist.
func (p *PostgreSQLContentRepository) Get(
	ctx context.Context,
	accountID, recordID uuid.UUID,
) (*contentDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, account_id, kind, ciphertext, nonce, tag, created_at
			  FROM content_records WHERE id = $1 AND account_id = $2`

	var record contentDomain.Record
	err := querier.QueryRowContext(ctx, query, recordID, accountID).Scan(
		&record.ID,
		&record.AccountID,
		&record.Kind,
		&record.Ciphertext,
		&record.Nonce,
		&record.Tag,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contentDomain.ErrRecordNotFound
		}
		return nil, database.WrapStorageError(err, "failed to get content record")
	}

	return &record, nil
}

// ListByAccount retrieves record metadata for an account ordered by
// created_at descending with pagination. Payload columns are not selected.
func (p *PostgreSQLContentRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*contentDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, account_id, kind, created_at
			  FROM content_records
			  WHERE account_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list content records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*contentDomain.Record, 0)
	for rows.Next() {
		var record contentDomain.Record
		err := rows.Scan(&record.ID, &record.AccountID, &record.Kind, &record.CreatedAt)
		if err != nil {
			return nil, database.WrapStorageError(err, "failed to scan content record")
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate content records")
	}

	return records, nil
}
