package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	"github.com/guardvault/guardvault/internal/database"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// MySQLContentRepository implements content record persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLContentRepository struct {
	db *sql.DB
}

// NewMySQLContentRepository creates a new MySQL content repository.
func NewMySQLContentRepository(db *sql.DB) *MySQLContentRepository {
	return &MySQLContentRepository{db: db}
}

// Create inserts a new content record using BINARY(16) for UUIDs.
func (m *MySQLContentRepository) Create(ctx context.Context, record *contentDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal content record id")
	}

	accountID, err := record.AccountID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal content record account_id")
	}

	query := `INSERT INTO content_records (id, account_id, kind, ciphertext, nonce, tag, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		accountID,
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
func (m *MySQLContentRepository) Get(
	ctx context.Context,
	accountID, recordID uuid.UUID,
) (*contentDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	recordBinary, err := recordID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal content record id")
	}

	accountBinary, err := accountID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal content record account_id")
	}

	query := `SELECT id, account_id, kind, ciphertext, nonce, tag, created_at
			  FROM content_records WHERE id = ? AND account_id = ?`

	var record contentDomain.Record
	var idBinary, ownerBinary []byte
	err = querier.QueryRowContext(ctx, query, recordBinary, accountBinary).Scan(
		&idBinary,
		&ownerBinary,
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

	if err := record.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal content record id")
	}
	if err := record.AccountID.UnmarshalBinary(ownerBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal content record account_id")
	}

	return &record, nil
}

// ListByAccount retrieves record metadata for an account ordered by
// created_at descending with pagination. Payload columns are not selected.
func (m *MySQLContentRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*contentDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	accountBinary, err := accountID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal content record account_id")
	}

	query := `SELECT id, account_id, kind, created_at
			  FROM content_records
			  WHERE account_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, accountBinary, limit, offset)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list content records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*contentDomain.Record, 0)
	for rows.Next() {
		var record contentDomain.Record
		var idBinary, ownerBinary []byte

		err := rows.Scan(&idBinary, &ownerBinary, &record.Kind, &record.CreatedAt)
		if err != nil {
			return nil, database.WrapStorageError(err, "failed to scan content record")
		}

		if err := record.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal content record id")
		}
		if err := record.AccountID.UnmarshalBinary(ownerBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal content record account_id")
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate content records")
	}

	return records, nil
}
