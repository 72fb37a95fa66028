package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	"github.com/guardvault/guardvault/internal/database"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// MySQLAccountRepository implements account persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQL account repository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

// Create inserts a new account with its wrapped key using BINARY(16) for UUIDs.
func (m *MySQLAccountRepository) Create(ctx context.Context, account *accountDomain.Account) error {
	querier := database.GetTx(ctx, m.db)

	id, err := account.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `INSERT INTO accounts (id, name, status, master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		account.Name,
		string(account.Status),
		account.WrappedKey.MasterKeyID,
		account.WrappedKey.Ciphertext,
		account.WrappedKey.Nonce,
		account.WrappedKey.Tag,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return database.WrapStorageError(err, "failed to create account")
	}

	return nil
}

// Get retrieves an account by ID. Returns ErrAccountNotFound if it doesn't exist.
func (m *MySQLAccountRepository) Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `SELECT id, name, status, master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag, created_at, updated_at
			  FROM accounts WHERE id = ?`

	return m.scanOne(querier.QueryRowContext(ctx, query, idBinary))
}

// UpdateStatus transitions an account's lifecycle status.
func (m *MySQLAccountRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status accountDomain.Status,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, string(status), updatedAt, idBinary)
	if err != nil {
		return database.WrapStorageError(err, "failed to update account status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return database.WrapStorageError(err, "failed to update account status")
	}
	if rows == 0 {
		return accountDomain.ErrAccountNotFound
	}

	return nil
}

// List retrieves accounts ordered by created_at ascending with pagination.
func (m *MySQLAccountRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*accountDomain.Account, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, status, master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag, created_at, updated_at
			  FROM accounts
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list accounts")
	}
	defer func() {
		_ = rows.Close()
	}()

	accounts := make([]*accountDomain.Account, 0)
	for rows.Next() {
		var account accountDomain.Account
		var idBinary []byte
		var status string

		err := rows.Scan(
			&idBinary,
			&account.Name,
			&status,
			&account.WrappedKey.MasterKeyID,
			&account.WrappedKey.Ciphertext,
			&account.WrappedKey.Nonce,
			&account.WrappedKey.Tag,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, database.WrapStorageError(err, "failed to scan account")
		}

		if err := account.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal account id")
		}

		account.Status = accountDomain.Status(status)
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate accounts")
	}

	return accounts, nil
}

// GetWrappedKey returns the account's wrapped key.
func (m *MySQLAccountRepository) GetWrappedKey(
	ctx context.Context,
	accountID uuid.UUID,
) (cryptoDomain.WrappedKey, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := accountID.MarshalBinary()
	if err != nil {
		return cryptoDomain.WrappedKey{}, apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `SELECT master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag
			  FROM accounts WHERE id = ?`

	var wrapped cryptoDomain.WrappedKey

	err = querier.QueryRowContext(ctx, query, idBinary).Scan(
		&wrapped.MasterKeyID,
		&wrapped.Ciphertext,
		&wrapped.Nonce,
		&wrapped.Tag,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cryptoDomain.WrappedKey{}, accountDomain.ErrAccountNotFound
		}
		return cryptoDomain.WrappedKey{}, database.WrapStorageError(err, "failed to get wrapped key")
	}

	return wrapped, nil
}

// UpdateWrappedKey replaces the account's wrapped key during master-key rotation.
func (m *MySQLAccountRepository) UpdateWrappedKey(
	ctx context.Context,
	accountID uuid.UUID,
	wrapped cryptoDomain.WrappedKey,
) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := accountID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `UPDATE accounts
			  SET master_key_id = ?,
				  wrapped_key_ciphertext = ?,
				  wrapped_key_nonce = ?,
				  wrapped_key_tag = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		wrapped.MasterKeyID,
		wrapped.Ciphertext,
		wrapped.Nonce,
		wrapped.Tag,
		time.Now().UTC(),
		idBinary,
	)
	if err != nil {
		return database.WrapStorageError(err, "failed to update wrapped key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return database.WrapStorageError(err, "failed to update wrapped key")
	}
	if rows == 0 {
		return accountDomain.ErrAccountNotFound
	}

	return nil
}

func (m *MySQLAccountRepository) scanOne(row *sql.Row) (*accountDomain.Account, error) {
	var account accountDomain.Account
	var idBinary []byte
	var status string

	err := row.Scan(
		&idBinary,
		&account.Name,
		&status,
		&account.WrappedKey.MasterKeyID,
		&account.WrappedKey.Ciphertext,
		&account.WrappedKey.Nonce,
		&account.WrappedKey.Tag,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountDomain.ErrAccountNotFound
		}
		return nil, database.WrapStorageError(err, "failed to get account")
	}

	if err := account.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal account id")
	}

	account.Status = accountDomain.Status(status)
	return &account, nil
}
