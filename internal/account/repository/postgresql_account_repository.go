// Package repository provides database persistence for accounts.
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
)

// PostgreSQLAccountRepository implements account persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
// The wrapped key triple lives in the account row, so this repository also
// serves the key store's wrapped-key reads and rotation rewrites.
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccountRepository creates a new PostgreSQL account repository.
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{db: db}
}

// Create inserts a new account with its wrapped key.
func (p *PostgreSQLAccountRepository) Create(ctx context.Context, account *accountDomain.Account) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO accounts (id, name, status, master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.ID,
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
func (p *PostgreSQLAccountRepository) Get(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, status, master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag, created_at, updated_at
			  FROM accounts WHERE id = $1`

	var account accountDomain.Account
	var status string

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
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

	account.Status = accountDomain.Status(status)
	return &account, nil
}

// UpdateStatus transitions an account's lifecycle status.
func (p *PostgreSQLAccountRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status accountDomain.Status,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE accounts SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, string(status), updatedAt, id)
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
func (p *PostgreSQLAccountRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*accountDomain.Account, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, status, master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag, created_at, updated_at
			  FROM accounts
			  ORDER BY created_at ASC
			  LIMIT $1 OFFSET $2`

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
		var status string

		err := rows.Scan(
			&account.ID,
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

		account.Status = accountDomain.Status(status)
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate accounts")
	}

	return accounts, nil
}

// GetWrappedKey returns the account's wrapped key. Returns ErrAccountNotFound
// for unknown accounts; the key store treats that as a hard error.
func (p *PostgreSQLAccountRepository) GetWrappedKey(
	ctx context.Context,
	accountID uuid.UUID,
) (cryptoDomain.WrappedKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT master_key_id, wrapped_key_ciphertext, wrapped_key_nonce, wrapped_key_tag
			  FROM accounts WHERE id = $1`

	var wrapped cryptoDomain.WrappedKey

	err := querier.QueryRowContext(ctx, query, accountID).Scan(
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
func (p *PostgreSQLAccountRepository) UpdateWrappedKey(
	ctx context.Context,
	accountID uuid.UUID,
	wrapped cryptoDomain.WrappedKey,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE accounts
			  SET master_key_id = $1,
				  wrapped_key_ciphertext = $2,
				  wrapped_key_nonce = $3,
				  wrapped_key_tag = $4,
				  updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		wrapped.MasterKeyID,
		wrapped.Ciphertext,
		wrapped.Nonce,
		wrapped.Tag,
		time.Now().UTC(),
		accountID,
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
