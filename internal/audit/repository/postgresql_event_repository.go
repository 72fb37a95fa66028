// Package repository provides database persistence for audit events.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	"github.com/guardvault/guardvault/internal/database"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// PostgreSQLEventRepository implements audit event persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL audit event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts a new audit event. Handles nil account ID and nil metadata as
// database NULL.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, account_id, event_type, metadata, ip, user_agent, master_key_id, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		nullableAccountID(event.AccountID),
		string(event.EventType),
		metadataJSON,
		event.IP,
		event.UserAgent,
		event.MasterKeyID,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return database.WrapStorageError(err, "failed to create audit event")
	}

	return nil
}

// List retrieves audit events ordered by created_at descending with pagination,
// optional account filtering, and optional inclusive time boundaries.
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	accountID *uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if accountID != nil {
		args = append(args, *accountID)
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, account_id, event_type, metadata, ip, user_agent, master_key_id, signature, created_at
			  FROM audit_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate audit events")
	}

	return events, nil
}

// nullableAccountID maps a nil account ID to database NULL.
func nullableAccountID(accountID *uuid.UUID) uuid.NullUUID {
	if accountID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *accountID, Valid: true}
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event metadata")
	}
	return metadataJSON, nil
}

func scanEvent(rows *sql.Rows) (*auditDomain.Event, error) {
	var event auditDomain.Event
	var accountID uuid.NullUUID
	var metadataJSON []byte
	var eventType string

	err := rows.Scan(
		&event.ID,
		&accountID,
		&eventType,
		&metadataJSON,
		&event.IP,
		&event.UserAgent,
		&event.MasterKeyID,
		&event.Signature,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to scan audit event")
	}

	event.EventType = auditDomain.EventType(eventType)
	if accountID.Valid {
		id := accountID.UUID
		event.AccountID = &id
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
		}
	}

	return &event, nil
}
