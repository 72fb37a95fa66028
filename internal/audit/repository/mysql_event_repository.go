package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	"github.com/guardvault/guardvault/internal/database"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// MySQLEventRepository implements audit event persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL audit event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts a new audit event using BINARY(16) for UUIDs. Handles nil
// account ID and nil metadata as database NULL.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	var accountID []byte
	if event.AccountID != nil {
		accountID, err = event.AccountID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit event account_id")
		}
	}

	query := `INSERT INTO audit_events (id, account_id, event_type, metadata, ip, user_agent, master_key_id, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		accountID,
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
// optional account filtering, and optional inclusive time boundaries. UUIDs are
// stored as BINARY(16) and must be unmarshaled.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	accountID *uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if accountID != nil {
		accountIDBinary, err := accountID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal audit event account_id")
		}
		conditions = append(conditions, "account_id = ?")
		args = append(args, accountIDBinary)
	}
	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, account_id, event_type, metadata, ip, user_agent, master_key_id, signature, created_at
			  FROM audit_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.WrapStorageError(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		var event auditDomain.Event
		var idBinary, accountIDBinary []byte
		var metadataJSON []byte
		var eventType string

		err := rows.Scan(
			&idBinary,
			&accountIDBinary,
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

		if err := event.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}

		if accountIDBinary != nil {
			var id uuid.UUID
			if err := id.UnmarshalBinary(accountIDBinary); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit event account_id")
			}
			event.AccountID = &id
		}

		event.EventType = auditDomain.EventType(eventType)

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, database.WrapStorageError(err, "failed to iterate audit events")
	}

	return events, nil
}
