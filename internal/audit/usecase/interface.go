// Package usecase implements audit trail recording and retrieval.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
)

// EventRepository defines persistence operations for audit events.
// The trail is append-only: there are no update or delete operations.
type EventRepository interface {
	Create(ctx context.Context, event *auditDomain.Event) error
	// List retrieves events ordered by created_at descending. A nil accountID
	// returns events across all accounts. Time boundaries are optional and
	// inclusive.
	List(
		ctx context.Context,
		accountID *uuid.UUID,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.Event, error)
}

// RecordInput carries the caller-supplied fields of an audit event. The
// recorder fills in ID, timestamp, and signature.
type RecordInput struct {
	AccountID *uuid.UUID
	EventType auditDomain.EventType
	Metadata  map[string]any
	IP        string
	UserAgent string
}

// Recorder accepts audit events without ever blocking or failing the caller.
//
// Record enqueues the event for asynchronous signing and persistence; when the
// queue is full the event is dropped and counted rather than applying
// backpressure to the hot path. Recording failures must never abort the
// operation being audited.
type Recorder interface {
	Record(input RecordInput)
	// Dropped reports how many events were discarded due to a full queue.
	Dropped() uint64
	// Close drains pending events and stops the background worker.
	Close()
}

// AuditLogUseCase exposes read access to the audit trail.
type AuditLogUseCase interface {
	List(
		ctx context.Context,
		accountID *uuid.UUID,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.Event, error)
	// Verify recomputes signatures for a page of events and returns the IDs
	// of events whose signatures do not match.
	Verify(
		ctx context.Context,
		offset, limit int,
	) (checked int, tampered []uuid.UUID, err error)
}
