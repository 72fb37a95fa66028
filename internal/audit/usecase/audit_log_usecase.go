package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditService "github.com/guardvault/guardvault/internal/audit/service"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

type auditLogUseCase struct {
	eventRepo EventRepository
	signer    auditService.EventSigner
}

// NewAuditLogUseCase creates an AuditLogUseCase with the provided dependencies.
func NewAuditLogUseCase(eventRepo EventRepository, signer auditService.EventSigner) AuditLogUseCase {
	return &auditLogUseCase{
		eventRepo: eventRepo,
		signer:    signer,
	}
}

// List retrieves audit events ordered by created_at descending with pagination
// and optional account and time-based filtering. Both time boundaries are
// inclusive and expected in UTC. Returns an empty slice if no events match.
func (a *auditLogUseCase) List(
	ctx context.Context,
	accountID *uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	events, err := a.eventRepo.List(ctx, accountID, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}

	return events, nil
}

// Verify recomputes signatures for a page of stored events across all
// accounts and returns the IDs of events that fail verification. Signature
// failures are collected, not returned as errors, so a sweep can report every
// tampered event in one pass.
func (a *auditLogUseCase) Verify(
	ctx context.Context,
	offset, limit int,
) (int, []uuid.UUID, error) {
	events, err := a.eventRepo.List(ctx, nil, offset, limit, nil, nil)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, "failed to list audit events for verification")
	}

	var tampered []uuid.UUID
	for _, event := range events {
		if err := a.signer.Verify(event); err != nil {
			tampered = append(tampered, event.ID)
		}
	}

	return len(events), tampered, nil
}
