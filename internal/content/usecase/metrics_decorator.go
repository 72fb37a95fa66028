package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
	"github.com/guardvault/guardvault/internal/metrics"
)

// contentUseCaseWithMetrics decorates ContentUseCase with metrics instrumentation.
type contentUseCaseWithMetrics struct {
	next    ContentUseCase
	metrics metrics.BusinessMetrics
}

// NewContentUseCaseWithMetrics wraps a ContentUseCase with metrics recording.
func NewContentUseCaseWithMetrics(useCase ContentUseCase, m metrics.BusinessMetrics) ContentUseCase {
	return &contentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *contentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordOperation(ctx, "content", operation, status)
	c.metrics.RecordDuration(ctx, "content", operation, time.Since(start), status)
}

func (c *contentUseCaseWithMetrics) EncryptForAccount(
	ctx context.Context,
	accountID uuid.UUID,
	plaintext []byte,
) (*contentDomain.Record, error) {
	start := time.Now()
	record, err := c.next.EncryptForAccount(ctx, accountID, plaintext)
	c.record(ctx, "encrypt", start, err)
	return record, err
}

func (c *contentUseCaseWithMetrics) DecryptForAccount(
	ctx context.Context,
	accountID uuid.UUID,
	record *contentDomain.Record,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := c.next.DecryptForAccount(ctx, accountID, record)
	c.record(ctx, "decrypt", start, err)
	return plaintext, err
}

func (c *contentUseCaseWithMetrics) Store(
	ctx context.Context,
	accountID uuid.UUID,
	kind string,
	plaintext []byte,
) (*contentDomain.Record, error) {
	start := time.Now()
	record, err := c.next.Store(ctx, accountID, kind, plaintext)
	c.record(ctx, "store", start, err)
	return record, err
}

func (c *contentUseCaseWithMetrics) Get(
	ctx context.Context,
	accountID, recordID uuid.UUID,
) (*contentDomain.Record, error) {
	start := time.Now()
	record, err := c.next.Get(ctx, accountID, recordID)
	c.record(ctx, "get", start, err)
	return record, err
}

func (c *contentUseCaseWithMetrics) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*contentDomain.Record, error) {
	start := time.Now()
	records, err := c.next.List(ctx, accountID, offset, limit)
	c.record(ctx, "list", start, err)
	return records, err
}
