package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

type mockEventRepository struct {
	mu        sync.Mutex
	events    []*auditDomain.Event
	createErr error
	block     chan struct{}

	lastFrom *time.Time
	lastTo   *time.Time
}

func (m *mockEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepository) List(
	ctx context.Context,
	accountID *uuid.UUID,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFrom = createdAtFrom
	m.lastTo = createdAtTo
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.events, nil
}

func (m *mockEventRepository) stored() []*auditDomain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*auditDomain.Event, len(m.events))
	copy(out, m.events)
	return out
}

type fakeSigner struct {
	signErr   error
	verifyErr func(event *auditDomain.Event) error
}

func (f *fakeSigner) Sign(event *auditDomain.Event) error {
	if f.signErr != nil {
		return f.signErr
	}
	event.MasterKeyID = "v1"
	event.Signature = []byte("fake-signature")
	return nil
}

func (f *fakeSigner) Verify(event *auditDomain.Event) error {
	if f.verifyErr != nil {
		return f.verifyErr(event)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthSucceededInput() RecordInput {
	accountID := uuid.Must(uuid.NewV7())
	return RecordInput{
		AccountID: &accountID,
		EventType: auditDomain.EventAuthSucceeded,
		Metadata:  map[string]any{"api_key_prefix": "gv_AbCdEfGhI"},
		IP:        "203.0.113.7",
		UserAgent: "curl/8.5.0",
	}
}

func TestRecorder(t *testing.T) {
	t.Run("records events asynchronously", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := &mockEventRepository{}
		rec := NewRecorder(repo, &fakeSigner{}, discardLogger(), 16)

		rec.Record(newAuthSucceededInput())
		rec.Record(newAuthSucceededInput())
		rec.Close()

		events := repo.stored()
		require.Len(t, events, 2)
		for _, event := range events {
			assert.NotEqual(t, uuid.Nil, event.ID)
			assert.Equal(t, auditDomain.EventAuthSucceeded, event.EventType)
			assert.Equal(t, "v1", event.MasterKeyID)
			assert.NotEmpty(t, event.Signature)
			assert.False(t, event.CreatedAt.IsZero())
		}
		assert.Zero(t, rec.Dropped())
	})

	t.Run("record never blocks when queue is full", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		block := make(chan struct{})
		repo := &mockEventRepository{block: block}
		rec := NewRecorder(repo, &fakeSigner{}, discardLogger(), 1)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for range 10 {
				rec.Record(newAuthSucceededInput())
			}
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Record blocked on a full queue")
		}

		assert.Positive(t, rec.Dropped())

		close(block)
		rec.Close()
	})

	t.Run("close drains pending events", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := &mockEventRepository{}
		rec := NewRecorder(repo, &fakeSigner{}, discardLogger(), 64)

		for range 50 {
			rec.Record(newAuthSucceededInput())
		}
		rec.Close()

		assert.Len(t, repo.stored(), int(50-rec.Dropped()))
	})

	t.Run("persistence failure does not surface to caller", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := &mockEventRepository{createErr: apperrors.ErrStorage}
		rec := NewRecorder(repo, &fakeSigner{}, discardLogger(), 16)

		rec.Record(newAuthSucceededInput())
		rec.Close()

		assert.Empty(t, repo.stored())
	})

	t.Run("signing failure does not surface to caller", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := &mockEventRepository{}
		rec := NewRecorder(repo, &fakeSigner{signErr: apperrors.New("boom")}, discardLogger(), 16)

		rec.Record(newAuthSucceededInput())
		rec.Close()

		assert.Empty(t, repo.stored())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		rec := NewRecorder(&mockEventRepository{}, &fakeSigner{}, discardLogger(), 16)
		rec.Close()
		rec.Close()
	})
}
