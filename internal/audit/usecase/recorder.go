package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditService "github.com/guardvault/guardvault/internal/audit/service"
)

// persistTimeout bounds each background write so a stalled database cannot
// wedge the drain worker indefinitely.
const persistTimeout = 5 * time.Second

type recorder struct {
	eventRepo EventRepository
	signer    auditService.EventSigner
	logger    *slog.Logger
	queue     chan *auditDomain.Event
	quit      chan struct{}
	dropped   atomic.Uint64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRecorder creates an asynchronous audit recorder with a bounded queue of
// queueSize events and starts its background worker. Callers must Close the
// recorder during shutdown to drain pending events.
func NewRecorder(
	eventRepo EventRepository,
	signer auditService.EventSigner,
	logger *slog.Logger,
	queueSize int,
) Recorder {
	r := &recorder{
		eventRepo: eventRepo,
		signer:    signer,
		logger:    logger,
		queue:     make(chan *auditDomain.Event, queueSize),
		quit:      make(chan struct{}),
	}

	r.wg.Add(1)
	go r.drain()

	return r
}

// Record enqueues an audit event for asynchronous persistence. It never
// blocks: when the queue is full the event is dropped and counted.
func (r *recorder) Record(input RecordInput) {
	event := &auditDomain.Event{
		ID:        uuid.Must(uuid.NewV7()),
		AccountID: input.AccountID,
		EventType: input.EventType,
		Metadata:  input.Metadata,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		// Microsecond precision matches what TIMESTAMPTZ and DATETIME(6)
		// store; anything finer would invalidate signatures on read-back.
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	select {
	case r.queue <- event:
	default:
		dropped := r.dropped.Add(1)
		r.logger.Warn(
			"audit event dropped, queue full",
			"event_type", event.EventType,
			"total_dropped", dropped,
		)
	}
}

// Dropped reports how many events were discarded due to a full queue.
func (r *recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close stops the worker after draining all queued events. Events recorded
// after Close may be silently discarded.
func (r *recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
		r.wg.Wait()
	})
}

func (r *recorder) drain() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.queue:
			r.persist(event)
		case <-r.quit:
			// Flush whatever is already buffered, then stop.
			for {
				select {
				case event := <-r.queue:
					r.persist(event)
				default:
					return
				}
			}
		}
	}
}

// persist signs and stores a single event. Failures are logged and swallowed:
// the audited operation has already completed and must not be affected.
func (r *recorder) persist(event *auditDomain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.signer.Sign(event); err != nil {
		r.logger.Error(
			"failed to sign audit event",
			"event_id", event.ID,
			"event_type", event.EventType,
			"error", err,
		)
		return
	}

	if err := r.eventRepo.Create(ctx, event); err != nil {
		r.logger.Error(
			"failed to persist audit event",
			"event_id", event.ID,
			"event_type", event.EventType,
			"error", err,
		)
	}
}
