package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-product-api/internal/api/metrics"
	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
	persistTimeout = 5 * time.Second
)

// Dispatcher persists authentication audit events on a fixed set of workers.
// Events are sharded by email so attempts against one account are stored in
// the order they happened. Record never blocks: when a shard is full the
// event is dropped and counted.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	repo    ports.AuditRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers shards of buffer slots
// each. Non-positive values fall back to the defaults.
func NewDispatcher(numWorkers, buffer int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, buffer)
	}
	return d
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record enqueues event on the worker that owns its email.
func (d *Dispatcher) Record(event domain.AuthEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		return
	}

	idx := d.shardIndex(event.Email)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("email", event.Email).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// Close stops accepting events and waits for the workers to drain what is
// already queued, or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an email deterministically to a worker index. Case is
// folded so "A@x.com" and "a@x.com" share a shard.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(email)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Dec()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err := d.repo.InsertAuthEvent(ctx, &event)
		cancel()

		if err != nil {
			metrics.AuditEventsTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Str("email", event.Email).
				Str("type", string(event.Type)).
				Int("worker_id", id).
				Msg("audit event persistence failed")
			continue
		}
		metrics.AuditEventsTotal.WithLabelValues("persisted").Inc()
	}
}
