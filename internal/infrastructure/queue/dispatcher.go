package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the target user id, so events about one user are recorded in
// the order they were produced.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	service ports.AuditService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Stop has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands event to the worker responsible for its target. It never
// blocks: when the worker's buffer is full or the dispatcher is stopped the
// event is dropped and false is returned.
func (d *Dispatcher) Enqueue(event domain.AuditEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		return false
	}

	idx := d.shardIndex(event.TargetID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		return false
	}
}

// Stop rejects new events, lets workers drain what is already queued and
// waits for them to exit. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a target user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(targetID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(targetID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
			if err := d.service.Record(recordCtx, event); err != nil {
				d.log.Error().Err(err).
					Str("audit_id", event.ID).
					Int64("user_id", event.TargetID).
					Int("worker_id", id).
					Msg("audit event recording failed")
			}
			cancel()
		}
	}
}
