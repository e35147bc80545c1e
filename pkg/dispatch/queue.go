package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the default number of events a Queue buffers.
const DefaultCapacity = 256

// ErrClosed is returned by Flush on a closed queue.
var ErrClosed = errors.New("dispatch queue closed")

// Poster posts an event to a consumer context.
type Poster interface {
	// Post schedules fn. It returns false when fn was not accepted.
	Post(fn func()) bool
}

// Inline is a Poster that runs events on the posting goroutine.
type Inline struct{}

// Post runs fn immediately.
func (Inline) Post(fn func()) bool {
	fn()
	return true
}

// Config configures a Queue.
type Config struct {
	// Name identifies the queue in log output.
	Name string

	// Capacity is the number of buffered events (default: 256).
	Capacity int

	// Logger receives drop and panic diagnostics (optional).
	Logger *slog.Logger
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		Name:     "callbacks",
		Capacity: DefaultCapacity,
	}
}

// Stats is a snapshot of queue counters.
type Stats struct {
	Posted    uint64
	Delivered uint64
	Dropped   uint64
	Panics    uint64
}

// Queue is a bounded FIFO of events drained by one goroutine.
type Queue struct {
	name   string
	logger *slog.Logger
	ch     chan event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool

	posted    atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	panics    atomic.Uint64
}

var _ Poster = (*Queue)(nil)

// event is one queued callback. Flush markers are not counted as deliveries.
type event struct {
	fn     func()
	marker bool
}

// New creates a queue and starts its consumer goroutine.
func New(config Config) *Queue {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	q := &Queue{
		name:   config.Name,
		logger: logger,
		ch:     make(chan event, config.Capacity),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Post enqueues fn without blocking. It returns false if the queue is
// closed or full; a full queue counts the event as dropped.
func (q *Queue) Post(fn func()) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.ch <- event{fn: fn}:
		q.posted.Add(1)
		return true
	default:
		n := q.dropped.Add(1)
		q.logger.Warn("dispatch queue full, event dropped",
			slog.String("queue", q.name),
			slog.Uint64("dropped_total", n))
		return false
	}
}

// Flush waits until every event posted before the call has been delivered.
func (q *Queue) Flush(ctx context.Context) error {
	marker := make(chan struct{})

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrClosed
	}
	select {
	case q.ch <- event{fn: func() { close(marker) }, marker: true}:
		q.mu.RUnlock()
	case <-ctx.Done():
		q.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events, delivers what is already queued and waits
// for the consumer to exit. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	<-q.done
}

// Len returns the number of events waiting for delivery.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Stats returns the current counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Posted:    q.posted.Load(),
		Delivered: q.delivered.Load(),
		Dropped:   q.dropped.Load(),
		Panics:    q.panics.Load(),
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for ev := range q.ch {
		q.deliver(ev)
	}
}

// deliver runs one event. A panicking listener is logged and the consumer
// keeps running.
func (q *Queue) deliver(ev event) {
	defer func() {
		if r := recover(); r != nil {
			q.panics.Add(1)
			q.logger.Error("dispatch listener panicked",
				slog.String("queue", q.name),
				slog.Any("panic", r))
		}
	}()
	ev.fn()
	if !ev.marker {
		q.delivered.Add(1)
	}
}
