package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/metrics"
)

// ErrQueueFull is returned by AsyncSink.Send when the queue has no room left.
var ErrQueueFull = errors.New("event queue is full")

// ErrSinkClosed is returned by AsyncSink.Send after Close.
var ErrSinkClosed = errors.New("event sink is closed")

// AsyncSink queues events for next and sends them from one goroutine, so callers never wait
// on a slow sink. Events leave the queue in the order they were accepted.
type AsyncSink struct {
	next    Sink
	logger  logx.Logger
	metrics *metrics.Notifier
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.HistoryEvent
	done   chan struct{}
}

// NewAsyncSink starts the sending goroutine. Each event gets its own timeout budget.
// It returns nil when next is nil.
func NewAsyncSink(next Sink, logger logx.Logger, m *metrics.Notifier, size int, timeout time.Duration) *AsyncSink {
	if next == nil {
		return nil
	}
	if size <= 0 {
		size = 1024
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	a := &AsyncSink{
		next:    next,
		logger:  logger,
		metrics: m,
		timeout: timeout,
		queue:   make(chan domain.HistoryEvent, size),
		done:    make(chan struct{}),
	}
	go a.loop()
	return a
}

// Name implements Sink.
func (a *AsyncSink) Name() string { return a.next.Name() }

// Send enqueues e without blocking.
func (a *AsyncSink) Send(_ context.Context, e domain.HistoryEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrSinkClosed
	}
	select {
	case a.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued events.
func (a *AsyncSink) Pending() int { return len(a.queue) }

// Close stops accepting events and waits until the queue drains or ctx ends.
func (a *AsyncSink) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AsyncSink) loop() {
	defer close(a.done)
	for e := range a.queue {
		a.send(e)
	}
}

func (a *AsyncSink) send(e domain.HistoryEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.next.Send(ctx, e); err != nil {
		a.metrics.Failure(a.next.Name())
		a.logger.Error("event publish failed",
			logx.String("sink", a.next.Name()),
			logx.String("reference", e.Reference),
			logx.Int64("seq", e.Seq),
			logx.String("to", string(e.ToStatus)),
			logx.Any("error", err),
		)
	}
}
