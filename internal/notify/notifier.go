// Package notify delivers committed history events to interested parties.
package notify

import (
	"context"
	"sync"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/metrics"
)

// Sink accepts history events. Send should return promptly.
type Sink interface {
	Name() string
	Send(ctx context.Context, e domain.HistoryEvent) error
}

// Hook is called when a delivery enters a status it was registered for.
type Hook func(ctx context.Context, e domain.HistoryEvent)

// Notifier fans a committed event out to every sink and status hook.
// Failures are logged and counted, never returned.
type Notifier struct {
	sinks   []Sink
	metrics *metrics.Notifier
	logger  logx.Logger

	mu    sync.RWMutex
	hooks map[domain.DeliveryStatus][]Hook
}

// New creates a Notifier over sinks. m may be nil.
func New(logger logx.Logger, m *metrics.Notifier, sinks ...Sink) *Notifier {
	if logger == nil {
		logger = logx.Nop()
	}
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Notifier{
		sinks:   out,
		metrics: m,
		logger:  logger,
		hooks:   make(map[domain.DeliveryStatus][]Hook),
	}
}

// OnStatus registers h for events entering status.
func (n *Notifier) OnStatus(status domain.DeliveryStatus, h Hook) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks[status] = append(n.hooks[status], h)
}

// Publish sends e to every sink in registration order, then runs matching hooks.
func (n *Notifier) Publish(ctx context.Context, e domain.HistoryEvent) {
	for _, s := range n.sinks {
		if err := s.Send(ctx, e); err != nil {
			n.metrics.Failure(s.Name())
			n.logger.Error("event publish failed",
				logx.String("sink", s.Name()),
				logx.String("reference", e.Reference),
				logx.Int64("seq", e.Seq),
				logx.String("to", string(e.ToStatus)),
				logx.Any("error", err),
			)
		}
	}

	n.mu.RLock()
	hooks := append([]Hook(nil), n.hooks[e.ToStatus]...)
	n.mu.RUnlock()
	for _, h := range hooks {
		n.runHook(ctx, h, e)
	}
}

func (n *Notifier) runHook(ctx context.Context, h Hook, e domain.HistoryEvent) {
	defer func() {
		if p := recover(); p != nil {
			n.metrics.Failure("hook")
			n.logger.Error("status hook panicked",
				logx.String("reference", e.Reference),
				logx.String("status", string(e.ToStatus)),
				logx.Any("panic", p),
			)
		}
	}()
	h(ctx, e)
}

type closer interface {
	Close(ctx context.Context) error
}

// Close flushes every sink that buffers events. The first error is returned.
func (n *Notifier) Close(ctx context.Context) error {
	if n == nil {
		return nil
	}
	var first error
	for _, s := range n.sinks {
		c, ok := s.(closer)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
