package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"delivery-lifecycle/internal/domain"
)

// Hub is an in-process broadcast sink for live subscribers.
// A subscriber whose buffer is full misses the event; history stays authoritative.
type Hub struct {
	mu      sync.RWMutex
	closed  bool
	nextID  int
	subs    map[int]chan domain.HistoryEvent
	dropped atomic.Uint64
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan domain.HistoryEvent)}
}

// Name implements Sink.
func (h *Hub) Name() string { return "hub" }

// Send delivers e to every subscriber without blocking.
func (h *Hub) Send(_ context.Context, e domain.HistoryEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers a subscriber with the given buffer size.
// The returned cancel func unregisters it and closes the channel.
// After Close the channel comes back already closed.
func (h *Hub) Subscribe(buffer int) (<-chan domain.HistoryEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.HistoryEvent, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
}

// Close ends every subscription. Later sends reach nobody.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries to full subscribers were skipped.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }
