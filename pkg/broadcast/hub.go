package broadcast

import (
	"context"
	"sync"
)

// Listener receives one broadcast event.
type Listener func(event Event, payload Payload)

// Hub is an in-process Broadcaster. Listeners subscribe per event or to every
// event, and receive notifications synchronously in registration order. A hub
// can be constructed gated so that Ready blocks until the host finished
// wiring its observers.
type Hub struct {
	mu     sync.RWMutex
	byName map[Event][]Listener
	all    []Listener

	readyOnce sync.Once
	ready     chan struct{}
}

// NewHub constructs a hub that is ready immediately.
func NewHub() *Hub {
	h := newHub()
	h.MarkReady()
	return h
}

// NewGatedHub constructs a hub whose Ready blocks until MarkReady is called.
func NewGatedHub() *Hub {
	return newHub()
}

func newHub() *Hub {
	return &Hub{
		byName: make(map[Event][]Listener),
		ready:  make(chan struct{}),
	}
}

// MarkReady releases every waiter blocked in Ready. Safe to call repeatedly.
func (h *Hub) MarkReady() {
	h.readyOnce.Do(func() { close(h.ready) })
}

// Ready blocks until the hub is marked ready or the context is cancelled.
func (h *Hub) Ready(ctx context.Context) error {
	select {
	case <-h.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a listener for a single event.
func (h *Hub) Subscribe(event Event, fn Listener) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byName[event] = append(h.byName[event], fn)
}

// SubscribeAll registers a listener for every event.
func (h *Hub) SubscribeAll(fn Listener) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all = append(h.all, fn)
}

// Notify fans the event out to catch-all listeners first, then the event's
// own listeners, each in registration order.
func (h *Hub) Notify(event Event, payload Payload) {
	h.mu.RLock()
	listeners := make([]Listener, 0, len(h.all)+len(h.byName[event]))
	listeners = append(listeners, h.all...)
	listeners = append(listeners, h.byName[event]...)
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(event, payload)
	}
}
