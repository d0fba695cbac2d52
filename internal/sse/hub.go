package sse

import (
	"sync"
)

// Event is a single server-sent event addressed to one identity
type Event struct {
	Name    string
	Payload interface{}
}

// Fanout is the event-stream contract consumed by the notification service.
// Delivery is advisory: false means nobody was listening, and callers must
// never fail an operation over it.
type Fanout interface {
	SendEventToStore(firebaseUID, event string, payload interface{}) bool
}

// Hub fans events out to connected clients keyed by their Firebase UID.
// A single identity may hold several connections (store dashboard plus
// phone); every connection gets every event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty fanout hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a new connection for firebaseUID and returns its
// event channel. The caller must Unsubscribe when the connection closes.
func (h *Hub) Subscribe(firebaseUID string) chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[firebaseUID] == nil {
		h.subs[firebaseUID] = make(map[chan Event]struct{})
	}
	h.subs[firebaseUID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a connection and closes its channel
func (h *Hub) Unsubscribe(firebaseUID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.subs[firebaseUID]
	if !ok {
		return
	}
	if _, ok := conns[ch]; !ok {
		return
	}
	delete(conns, ch)
	if len(conns) == 0 {
		delete(h.subs, firebaseUID)
	}
	close(ch)
}

// SendEventToStore delivers an event to every connection of firebaseUID and
// reports whether at least one connection received it. Sends never block: a
// connection too slow to drain its buffer misses the event.
func (h *Hub) SendEventToStore(firebaseUID, event string, payload interface{}) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for ch := range h.subs[firebaseUID] {
		select {
		case ch <- Event{Name: event, Payload: payload}:
			delivered = true
		default:
		}
	}
	return delivered
}

// ConnectedCount returns how many identities currently hold connections
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
