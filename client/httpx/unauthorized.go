package httpx

import (
	"sync"
	"time"
)

// Unauthorized is broadcast whenever any request receives a 401/419. It is
// a notification, not an error: subscribers react even when they did not
// make the failing call.
type Unauthorized struct {
	Status          int
	Path            string
	FromInteraction bool
	At              time.Time
}

// Hub fans an Unauthorized signal out to every subscriber.
type Hub struct {
	mu   sync.Mutex
	subs map[int]func(Unauthorized)
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Unauthorized))}
}

// Subscribe registers fn and returns its cancel func.
func (h *Hub) Subscribe(fn func(Unauthorized)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Hub) broadcast(d Unauthorized) {
	h.mu.Lock()
	fns := make([]func(Unauthorized), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(d)
	}
}
