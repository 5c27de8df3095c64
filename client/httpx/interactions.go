package httpx

import (
	"sync"
	"time"
)

// InteractionWindow is how recently a user interaction must have been
// recorded for a session failure to count as interactive.
const InteractionWindow = 2 * time.Second

// Interactions records the timestamp of the most recent user input
// (pointer, key, command) for the lifetime of the process.
type Interactions struct {
	mu   sync.Mutex
	last time.Time
}

func NewInteractions() *Interactions {
	return &Interactions{}
}

func (i *Interactions) Record() {
	i.recordAt(time.Now())
}

func (i *Interactions) recordAt(t time.Time) {
	i.mu.Lock()
	i.last = t
	i.mu.Unlock()
}

func (i *Interactions) withinWindow(now time.Time) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.last.IsZero() {
		return false
	}
	return now.Sub(i.last) <= InteractionWindow
}
