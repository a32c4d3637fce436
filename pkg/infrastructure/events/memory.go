package events

import "sync"

// MemoryPublisher is the default in-memory Publisher: it records every
// event it receives for tests and for callers with no broker configured.
// Grounded in the teacher's sync.RWMutex-guarded explosion cache
// (pkg/application/services/mrp/mrp_service.go) — same "mutate a shared
// slice under lock, read concurrently" discipline.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryPublisher returns an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// Events returns a snapshot of every event published so far, in publish
// order.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

var _ Publisher = (*MemoryPublisher)(nil)
