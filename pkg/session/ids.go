package session

import "sync"

// PlayerID identifies a connected client for the lifetime of its connection.
// IDs are strictly increasing and never reused within a process lifetime.
type PlayerID uint64

// IDGenerator hands out PlayerIDs from a monotonic counter seeded at 1.
//
// The listener is the only component that generates IDs today, but the
// counter sits behind a mutex so that a second accept loop (say, a dedicated
// TLS listener) could share it safely.
type IDGenerator struct {
	mu   sync.Mutex
	next uint64
}

// NewIDGenerator returns a generator whose first Generate call yields 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: 1}
}

// Generate returns the next PlayerID.
func (g *IDGenerator) Generate() PlayerID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return PlayerID(id)
}
