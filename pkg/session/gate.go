package session

import "time"

// DefaultHoldInterval is how long a polled action event is "held" before the
// next one for the same player may be consumed.
//
// Clients emit edge events far faster than a held button should visibly
// change simulated state. The gate coalesces a burst of edges into one state
// update per interval instead of applying every edge individually.
const DefaultHoldInterval = 100 * time.Millisecond

// tickGate throttles action polling to at most once per interval. It is a
// plain elapsed-time check so tests can drive it with explicit clocks.
type tickGate struct {
	interval time.Duration
	last     time.Time
}

// fire reports whether the interval has elapsed since the last firing, and
// if so records now as the new baseline. The first call after construction
// fires immediately.
func (g *tickGate) fire(now time.Time) bool {
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}
