// Package session owns the shared state of all connected controller clients
// and the event-dispatch pipeline between the network layer and the game
// loop.
//
// # Architecture
//
// Connection handlers (package server) decode wire messages and push typed
// events into a single shared unbounded ingress queue. One Dispatcher
// goroutine, the only writer of shared session state, consumes that queue
// and fans
// events out into a bounded per-player action queue per live connection plus
// one bounded general queue for lifecycle and diagnostic events.
//
// The game loop never touches the network. Once per tick it calls
// Context.DrainGeneral for lifecycle events and Context.PollActions for
// input. PollActions is throttled by a tick gate so that at most one action
// edge per player is consumed per hold interval, however fast the client
// fires them.
//
// # Backpressure
//
// The ingress queue is unbounded: connection handlers always enqueue
// without blocking, even while the dispatcher is suspended on a full
// general queue. Action queues and the general queue are bounded
// (QueueCapacity). Action
// routing and invalid-message forwarding never block: when a queue is full
// the new event is dropped, because stale input is worse than missing input.
// Connect and disconnect events are load-bearing and may briefly suspend the
// dispatcher instead of being dropped.
package session
