package session

import (
	"sort"
	"sync"
	"time"

	"github.com/couchplay/couchplay/pkg/protocol"
)

// QueueCapacity bounds the general queue and every per-player action
// queue. Events beyond capacity are dropped rather than buffered;
// these queues carry fresh input and diagnostics, not history.
const QueueCapacity = 20

// Message pairs a player with an event it produced. Constructed by a
// connection handler (or the listener) and consumed exactly once by the
// dispatcher.
type Message struct {
	PlayerID PlayerID
	Event    protocol.Event
}

// PlayerInput is one polled action for one connected player.
type PlayerInput struct {
	PlayerID PlayerID
	Event    protocol.ActionEvent
}

// ContextConfig tunes a Context. The zero value (or nil) selects defaults.
type ContextConfig struct {
	// HoldInterval is the tick-gate interval for PollActions.
	// Default: DefaultHoldInterval.
	HoldInterval time.Duration
}

// Context is the shared session state: one bounded action queue and one
// outbound sink per live player, the general event queue, and the PlayerID
// generator. The dispatcher is the only writer of the maps; the game loop
// reads them through DrainGeneral/PollActions/Broadcast, and the listener
// touches only the ID generator.
//
// A PlayerID is present in queues and sinks exactly between the dispatch of
// its Connected event and the dispatch of its Disconnected event.
type Context struct {
	mu     sync.Mutex
	queues map[PlayerID]chan protocol.ActionEvent
	sinks  map[PlayerID]protocol.Outbound
	gate   tickGate

	ids     *IDGenerator
	general chan Message

	// ingress is the unbounded FIFO between connection handlers and the
	// dispatcher. Handlers must never block on enqueue, even while the
	// dispatcher is suspended on a full general queue, so this is a
	// grow-only slice swapped out by the dispatcher rather than a
	// channel. ingressReady carries the wakeup signal.
	ingressMu    sync.Mutex
	ingress      []Message
	ingressReady chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// NewContext creates an empty Context. One per process, built at startup and
// shared by the listener, the dispatcher, and the game loop.
func NewContext(cfg *ContextConfig) *Context {
	hold := DefaultHoldInterval
	if cfg != nil && cfg.HoldInterval > 0 {
		hold = cfg.HoldInterval
	}
	return &Context{
		queues:       make(map[PlayerID]chan protocol.ActionEvent),
		sinks:        make(map[PlayerID]protocol.Outbound),
		gate:         tickGate{interval: hold},
		ids:          NewIDGenerator(),
		general:      make(chan Message, QueueCapacity),
		ingressReady: make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// IDs returns the shared PlayerID generator.
func (c *Context) IDs() *IDGenerator {
	return c.ids
}

// Push enqueues a message for the dispatcher. It never blocks and never
// drops while the context is open, however far behind the dispatcher is.
// After Close the message is discarded; connection handlers may still be
// unwinding when the process shuts down.
func (c *Context) Push(msg Message) {
	select {
	case <-c.done:
		return
	default:
	}

	c.ingressMu.Lock()
	c.ingress = append(c.ingress, msg)
	c.ingressMu.Unlock()

	select {
	case c.ingressReady <- struct{}{}:
	default:
	}
}

// takeIngress swaps out everything currently enqueued, oldest first.
// Dispatcher only.
func (c *Context) takeIngress() []Message {
	c.ingressMu.Lock()
	msgs := c.ingress
	c.ingress = nil
	c.ingressMu.Unlock()
	return msgs
}

// Close ends the dispatcher's run loop. Called once, at process shutdown;
// there is no graceful per-connection drain.
func (c *Context) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// DrainGeneral returns every lifecycle/diagnostic event currently queued,
// oldest first. It never blocks and may be called every tick.
func (c *Context) DrainGeneral() []Message {
	var out []Message
	for {
		select {
		case msg, ok := <-c.general:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// PollActions returns at most one pending action per connected player, or
// nil when the hold interval has not yet elapsed. Players with no pending
// input are reported with ActionNone, so each gate firing yields exactly one
// entry per live player. Results are ordered by PlayerID.
func (c *Context) PollActions(now time.Time) []PlayerInput {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gate.fire(now) {
		return nil
	}

	ids := make([]PlayerID, 0, len(c.sinks))
	for id := range c.sinks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]PlayerInput, 0, len(ids))
	for _, id := range ids {
		event := protocol.ActionNone
		if queue, ok := c.queues[id]; ok {
			select {
			case ev, ok := <-queue:
				if ok {
					event = ev
				}
			default:
			}
		}
		out = append(out, PlayerInput{PlayerID: id, Event: event})
	}
	return out
}

// Players returns the currently connected PlayerIDs in ascending order.
func (c *Context) Players() []PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]PlayerID, 0, len(c.sinks))
	for id := range c.sinks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Send enqueues data to one player's sink. Returns false if the player is
// not connected.
func (c *Context) Send(id PlayerID, data []byte) bool {
	c.mu.Lock()
	sink, ok := c.sinks[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return sink.Send(data) == nil
}

// Broadcast enqueues data to every connected player's sink.
func (c *Context) Broadcast(data []byte) {
	c.mu.Lock()
	sinks := make([]protocol.Outbound, 0, len(c.sinks))
	for _, sink := range c.sinks {
		sinks = append(sinks, sink)
	}
	c.mu.Unlock()

	for _, sink := range sinks {
		_ = sink.Send(data)
	}
}

// register installs the action queue and sink for a newly connected player.
// Dispatcher only.
func (c *Context) register(id PlayerID, queue chan protocol.ActionEvent, sink protocol.Outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[id] = queue
	c.sinks[id] = sink
}

// unregister removes a disconnected player's queue and sink, returning the
// sink so the dispatcher can close it. Dispatcher only.
func (c *Context) unregister(id PlayerID) (protocol.Outbound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.queues, id)
	sink, ok := c.sinks[id]
	delete(c.sinks, id)
	return sink, ok
}
