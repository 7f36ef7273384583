package session

import (
	"fmt"
	"log/slog"

	"github.com/couchplay/couchplay/pkg/protocol"
)

// Dispatcher is the single consumer of the ingress queue and the only
// writer of the Context's player maps. It routes each message, in arrival
// order, into the owning player's action queue or the general queue, and it
// creates/destroys per-player state on connect/disconnect.
//
// Protocol-invariant violations (an action for a player that never
// registered, a first connect without a sink) panic: they mean a connection
// handler broke its ordering guarantee, not that a client misbehaved.
type Dispatcher struct {
	ctx     *Context
	logger  *slog.Logger
	metrics *Metrics

	// local holds the send halves of the per-player action queues. Only
	// the dispatcher goroutine touches it, so it needs no lock.
	local map[PlayerID]chan protocol.ActionEvent
}

// NewDispatcher wires a dispatcher to the given context. metrics may be nil.
func NewDispatcher(ctx *Context, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		ctx:     ctx,
		logger:  logger.With("component", "dispatcher"),
		metrics: metrics,
		local:   make(map[PlayerID]chan protocol.ActionEvent),
	}
}

// Run consumes the ingress queue until the context is closed. It is a
// process-lifetime goroutine; Context.Close happens only at shutdown.
func (d *Dispatcher) Run() {
	d.logger.Info("dispatcher started")
	defer d.logger.Info("dispatcher stopped")

	for {
		select {
		case <-d.ctx.ingressReady:
			for _, msg := range d.ctx.takeIngress() {
				d.dispatch(msg)
			}
		case <-d.ctx.done:
			// Serve whatever was already queued, then stop.
			for _, msg := range d.ctx.takeIngress() {
				d.dispatch(msg)
			}
			return
		}
	}
}

func (d *Dispatcher) dispatch(msg Message) {
	// A first connect needs its state created before the event itself is
	// forwarded, so the roster entry exists by the time anyone reads the
	// general queue.
	if connected, ok := msg.Event.(*protocol.Connected); ok {
		if _, registered := d.local[msg.PlayerID]; !registered {
			d.registerPlayer(msg.PlayerID, connected)
		}
	}

	switch event := msg.Event.(type) {
	case protocol.ActionEvent:
		queue, ok := d.local[msg.PlayerID]
		if !ok {
			panic(fmt.Sprintf("session: action event for unregistered player %d", msg.PlayerID))
		}
		// Never block the hot path: a full queue means the player is
		// sending faster than the game consumes, and stale input is
		// worse than missing input.
		select {
		case queue <- event:
			d.metrics.recordAction()
		default:
			d.metrics.recordActionDrop()
		}

	case protocol.Invalid:
		d.metrics.recordInvalid()
		d.logger.Warn("invalid message from client",
			"player_id", msg.PlayerID, "bytes", len(event.Data))
		// Diagnostic only; drop rather than wait on a full queue.
		select {
		case d.ctx.general <- msg:
		default:
			d.metrics.recordGeneralDrop()
		}

	default:
		// Connect, disconnect, and any future general kinds are rare and
		// load-bearing; waiting here is acceptable. Shutdown still has to
		// win over a full queue nobody is draining anymore.
		select {
		case d.ctx.general <- msg:
		case <-d.ctx.done:
			d.metrics.recordGeneralDrop()
		}
	}

	// Disconnect state is torn down after the event has been forwarded, so
	// the general queue still observes the player as its last act.
	if _, ok := msg.Event.(protocol.Disconnected); ok {
		d.unregisterPlayer(msg.PlayerID)
	}
}

func (d *Dispatcher) registerPlayer(id PlayerID, connected *protocol.Connected) {
	sink, ok := connected.TakeSink()
	if !ok {
		panic(fmt.Sprintf("session: first connect for player %d carried no sink", id))
	}

	queue := make(chan protocol.ActionEvent, QueueCapacity)
	d.local[id] = queue
	d.ctx.register(id, queue, sink)
	d.metrics.recordConnect()
	d.logger.Info("player connected", "player_id", id, "name", connected.Name)
}

func (d *Dispatcher) unregisterPlayer(id PlayerID) {
	queue, ok := d.local[id]
	if !ok {
		// Never registered here; nothing to tear down and no gauge to move.
		return
	}
	delete(d.local, id)
	close(queue)

	if sink, ok := d.ctx.unregister(id); ok {
		_ = sink.Close()
	}
	d.metrics.recordDisconnect()
	d.logger.Info("player disconnected", "player_id", id)
}
