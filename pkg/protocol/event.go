package protocol

// Outbound is the write half of a client connection. Implementations must be
// safe to call from a goroutine other than the one that accepted the
// connection.
//
// An Outbound has exactly one owner at any time. It rides inside a Connected
// event from the connection handler to the event dispatcher, which claims it
// via TakeSink and stores it; from then on the event carries no sink.
type Outbound interface {
	// Send enqueues data for delivery to the client. It must not block on
	// the network; implementations drop when their send queue is full.
	Send(data []byte) error

	// Close tears down the write half and the underlying connection.
	Close() error
}

// Event is a decoded client event. The set of variants is closed:
// ActionEvent, *Connected, Disconnected, and Invalid.
type Event interface {
	isEvent()
}

// Connected is sent once per connection, as the first message, carrying the
// player's chosen display name. The handler attaches the connection's
// outbound half before forwarding it inward; once the dispatcher has taken
// the sink the event propagates onward without it.
type Connected struct {
	Name string

	sink Outbound
}

func (*Connected) isEvent() {}

// NewConnected builds a Connected event carrying ownership of the
// connection's outbound half.
func NewConnected(name string, sink Outbound) *Connected {
	return &Connected{Name: name, sink: sink}
}

// TakeSink moves the outbound half out of the event. The second return is
// false if the sink was never attached or was already taken.
func (c *Connected) TakeSink() (Outbound, bool) {
	if c.sink == nil {
		return nil, false
	}
	sink := c.sink
	c.sink = nil
	return sink, true
}

// Disconnected is the terminal event for a registered player. It is emitted
// by the connection handler on read-loop exit, whatever the reason.
type Disconnected struct{}

func (Disconnected) isEvent() {}

// Invalid carries the raw bytes of a message that failed to decode. It is
// diagnostic only; the connection that sent it stays open.
type Invalid struct {
	Data []byte
}

func (Invalid) isEvent() {}

// IsGeneral reports whether e is a lifecycle/diagnostic event rather than an
// action event.
func IsGeneral(e Event) bool {
	switch e.(type) {
	case ActionEvent:
		return false
	default:
		return true
	}
}
