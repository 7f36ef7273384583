package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts dispatch activity. All methods are safe on a nil receiver
// so callers can run without a registry (tests, embedded use).
type Metrics struct {
	connects        prometheus.Counter
	disconnects     prometheus.Counter
	invalidMessages prometheus.Counter
	actionsRouted   prometheus.Counter
	actionDrops     prometheus.Counter
	generalDrops    prometheus.Counter
	players         prometheus.Gauge
}

// NewMetrics registers the session metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		connects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "connects_total",
			Help:      "Total number of players that completed the connect handshake",
		}),
		disconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "disconnects_total",
			Help:      "Total number of player disconnects processed",
		}),
		invalidMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "invalid_messages_total",
			Help:      "Total number of malformed client messages",
		}),
		actionsRouted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "actions_total",
			Help:      "Total number of action events routed to player queues",
		}),
		actionDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "action_drops_total",
			Help:      "Action events dropped because a player queue was full",
		}),
		generalDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "general_drops_total",
			Help:      "Diagnostic events dropped because the general queue was full",
		}),
		players: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "couchplay",
			Subsystem: "session",
			Name:      "connected_players",
			Help:      "Number of currently connected players",
		}),
	}
}

func (m *Metrics) recordConnect() {
	if m != nil {
		m.connects.Inc()
		m.players.Inc()
	}
}

func (m *Metrics) recordDisconnect() {
	if m != nil {
		m.disconnects.Inc()
		m.players.Dec()
	}
}

func (m *Metrics) recordInvalid() {
	if m != nil {
		m.invalidMessages.Inc()
	}
}

func (m *Metrics) recordAction() {
	if m != nil {
		m.actionsRouted.Inc()
	}
}

func (m *Metrics) recordActionDrop() {
	if m != nil {
		m.actionDrops.Inc()
	}
}

func (m *Metrics) recordGeneralDrop() {
	if m != nil {
		m.generalDrops.Inc()
	}
}
