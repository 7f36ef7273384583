package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/couchplay/couchplay/pkg/protocol"
	"github.com/couchplay/couchplay/pkg/session"
)

// DefaultTickRate is how often the lobby loop runs when the config does not
// say otherwise.
const DefaultTickRate = 60

// Lobby consumes session events and maintains the player roster. It is the
// single reader of both session iterators; the dispatcher never touches the
// roster.
type Lobby struct {
	sessions *session.Context
	logger   *slog.Logger

	players map[session.PlayerID]*Player

	// rosterDirty forces a roster broadcast on the next tick.
	rosterDirty bool
}

// NewLobby builds a lobby over the given session context.
func NewLobby(sessions *session.Context, logger *slog.Logger) *Lobby {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lobby{
		sessions: sessions,
		logger:   logger.With("component", "lobby"),
		players:  make(map[session.PlayerID]*Player),
	}
}

// Run ticks the lobby until ctx is done. tickRate is ticks per second.
func (l *Lobby) Run(ctx context.Context, tickRate int) {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	l.logger.Info("lobby started", "tick_rate", tickRate)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("lobby stopped")
			return
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}

// Tick runs one lobby iteration: general events first, then gated actions,
// then a roster broadcast if membership changed.
func (l *Lobby) Tick(now time.Time) {
	l.handleGeneral()
	l.handleActions(now)

	if l.rosterDirty {
		l.rosterDirty = false
		l.broadcastRoster()
	}
}

// Player returns the roster entry for id, or nil.
func (l *Lobby) Player(id session.PlayerID) *Player {
	return l.players[id]
}

// PlayerCount returns the current roster size.
func (l *Lobby) PlayerCount() int {
	return len(l.players)
}

func (l *Lobby) handleGeneral() {
	for _, msg := range l.sessions.DrainGeneral() {
		switch event := msg.Event.(type) {
		case *protocol.Connected:
			colorIndex := rand.IntN(MaxPlayers)
			l.players[msg.PlayerID] = NewPlayer(msg.PlayerID, event.Name, colorIndex)
			l.rosterDirty = true
			l.logger.Info("player joined",
				"player_id", msg.PlayerID, "name", event.Name, "color", colorIndex)

		case protocol.Disconnected:
			delete(l.players, msg.PlayerID)
			l.rosterDirty = true
			l.logger.Info("player left", "player_id", msg.PlayerID)

		case protocol.Invalid:
			l.logger.Warn("invalid message from player",
				"player_id", msg.PlayerID, "data", event.Data)
		}
	}
}

func (l *Lobby) handleActions(now time.Time) {
	for _, input := range l.sessions.PollActions(now) {
		player, ok := l.players[input.PlayerID]
		if !ok {
			continue
		}
		// An idle player yielding ActionNone again carries no information.
		if input.Event == protocol.ActionNone && player.HasNoAction() {
			continue
		}
		player.UpdateAction(input.Event)
	}
}

// rosterMessage is the JSON frame controllers render their join screen from.
type rosterMessage struct {
	Type    string    `json:"type"`
	Players []*Player `json:"players"`
}

func (l *Lobby) broadcastRoster() {
	roster := rosterMessage{Type: "roster", Players: make([]*Player, 0, len(l.players))}
	for _, id := range l.sessions.Players() {
		if player, ok := l.players[id]; ok {
			roster.Players = append(roster.Players, player)
		}
	}

	data, err := json.Marshal(roster)
	if err != nil {
		l.logger.Error("roster marshal failed", "error", err)
		return
	}
	l.sessions.Broadcast(data)
}
