// Package game holds the lobby-side view of connected players: the roster,
// their held-button state, and the loop that consumes session events.
package game

import (
	"github.com/couchplay/couchplay/pkg/protocol"
	"github.com/couchplay/couchplay/pkg/session"
)

// MaxPlayers bounds the roster; everything sized per player (colors, spawn
// slots) supports at least this many.
const MaxPlayers = 9

// Colors is the palette players are assigned from, indexed by ColorIndex.
var Colors = [MaxPlayers]string{
	"#990000", // red
	"#009900", // green
	"#0080cc", // blue
	"#ff8000", // orange
	"#990099", // purple
	"#666666", // grey
	"#663300", // brown
	"#ff3399", // pink
	"#0080ff", // light blue
}

// PlayerAction tracks which buttons a player currently holds, plus the most
// recent edge transition for consumers that want one-shot input.
type PlayerAction struct {
	UpPressed    bool
	RightPressed bool
	DownPressed  bool
	LeftPressed  bool
	APressed     bool
	BPressed     bool

	prev         protocol.ActionEvent
	changedSince bool
}

// Player is one connected controller's lobby state.
type Player struct {
	ID         session.PlayerID `json:"id"`
	Name       string           `json:"name"`
	Score      int              `json:"score"`
	ColorIndex int              `json:"color"`

	action PlayerAction
}

// NewPlayer builds a roster entry with zero score and no held buttons.
func NewPlayer(id session.PlayerID, name string, colorIndex int) *Player {
	return &Player{ID: id, Name: name, ColorIndex: colorIndex}
}

// Color returns the player's palette color.
func (p *Player) Color() string {
	return Colors[p.ColorIndex%MaxPlayers]
}

// UpdateAction applies one edge transition to the held-button state.
// ActionNone changes nothing but still records as the latest event.
func (p *Player) UpdateAction(event protocol.ActionEvent) {
	switch event {
	case protocol.ActionUpPressed:
		p.action.UpPressed = true
	case protocol.ActionUpReleased:
		p.action.UpPressed = false
	case protocol.ActionRightPressed:
		p.action.RightPressed = true
	case protocol.ActionRightReleased:
		p.action.RightPressed = false
	case protocol.ActionDownPressed:
		p.action.DownPressed = true
	case protocol.ActionDownReleased:
		p.action.DownPressed = false
	case protocol.ActionLeftPressed:
		p.action.LeftPressed = true
	case protocol.ActionLeftReleased:
		p.action.LeftPressed = false
	case protocol.ActionAPressed:
		p.action.APressed = true
	case protocol.ActionAReleased:
		p.action.APressed = false
	case protocol.ActionBPressed:
		p.action.BPressed = true
	case protocol.ActionBReleased:
		p.action.BPressed = false
	}

	p.action.prev = event
	p.action.changedSince = true
}

// ResetAction releases every held button.
func (p *Player) ResetAction() {
	p.action = PlayerAction{prev: p.action.prev, changedSince: p.action.changedSince}
}

// HasNoAction reports whether the player holds no buttons at all.
func (p *Player) HasNoAction() bool {
	a := p.action
	return !a.UpPressed && !a.RightPressed && !a.DownPressed &&
		!a.LeftPressed && !a.APressed && !a.BPressed
}

// LatestActionOnce returns the most recent edge transition exactly once.
// Until a new event arrives it returns ActionNone, false.
func (p *Player) LatestActionOnce() (protocol.ActionEvent, bool) {
	if !p.action.changedSince {
		return protocol.ActionNone, false
	}
	p.action.changedSince = false
	return p.action.prev, true
}

// MovementX maps held left/right buttons to a horizontal axis in [-1, 1].
// Opposing buttons cancel.
func (p *Player) MovementX() float64 {
	switch {
	case p.action.RightPressed && p.action.LeftPressed:
		return 0
	case p.action.RightPressed:
		return 1
	case p.action.LeftPressed:
		return -1
	default:
		return 0
	}
}

// MovementY maps held up/down buttons to a vertical axis in [-1, 1].
func (p *Player) MovementY() float64 {
	switch {
	case p.action.UpPressed && p.action.DownPressed:
		return 0
	case p.action.UpPressed:
		return 1
	case p.action.DownPressed:
		return -1
	default:
		return 0
	}
}

// AIsPressed reports whether the A button is held.
func (p *Player) AIsPressed() bool {
	return p.action.APressed
}

// BIsPressed reports whether the B button is held.
func (p *Player) BIsPressed() bool {
	return p.action.BPressed
}
