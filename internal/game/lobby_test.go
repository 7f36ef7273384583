package game

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchplay/couchplay/pkg/protocol"
	"github.com/couchplay/couchplay/pkg/session"
)

type recordSink struct {
	mu     sync.Mutex
	frames []string
}

func (s *recordSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, string(data))
	return nil
}

func (s *recordSink) Close() error { return nil }

func (s *recordSink) lastFrame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return ""
	}
	return s.frames[len(s.frames)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLobbyHarness wires a session context, a running dispatcher, and a lobby
// with a short hold interval so ticks are never gated out in tests.
func newLobbyHarness(t *testing.T) (*session.Context, *Lobby) {
	t.Helper()
	ctx := session.NewContext(&session.ContextConfig{HoldInterval: time.Millisecond})
	go session.NewDispatcher(ctx, quietLogger(), nil).Run()
	t.Cleanup(ctx.Close)
	return ctx, NewLobby(ctx, quietLogger())
}

// tickUntil runs lobby ticks until cond holds or the deadline passes.
func tickUntil(t *testing.T, lobby *Lobby, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		lobby.Tick(time.Now())
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never held")
}

func join(ctx *session.Context, id session.PlayerID, name string, sink *recordSink) {
	ctx.Push(session.Message{PlayerID: id, Event: protocol.NewConnected(name, sink)})
}

func TestLobbyBuildsRosterFromGeneralEvents(t *testing.T) {
	ctx, lobby := newLobbyHarness(t)

	alice, bob := &recordSink{}, &recordSink{}
	join(ctx, 1, "alice", alice)
	join(ctx, 2, "bob", bob)

	tickUntil(t, lobby, func() bool { return lobby.PlayerCount() == 2 })

	if lobby.Player(1).Name != "alice" || lobby.Player(2).Name != "bob" {
		t.Fatalf("roster names wrong: %v %v", lobby.Player(1), lobby.Player(2))
	}

	// Membership change broadcasts a roster frame to every sink.
	frame := alice.lastFrame()
	if !strings.Contains(frame, `"type":"roster"`) || !strings.Contains(frame, `"name":"bob"`) {
		t.Fatalf("roster frame = %q", frame)
	}

	ctx.Push(session.Message{PlayerID: 2, Event: protocol.Disconnected{}})
	tickUntil(t, lobby, func() bool { return lobby.PlayerCount() == 1 })

	if lobby.Player(2) != nil {
		t.Fatal("disconnected player still on the roster")
	}
}

func TestLobbyAppliesGatedActions(t *testing.T) {
	ctx, lobby := newLobbyHarness(t)

	join(ctx, 1, "alice", &recordSink{})
	tickUntil(t, lobby, func() bool { return lobby.PlayerCount() == 1 })

	ctx.Push(session.Message{PlayerID: 1, Event: protocol.ActionRightPressed})
	tickUntil(t, lobby, func() bool { return lobby.Player(1).MovementX() == 1 })

	ctx.Push(session.Message{PlayerID: 1, Event: protocol.ActionRightReleased})
	tickUntil(t, lobby, func() bool { return lobby.Player(1).HasNoAction() })
}

func TestLobbyIgnoresActionsForUnknownPlayers(t *testing.T) {
	ctx, lobby := newLobbyHarness(t)

	join(ctx, 1, "alice", &recordSink{})
	tickUntil(t, lobby, func() bool { return lobby.PlayerCount() == 1 })

	// A player can be registered in the session layer while the lobby has
	// not seen its Connected event yet. Actions for such players are
	// skipped, not fatal.
	fresh := NewLobby(ctx, quietLogger())
	ctx.Push(session.Message{PlayerID: 1, Event: protocol.ActionAPressed})
	time.Sleep(10 * time.Millisecond)
	fresh.Tick(time.Now())
	if fresh.PlayerCount() != 0 {
		t.Fatalf("fresh lobby roster = %d, want 0", fresh.PlayerCount())
	}
}
