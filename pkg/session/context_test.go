package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchplay/couchplay/pkg/protocol"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSink struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (s *fakeSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.sent = append(s.sent, data)
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSink) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// connectPlayer registers a player directly through the dispatcher path.
func connectPlayer(d *Dispatcher, id PlayerID, name string) *fakeSink {
	sink := &fakeSink{}
	d.dispatch(Message{PlayerID: id, Event: protocol.NewConnected(name, sink)})
	d.ctx.DrainGeneral()
	return sink
}

func TestPollActionsGatedByHoldInterval(t *testing.T) {
	ctx := NewContext(&ContextConfig{HoldInterval: 100 * time.Millisecond})
	d := NewDispatcher(ctx, discardLogger(), nil)
	connectPlayer(d, 1, "Alice")

	base := time.Now()

	// First firing: nothing pending yet, still one entry per player.
	got := ctx.PollActions(base)
	if len(got) != 1 || got[0].Event != protocol.ActionNone {
		t.Fatalf("PollActions = %v, want [{1 None}]", got)
	}

	d.dispatch(Message{PlayerID: 1, Event: protocol.ActionRightPressed})
	d.dispatch(Message{PlayerID: 1, Event: protocol.ActionRightReleased})

	// Before the interval elapses the gate yields nothing.
	if got := ctx.PollActions(base.Add(50 * time.Millisecond)); got != nil {
		t.Fatalf("PollActions inside interval = %v, want nil", got)
	}

	// First interval: only the oldest event.
	got = ctx.PollActions(base.Add(100 * time.Millisecond))
	if len(got) != 1 || got[0].PlayerID != 1 || got[0].Event != protocol.ActionRightPressed {
		t.Fatalf("PollActions = %v, want [{1 RightPressed}]", got)
	}

	// Next interval: the second event.
	got = ctx.PollActions(base.Add(200 * time.Millisecond))
	if len(got) != 1 || got[0].Event != protocol.ActionRightReleased {
		t.Fatalf("PollActions = %v, want [{1 RightReleased}]", got)
	}
}

func TestPollActionsOnePerPlayerSortedByID(t *testing.T) {
	ctx := NewContext(&ContextConfig{HoldInterval: time.Millisecond})
	d := NewDispatcher(ctx, discardLogger(), nil)
	connectPlayer(d, 2, "b")
	connectPlayer(d, 1, "a")
	connectPlayer(d, 3, "c")

	d.dispatch(Message{PlayerID: 3, Event: protocol.ActionDownPressed})
	d.dispatch(Message{PlayerID: 1, Event: protocol.ActionUpPressed})

	got := ctx.PollActions(time.Now())
	if len(got) != 3 {
		t.Fatalf("got %d inputs, want one per connected player", len(got))
	}
	want := []PlayerInput{
		{PlayerID: 1, Event: protocol.ActionUpPressed},
		{PlayerID: 2, Event: protocol.ActionNone},
		{PlayerID: 3, Event: protocol.ActionDownPressed},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("input[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPollActionsExcludesDisconnected(t *testing.T) {
	ctx := NewContext(&ContextConfig{HoldInterval: time.Millisecond})
	d := NewDispatcher(ctx, discardLogger(), nil)
	connectPlayer(d, 1, "a")
	connectPlayer(d, 2, "b")

	d.dispatch(Message{PlayerID: 1, Event: protocol.Disconnected{}})

	got := ctx.PollActions(time.Now())
	if len(got) != 1 || got[0].PlayerID != 2 {
		t.Fatalf("PollActions = %v, want only player 2", got)
	}
}

func TestDrainGeneralOldestFirstNonBlocking(t *testing.T) {
	ctx := NewContext(nil)

	if got := ctx.DrainGeneral(); got != nil {
		t.Fatalf("DrainGeneral on empty = %v, want nil", got)
	}

	ctx.general <- Message{PlayerID: 1, Event: protocol.Invalid{Data: []byte{1}}}
	ctx.general <- Message{PlayerID: 2, Event: protocol.Invalid{Data: []byte{2}}}

	got := ctx.DrainGeneral()
	if len(got) != 2 || got[0].PlayerID != 1 || got[1].PlayerID != 2 {
		t.Fatalf("DrainGeneral = %v, want oldest first [1 2]", got)
	}
	if got := ctx.DrainGeneral(); got != nil {
		t.Fatalf("second DrainGeneral = %v, want nil", got)
	}
}

func TestSendAndBroadcast(t *testing.T) {
	ctx := NewContext(&ContextConfig{HoldInterval: time.Millisecond})
	d := NewDispatcher(ctx, discardLogger(), nil)
	a := connectPlayer(d, 1, "a")
	b := connectPlayer(d, 2, "b")

	if !ctx.Send(1, []byte("hi")) {
		t.Error("Send to connected player = false, want true")
	}
	if ctx.Send(9, []byte("hi")) {
		t.Error("Send to unknown player = true, want false")
	}

	ctx.Broadcast([]byte("all"))
	if a.sentCount() != 2 {
		t.Errorf("player 1 received %d messages, want 2", a.sentCount())
	}
	if b.sentCount() != 1 {
		t.Errorf("player 2 received %d messages, want 1", b.sentCount())
	}
}

func TestPushNeverDropsUnderBurst(t *testing.T) {
	ctx := NewContext(&ContextConfig{HoldInterval: time.Millisecond})
	d := NewDispatcher(ctx, discardLogger(), nil)
	go d.Run()
	defer ctx.Close()

	sink := &fakeSink{}
	ctx.Push(Message{PlayerID: 1, Event: protocol.NewConnected("a", sink)})

	// A burst well beyond every queue bound must not wedge the producers.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 4096; i++ {
			ctx.Push(Message{PlayerID: 1, Event: protocol.ActionAPressed})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Push blocked; dispatcher is not keeping up")
	}
}

func TestPushNeverBlocksWhileDispatcherSuspended(t *testing.T) {
	ctx := NewContext(&ContextConfig{HoldInterval: time.Millisecond})
	d := NewDispatcher(ctx, discardLogger(), nil)
	go d.Run()
	defer ctx.Close()

	ctx.Push(Message{PlayerID: 1, Event: protocol.NewConnected("a", &fakeSink{})})

	// Flood the general queue past capacity with duplicate connects while
	// nobody drains it. The dispatcher ends up suspended on the general
	// send mid-burst.
	for i := 0; i < QueueCapacity+2; i++ {
		ctx.Push(Message{PlayerID: 1, Event: &protocol.Connected{Name: "again"}})
	}

	// Handlers must still be able to enqueue freely: the ingress queue is
	// unbounded, so a suspended dispatcher never propagates backpressure
	// to the connections.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 2048; i++ {
			ctx.Push(Message{PlayerID: 1, Event: protocol.ActionAPressed})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked while the dispatcher was suspended on the general queue")
	}

	// Once the general queue is drained the dispatcher works through the
	// backlog.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ctx.DrainGeneral()
		if got := ctx.PollActions(time.Now()); len(got) == 1 && got[0].Event == protocol.ActionAPressed {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("queued actions never reached the player queue after draining")
}
