package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sinkQueueSize is the capacity of a sink's send queue.
	sinkQueueSize = 64

	// sinkWriteWait bounds a single websocket write.
	sinkWriteWait = 5 * time.Second
)

// ErrSinkClosed is returned by Send after the sink has been closed.
var ErrSinkClosed = errors.New("session: sink closed")

// Sink is the outbound half of a controller connection. It serializes all
// websocket writes through a single pump goroutine so the game loop and
// shutdown paths can send from anywhere without racing the connection.
//
// Send never blocks on the network: messages are queued, and the newest
// message is dropped when the queue is full. Controllers only receive small
// roster updates, so dropping under pressure is harmless.
type Sink struct {
	conn   *websocket.Conn
	logger *slog.Logger

	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewSink wraps the write half of conn and starts its write pump. The caller
// must not write to conn after this call; the sink is the sole writer.
func NewSink(conn *websocket.Conn, logger *slog.Logger) *Sink {
	s := &Sink{
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sinkQueueSize),
		closed: make(chan struct{}),
	}
	go s.writePump()
	return s
}

// Send enqueues data for delivery as a single binary message. When the send
// queue is full the message is dropped and Send still returns nil; only a
// closed sink is an error.
func (s *Sink) Send(data []byte) error {
	select {
	case <-s.closed:
		return ErrSinkClosed
	default:
	}

	select {
	case s.send <- data:
	default:
		s.logger.Debug("sink queue full, dropping message", "bytes", len(data))
	}
	return nil
}

// Close tears down the write pump and the underlying connection. It is safe
// to call more than once.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *Sink) writePump() {
	defer s.conn.Close()

	for {
		select {
		case <-s.closed:
			deadline := time.Now().Add(sinkWriteWait)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(sinkWriteWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.logger.Debug("sink write failed", "error", err)
				s.Close()
				return
			}
		}
	}
}
