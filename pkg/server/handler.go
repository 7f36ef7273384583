package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/couchplay/couchplay/pkg/protocol"
	"github.com/couchplay/couchplay/pkg/session"
)

// handleWS accepts a controller connection. The HTTP handler goroutine
// becomes the per-connection task: it owns the inbound half for the life of
// the connection while the outbound half is handed to the dispatcher inside
// the Connected event.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Handshake failure: the player never connects and no event is
		// emitted.
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := s.sessions.IDs().Generate()
	s.serveConn(r.Context(), id, r.RemoteAddr, conn)
}

// serveConn runs the per-connection state machine: await connect, register,
// serve, deregister.
func (s *Server) serveConn(ctx context.Context, id session.PlayerID, remote string, conn *websocket.Conn) {
	logger := s.logger.With("player_id", id, "remote", remote)
	logger.Debug("client handler started")

	conn.SetReadLimit(s.config.MaxMessageSize)

	// Await connect: the first message must decode to a Connected event
	// within the handshake window. Anything else aborts the handler before
	// the player ever registers.
	_, span := s.tracer.Start(ctx, "couchplay.connect",
		oteltrace.WithAttributes(
			attribute.Int64("player_id", int64(id)),
			attribute.String("remote", remote),
		))

	conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		span.SetStatus(codes.Error, "closed before connect")
		span.End()
		logger.Warn("connection closed before connect message", "error", err)
		conn.Close()
		return
	}

	first := protocol.Decode(raw)
	connected, ok := first.(*protocol.Connected)
	if !ok {
		span.SetStatus(codes.Error, "first message not a connect")
		span.End()
		logger.Warn("first message was not a connect", "event", fmt.Sprintf("%T", first))
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	// Register: transfer the outbound half exactly once. From here on the
	// sink owns all writes and the connection's lifetime; this goroutine
	// keeps only the inbound half.
	sink := session.NewSink(conn, logger)
	s.sessions.Push(session.Message{
		PlayerID: id,
		Event:    protocol.NewConnected(connected.Name, sink),
	})
	span.SetAttributes(attribute.String("player_name", connected.Name))
	span.End()

	// Serve: every further message decodes and forwards, valid or not.
	// Malformed input becomes an Invalid event; it never closes the
	// connection.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Debug("read loop ended", "error", err)
			break
		}
		s.sessions.Push(session.Message{PlayerID: id, Event: protocol.Decode(raw)})
	}

	// Deregister: whatever ended the read loop, the dispatcher must see a
	// terminal event so the player's queues and sink are cleaned up.
	s.sessions.Push(session.Message{PlayerID: id, Event: protocol.Disconnected{}})
	logger.Debug("client handler stopped")
}
