// Package server accepts controller connections over WebSocket and feeds
// their events into the session layer.
//
// One Server owns the listener, the HTTP router (/ws, /healthz, /metrics,
// and optionally the static controller page), the per-connection handlers,
// and the session dispatcher. The game loop talks only to the session
// Context returned by Sessions.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/couchplay/couchplay/pkg/session"
)

// Server is the network front of a couchplay process.
type Server struct {
	config   *Config
	logger   *slog.Logger
	sessions *session.Context
	metrics  *session.Metrics
	registry *prometheus.Registry
	upgrader websocket.Upgrader
	tracer   oteltrace.Tracer

	httpServer *http.Server
}

// New builds a Server and starts its dispatcher goroutine. The dispatcher
// runs until Shutdown is called.
func New(config *Config, logger *slog.Logger) *Server {
	config = config.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := session.NewMetrics(registry)

	sessions := session.NewContext(&session.ContextConfig{HoldInterval: config.HoldInterval})

	s := &Server{
		config:   config,
		logger:   logger,
		sessions: sessions,
		metrics:  metrics,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		tracer: otel.Tracer(config.TracerName),
	}

	go session.NewDispatcher(sessions, logger, metrics).Run()

	return s
}

// Sessions returns the shared session context consumed by the game loop.
func (s *Server) Sessions() *session.Context {
	return s.sessions
}

// Handler returns the HTTP handler, for mounting in tests or an external
// router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
	return r
}

// Run binds the listener and serves until a shutdown signal arrives or the
// listener fails. A bind failure is returned immediately and is fatal to the
// caller; a permanent accept failure likewise ends Run rather than leaving a
// process that looks alive but accepts nobody.
func (s *Server) Run() error {
	inner, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}

	listener := net.Listener(inner)
	if s.config.TLSCertFile != "" {
		cfg, err := loadTLSIdentity(s.config.TLSCertFile, s.config.TLSPassword)
		if err != nil {
			inner.Close()
			return err
		}
		listener = newPolicyListener(inner, cfg, s.logger)
		s.logger.Info("TLS identity loaded; public connections will be encrypted",
			"cert", s.config.TLSCertFile)
	}

	s.httpServer = &http.Server{
		Handler:  s.Handler(),
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-shutdown:
		s.logger.Info("shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting connections, closes the HTTP server, and stops
// the dispatcher.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.sessions.Close()
	s.logger.Info("server shutdown complete")
	return err
}
