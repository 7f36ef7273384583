package server

import (
	"net/http"
	"time"

	"github.com/couchplay/couchplay/pkg/session"
)

// Config configures a Server. Zero fields take their default.
type Config struct {
	// Addr is the TCP listen address, e.g. ":8420".
	Addr string

	// TLSCertFile is a PKCS#12 bundle used for connections from public
	// addresses. Empty disables TLS entirely.
	TLSCertFile string

	// TLSPassword unlocks TLSCertFile.
	TLSPassword string

	// StaticDir, when set, is served at / so controllers can load the
	// gamepad page straight from the game host.
	StaticDir string

	// HoldInterval is forwarded to the session context's tick gate.
	HoldInterval time.Duration

	// HandshakeTimeout bounds how long a new connection may take to send
	// its connect message.
	HandshakeTimeout time.Duration

	// MaxMessageSize caps inbound websocket messages. Controller
	// messages are a few bytes; anything large is a misbehaving client.
	MaxMessageSize int64

	// ReadBufferSize / WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin overrides the websocket origin check. Default: allow
	// all, since controllers load the page from this same server or from
	// a LAN address the browser considers a different origin.
	CheckOrigin func(r *http.Request) bool

	// TracerName names the OpenTelemetry tracer used for connection
	// spans. Tracing is a no-op unless the host process installed a
	// tracer provider.
	TracerName string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:             ":8420",
		HoldInterval:     session.DefaultHoldInterval,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   512,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		ShutdownTimeout:  5 * time.Second,
		CheckOrigin:      func(r *http.Request) bool { return true },
		TracerName:       "couchplay",
	}
}

func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.HoldInterval == 0 {
		c.HoldInterval = d.HoldInterval
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.TracerName == "" {
		c.TracerName = d.TracerName
	}
	return c
}
