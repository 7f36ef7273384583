package server

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// loadTLSIdentity reads a PKCS#12 bundle and builds the TLS config used for
// connections from public addresses. The bundle is read once, at startup.
func loadTLSIdentity(path, password string) (*tls.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server: reading TLS identity: %w", err)
	}

	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, fmt.Errorf("server: decoding TLS identity: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{cert.Raw},
			PrivateKey:  key,
			Leaf:        cert,
		}},
	}, nil
}

// policyListener wraps a TCP listener and decides per accepted connection
// whether to speak TLS: only connections from non-private remote addresses
// are wrapped, and only when an identity was configured. The TLS handshake
// itself is lazy (tls.Server defers it to the first read), so a slow
// handshake never stalls the accept loop.
type policyListener struct {
	net.Listener
	tlsConfig *tls.Config
	logger    *slog.Logger
}

func newPolicyListener(inner net.Listener, tlsConfig *tls.Config, logger *slog.Logger) *policyListener {
	return &policyListener{Listener: inner, tlsConfig: tlsConfig, logger: logger}
}

func (l *policyListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	if l.tlsConfig == nil || isPrivateAddr(conn.RemoteAddr().String()) {
		return conn, nil
	}

	l.logger.Debug("wrapping public connection in TLS", "remote", conn.RemoteAddr())
	return tls.Server(conn, l.tlsConfig), nil
}
