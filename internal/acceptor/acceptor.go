// Package acceptor implements the lazy TLS handshake byte-stream:
// an accepted TCP connection wrapped with a TLS config that only
// drives the handshake on the first read or write, so it can be
// handed straight to an HTTP server loop without an explicit
// pre-serve await.
package acceptor

import (
	"crypto/tls"
	"net"
	"sync"
	"time"
)

// Conn wraps a raw net.Conn plus the tls.Config snapshot that was
// live at accept time. It exposes the same net.Conn surface; the
// first Read or Write transparently drives the TLS handshake before
// delegating to the established session.
//
// The two states spec.md §4.1 describes as Handshaking/Streaming
// variants are collapsed here into one struct gated by a sync.Once,
// the alternative encoding spec.md §9 explicitly sanctions.
type Conn struct {
	raw       net.Conn
	tlsConfig *tls.Config

	once         sync.Once
	tlsConn      *tls.Conn
	handshakeErr error
}

// New wraps raw with tlsConfig. tlsConfig should already be a
// connection-private clone (see tlsconf.Credentials.Clone) so that a
// concurrent credential rotation cannot mutate it mid-handshake.
func New(raw net.Conn, tlsConfig *tls.Config) *Conn {
	return &Conn{raw: raw, tlsConfig: tlsConfig}
}

// handshake drives the TLS handshake exactly once, memoizing any
// error so every subsequent call returns it immediately.
func (c *Conn) handshake() error {
	c.once.Do(func() {
		c.tlsConn = tls.Server(c.raw, c.tlsConfig)
		c.handshakeErr = c.tlsConn.Handshake()
	})
	return c.handshakeErr
}

// Read drives the handshake on first use, then reads from the
// established TLS session. A handshake failure surfaces as the read's
// error, terminating the connection per spec.md §7.
func (c *Conn) Read(b []byte) (int, error) {
	if err := c.handshake(); err != nil {
		return 0, err
	}
	return c.tlsConn.Read(b)
}

// Write drives the handshake on first use, then writes to the
// established TLS session.
func (c *Conn) Write(b []byte) (int, error) {
	if err := c.handshake(); err != nil {
		return 0, err
	}
	return c.tlsConn.Write(b)
}

// NegotiatedProtocol forces the handshake — idempotently, through the
// same gate as Read and Write — and reports the ALPN protocol the
// client and server agreed on. The listener loop uses this to choose
// between HTTP/1.1 and HTTP/2 serving for a connection, which is as
// much "the first operation on the stream" as a read or write: there
// is no way to know which server state machine to hand the connection
// to without first learning what TLS negotiated.
func (c *Conn) NegotiatedProtocol() (string, error) {
	if err := c.handshake(); err != nil {
		return "", err
	}
	return c.tlsConn.ConnectionState().NegotiatedProtocol, nil
}

// Close closes the raw socket directly while no TLS session has been
// started yet (there is no session to shut down, only the socket) and
// otherwise delegates to the TLS session, which itself closes the
// underlying connection.
func (c *Conn) Close() error {
	if c.tlsConn == nil {
		return c.raw.Close()
	}
	return c.tlsConn.Close()
}

// LocalAddr returns the raw connection's local address.
func (c *Conn) LocalAddr() net.Addr { return c.raw.LocalAddr() }

// RemoteAddr returns the raw connection's remote address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// SetDeadline, SetReadDeadline, and SetWriteDeadline pass through to
// the raw connection; spec.md §5 imposes no timeouts of its own, but
// net/http still sets read deadlines internally for keep-alive idling,
// and those must reach the real socket regardless of handshake state.
func (c *Conn) SetDeadline(t time.Time) error { return c.raw.SetDeadline(t) }

// SetReadDeadline passes through to the raw connection.
func (c *Conn) SetReadDeadline(t time.Time) error { return c.raw.SetReadDeadline(t) }

// SetWriteDeadline passes through to the raw connection.
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.raw.SetWriteDeadline(t) }

var _ net.Conn = (*Conn)(nil)
