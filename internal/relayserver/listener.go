// Package relayserver wires the already-built config, tlsconf,
// snapshot, acceptor, and proxy packages into the two listener loops
// and the SIGHUP reloader spec.md §4.2, §4.8, and §5 describe, the way
// the teacher's listeners.go turns a net.Listener into a running
// server.
package relayserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/caddyserver/relayd/internal/acceptor"
	"github.com/caddyserver/relayd/internal/proxy"
	"github.com/caddyserver/relayd/internal/snapshot"
)

// serveInsecure runs the plaintext listener loop: every connection is
// plain HTTP/1.1 and every request redirects, so the stdlib
// http.Server needs no help beyond the insecure Proxy handler.
func serveInsecure(ln net.Listener, store *snapshot.Store, log *zap.Logger) error {
	srv := &http.Server{Handler: proxy.NewInsecure(store, log)}
	err := srv.Serve(ln)
	if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// serveSecure runs the TLS listener loop. Unlike the plaintext side,
// each accepted connection needs its own TLS credential clone (the
// snapshot in effect at the moment it was accepted, per spec.md §4.1)
// and its own choice of HTTP/1.1 versus HTTP/2 depending on what ALPN
// negotiated, so accept loop and dispatch are hand-rolled rather than
// handed wholesale to http.Server.Serve.
func serveSecure(ln net.Listener, store *snapshot.Store, log *zap.Logger) error {
	handler := proxy.NewSecure(store, log)
	h2Server := &http2.Server{}

	for {
		raw, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("accept failed on secure listener", zap.Error(err))
			continue
		}
		go serveSecureConn(raw, store, handler, h2Server, log)
	}
}

// serveSecureConn drives one accepted connection: clone the
// credentials live at accept time, complete the handshake to learn
// which protocol ALPN settled on, and dispatch to the matching server
// state machine. A handshake failure surfaces here and nowhere else —
// there is no client to answer yet, so the connection is just closed,
// matching the "drop the connection, no response" row of spec.md §7's
// error table.
func serveSecureConn(raw net.Conn, store *snapshot.Store, handler http.Handler, h2Server *http2.Server, log *zap.Logger) {
	tlsConfig := store.Load().TLS.Clone()
	conn := acceptor.New(raw, tlsConfig)

	proto, err := conn.NegotiatedProtocol()
	if err != nil {
		log.Debug("TLS handshake failed", zap.Error(err))
		conn.Close()
		return
	}

	switch proto {
	case http2.NextProtoTLS:
		h2Server.ServeConn(conn, &http2.ServeConnOpts{Handler: handler})
	default:
		srv := &http.Server{Handler: handler}
		_ = srv.Serve(newOneShotListener(conn))
	}
}

// Bind opens the two listening sockets at httpAddr and httpsAddr.
// Binding both up front and only afterward starting to accept on them
// means a port-in-use failure aborts startup before anything has been
// printed to stdout, matching spec.md §7's "bind failure -> abort
// startup" row.
func Bind(ctx context.Context, httpAddr, httpsAddr string) (httpLn, httpsLn net.Listener, err error) {
	var lc net.ListenConfig

	httpLn, err = lc.Listen(ctx, "tcp", httpAddr)
	if err != nil {
		return nil, nil, err
	}

	httpsLn, err = lc.Listen(ctx, "tcp", httpsAddr)
	if err != nil {
		httpLn.Close()
		return nil, nil, err
	}

	return httpLn, httpsLn, nil
}
