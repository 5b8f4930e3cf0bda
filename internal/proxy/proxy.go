// Package proxy implements the request-routing and forwarding
// pipeline at the heart of relayd: classification, the redirect and
// not-found responders, and the forward/upgrade backend engines.
package proxy

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/caddyserver/relayd/internal/snapshot"
)

// Proxy is the http.Handler installed on both the HTTP and HTTPS
// listeners. secure distinguishes which port it's serving: false
// means every request redirects (spec.md §4.3's first decision row
// after host derivation), true means the live snapshot's routing
// table decides forward vs. upgrade vs. not-found.
type Proxy struct {
	secure bool
	store  *snapshot.Store
	log    *zap.Logger
}

// NewSecure returns a Proxy for the HTTPS listener.
func NewSecure(store *snapshot.Store, log *zap.Logger) *Proxy {
	return &Proxy{secure: true, store: store, log: log}
}

// NewInsecure returns a Proxy for the plaintext HTTP listener.
func NewInsecure(store *snapshot.Store, log *zap.Logger) *Proxy {
	return &Proxy{secure: false, store: store, log: log}
}

// ServeHTTP classifies the request against the current snapshot and
// dispatches to the matching responder or engine.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dyn := p.store.Load().Dynamic
	disposition := Classify(r, p.secure, dyn)

	switch disposition.Kind {
	case KindNotFound:
		writeNotFound(w)
	case KindRedirect:
		writeRedirect(w, r, disposition.Host)
	case KindForward:
		forward(w, r, disposition.Host, disposition.Backend, p.log)
	case KindUpgrade:
		upgrade(w, r, disposition.Host, disposition.Backend, p.log)
	}
}
