package proxy

import (
	"net"
	"net/http"

	"github.com/caddyserver/relayd/internal/config"
)

// Kind is the tag of a classified request's disposition.
type Kind int

const (
	// KindNotFound means no host could be derived, or the request is
	// on the secure port but no route matched.
	KindNotFound Kind = iota
	// KindRedirect means the request arrived on the plaintext port
	// and should be redirected to its HTTPS origin.
	KindRedirect
	// KindForward means the request matches a route and is not a
	// WebSocket upgrade.
	KindForward
	// KindUpgrade means the request matches a route and carries an
	// unambiguous "Upgrade: websocket" header.
	KindUpgrade
)

// Disposition is the result of classifying one inbound request.
type Disposition struct {
	Kind    Kind
	Host    string
	Backend *net.TCPAddr
}

// Classify implements the decision table from spec.md §4.3: the
// effective host string is the request URI's authority if present,
// else the Host header (empty if absent). On the plaintext side every
// request with a host redirects; on the secure side, the live routing
// table picks Forward or Upgrade by first match, or NotFound if
// nothing matches. A request with no derivable host is always
// NotFound, even on the plaintext port — there is nowhere to redirect
// it to.
func Classify(r *http.Request, secure bool, dyn config.Dynamic) Disposition {
	host := effectiveHost(r)
	if host == "" {
		return Disposition{Kind: KindNotFound}
	}

	if !secure {
		return Disposition{Kind: KindRedirect, Host: host}
	}

	route, ok := dyn.Match(host)
	if !ok {
		return Disposition{Kind: KindNotFound}
	}

	if isWebSocketUpgrade(r.Header) {
		return Disposition{Kind: KindUpgrade, Host: host, Backend: route.BackendAddress}
	}
	return Disposition{Kind: KindForward, Host: host, Backend: route.BackendAddress}
}

// effectiveHost mirrors spec.md's "authority from the request URI,
// else the Host header" rule. Go's net/http already promotes the Host
// header into Request.Host and clears it from the Header map for
// server-received requests, and populates Request.URL.Host only when
// the client sent an absolute-form request target — so checking
// r.URL.Host first and falling back to r.Host implements the rule
// exactly.
func effectiveHost(r *http.Request) string {
	if r.URL != nil && r.URL.Host != "" {
		return r.URL.Host
	}
	return r.Host
}

// isWebSocketUpgrade reports whether every Upgrade header value is
// present and equal to the literal "websocket" (case-sensitive), per
// spec.md §4.3. Any disagreement among multiple Upgrade values, or
// their absence, means this is not an upgrade.
func isWebSocketUpgrade(h http.Header) bool {
	values := h.Values("Upgrade")
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v != "websocket" {
			return false
		}
	}
	return true
}
