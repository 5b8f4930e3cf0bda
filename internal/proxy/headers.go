package proxy

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// hopByHopHeaders are stripped from every forwarded (non-upgrade)
// outbound request per spec.md §4.6 step 2: they are meaningful only
// on a single HTTP hop and must not be relayed to the backend. The
// upgrade path removes only Keep-Alive and sets Connection: Upgrade
// itself (see buildUpgradeRequest).
var hopByHopHeaders = []string{"Keep-Alive", "Connection", "Upgrade"}

func stripHopByHop(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}

// coalesceCookies collapses every Cookie header on h into a single
// header whose value is the original values joined by "; " in their
// original order. This is mandatory per spec.md §4.6 step 4: many
// HTTP/1.1 backends reject a request carrying more than one Cookie
// header.
func coalesceCookies(h http.Header) {
	values := h.Values("Cookie")
	if len(values) == 0 {
		return
	}
	h.Set("Cookie", strings.Join(values, "; "))
}

// setHostHeader overwrites the outbound Host header with the matched
// route's host string, provided it is a syntactically valid header
// field value. Per spec.md §7, an invalid value is skipped rather
// than failing the request — the outbound Host is left as whatever it
// already was (the clone of the inbound request's Host).
func setHostHeader(req *http.Request, host string) {
	if !httpguts.ValidHeaderFieldValue(host) {
		return
	}
	req.Host = host
	req.Header.Set("Host", host)
}

// pathAndQuery returns the inbound request's path-and-query string, or
// the empty string if the URL carries none — used to build the
// redirect Location.
func pathAndQuery(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.EscapedPath()
	}
	return u.EscapedPath() + "?" + u.RawQuery
}
