package proxy

import (
	"io"
	"net"
	"net/http"

	"go.uber.org/zap"
)

// backendTransport drives every ForwardEngine round-trip. Its
// DisableKeepAlives setting realizes spec.md §4.6 step 7's "connections
// are not pooled — each forwarded request opens a new backend
// connection": Go's http.Transport otherwise reuses idle connections
// per host, which would violate that invariant.
var backendTransport = &http.Transport{
	DisableKeepAlives:  true,
	DisableCompression: true,
	ForceAttemptHTTP2:  false,
}

// forward implements spec.md §4.6: rewrite the outbound request,
// dial the backend fresh, and stream its response back verbatim.
func forward(w http.ResponseWriter, r *http.Request, host string, backend *net.TCPAddr, log *zap.Logger) {
	outbound := r.Clone(r.Context())
	outbound.RequestURI = ""
	outbound.Proto = "HTTP/1.1"
	outbound.ProtoMajor = 1
	outbound.ProtoMinor = 1

	outbound.URL.Scheme = "http"
	outbound.URL.Host = backend.String()
	outbound.URL.Opaque = ""
	outbound.URL.User = nil

	outbound.Header = outbound.Header.Clone()
	stripHopByHop(outbound.Header)
	setHostHeader(outbound, host)
	coalesceCookies(outbound.Header)

	resp, err := backendTransport.RoundTrip(outbound)
	if err != nil {
		log.Debug("backend round-trip failed", zap.String("host", host), zap.Stringer("backend", backend), zap.Error(err))
		panic(http.ErrAbortHandler)
	}
	defer resp.Body.Close()

	dst := w.Header()
	for k, values := range resp.Header {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Debug("backend response streaming failed", zap.String("host", host), zap.Error(err))
	}
}
