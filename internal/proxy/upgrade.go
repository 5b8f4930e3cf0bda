package proxy

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// upgrade implements spec.md §4.7: perform the upgrade handshake
// against the backend, relay its response headers to the client, and
// if the backend answered 101 Switching Protocols, splice the two
// raw connections together in a detached goroutine.
func upgrade(w http.ResponseWriter, r *http.Request, host string, backend *net.TCPAddr, log *zap.Logger) {
	outbound := buildUpgradeRequest(r, host)

	backendConn, err := net.Dial("tcp", backend.String())
	if err != nil {
		log.Debug("backend dial failed", zap.String("host", host), zap.Error(err))
		panic(http.ErrAbortHandler)
	}

	if err := outbound.Write(backendConn); err != nil {
		backendConn.Close()
		log.Debug("writing upgrade request to backend failed", zap.String("host", host), zap.Error(err))
		panic(http.ErrAbortHandler)
	}

	backendReader := bufio.NewReader(backendConn)
	backendResp, err := http.ReadResponse(backendReader, outbound)
	if err != nil {
		backendConn.Close()
		log.Debug("reading upgrade response from backend failed", zap.String("host", host), zap.Error(err))
		panic(http.ErrAbortHandler)
	}

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		backendConn.Close()
		backendResp.Body.Close()
		panic(http.ErrAbortHandler)
	}

	clientConn, clientBuf, err := hijacker.Hijack()
	if err != nil {
		backendConn.Close()
		backendResp.Body.Close()
		log.Debug("hijacking client connection failed", zap.String("host", host), zap.Error(err))
		panic(http.ErrAbortHandler)
	}

	if err := writeUpgradeResponseHead(clientBuf.Writer, backendResp); err != nil {
		backendResp.Body.Close()
		clientConn.Close()
		backendConn.Close()
		return
	}

	if backendResp.StatusCode != http.StatusSwitchingProtocols {
		backendResp.Body.Close()
		clientConn.Close()
		backendConn.Close()
		return
	}

	go spliceTunnel(clientConn, clientBuf.Reader, backendConn, backendReader, log)
}

// buildUpgradeRequest realizes spec.md §4.7 steps 1-2: a fresh request
// with an empty body, copying the inbound method/headers/target,
// forced to HTTP/1.1, with Keep-Alive removed, Connection: Upgrade
// ensured, and the same Host rewrite and cookie coalescing as forward.
func buildUpgradeRequest(r *http.Request, host string) *http.Request {
	outbound := r.Clone(r.Context())
	outbound.Body = http.NoBody
	outbound.ContentLength = 0
	outbound.RequestURI = ""
	outbound.Proto = "HTTP/1.1"
	outbound.ProtoMajor = 1
	outbound.ProtoMinor = 1

	outbound.URL = &url.URL{
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}

	outbound.Header = outbound.Header.Clone()
	outbound.Header.Del("Keep-Alive")
	outbound.Header.Set("Connection", "Upgrade")
	setHostHeader(outbound, host)
	coalesceCookies(outbound.Header)

	return outbound
}

// writeUpgradeResponseHead copies the backend response's status line
// and headers to the client, with an empty body — upgrade responses
// never carry a message body per spec.md §4.7 step 4.
func writeUpgradeResponseHead(w *bufio.Writer, resp *http.Response) error {
	if _, err := io.WriteString(w, "HTTP/1.1 "+resp.Status+"\r\n"); err != nil {
		return err
	}
	if err := resp.Header.Write(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	return w.Flush()
}

// spliceTunnel bidirectionally copies bytes between the upgraded
// client and backend connections until either side ends, per
// spec.md §4.7 step 5. It runs detached from the request that
// triggered it; a failure on either side just ends the tunnel, with
// no user-visible report per spec.md §7.
func spliceTunnel(clientConn net.Conn, clientReader *bufio.Reader, backendConn net.Conn, backendReader *bufio.Reader, log *zap.Logger) {
	defer clientConn.Close()
	defer backendConn.Close()

	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		// clientReader may already hold bytes buffered by the
		// hijacked connection's bufio.ReadWriter; drain those before
		// reading straight from the socket.
		_, _ = io.Copy(backendConn, clientReader)
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		// backendReader may already hold bytes the backend sent
		// immediately after its 101 response; drain those before
		// reading straight from the socket.
		_, _ = io.Copy(clientConn, backendReader)
	}()

	<-done
	log.Debug("upgrade tunnel closed")
}
