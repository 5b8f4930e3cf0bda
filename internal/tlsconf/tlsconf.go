// Package tlsconf builds the server-side tls.Config relayd presents
// on its HTTPS listener from a PEM certificate chain and private key
// pair.
package tlsconf

import (
	"crypto/tls"
	"fmt"
)

// alpnProtocols is the fixed ALPN offer, in preference order, per
// spec.md §6. Go's http2.ConfigureServer appends "h2" itself if it
// isn't already present; listing it first here keeps the advertised
// order exactly what the spec mandates regardless of which helper
// touches NextProtos next.
var alpnProtocols = []string{"h2", "http/1.1", "http/1.0"}

// Credentials is the decoded TLS material for one config generation,
// ready to be handed to a tls.Listener or cloned per-connection by the
// acceptor.
type Credentials struct {
	ServerConfig *tls.Config
}

// Load reads the certificate chain and private key from the given PEM
// files and builds a Credentials. The certificate file may contain
// multiple concatenated certificates (the full chain); the key file
// must contain exactly one key, which may be RSA, PKCS8, or SEC1/EC —
// tls.X509KeyPair already implements that scan-and-skip decode
// contract, so no bespoke PEM walker is needed here.
func Load(certFilePath, keyFilePath string) (Credentials, error) {
	cert, err := tls.LoadX509KeyPair(certFilePath, keyFilePath)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load TLS credentials from %s and %s: %w", certFilePath, keyFilePath, err)
	}

	serverConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.NoClientCert,
		NextProtos:   append([]string(nil), alpnProtocols...),
	}

	return Credentials{ServerConfig: serverConfig}, nil
}

// Clone returns a deep-enough copy of the credentials' tls.Config
// suitable for handing to a single connection's TLS acceptor.
// Cloning by value at accept time, rather than sharing the pointer
// across the whole listener lifetime, means an in-progress handshake
// is never torn by a concurrent credential rotation: the clone keeps
// referencing the certificate that was live when the connection was
// accepted even after SignalReloader swaps the published Credentials.
func (c Credentials) Clone() *tls.Config {
	return c.ServerConfig.Clone()
}
