//go:build !windows

package relayserver

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caddyserver/relayd/internal/config"
)

func writeSelfSignedCert(t *testing.T, dir string) (certPath, keyPath string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "relayd-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")

	certOut, err := os.Create(certPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, certOut.Close())

	keyBytes, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyOut, err := os.Create(keyPath)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}))
	require.NoError(t, keyOut.Close())

	return certPath, keyPath
}

func writeConfigFile(t *testing.T, dir, certPath, keyPath, host, backendAddr string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	contents := "cert_file = \"" + certPath + "\"\nkey_file = \"" + keyPath + "\"\n\n" +
		"[[routes]]\nhost = \"" + host + "\"\naddress = \"" + backendAddr + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// TestHotReloadSwapsRoutingTableWithoutDroppingServer covers spec.md
// §8 scenario 6: a SIGHUP swaps the live routing table, and requests
// classified under the old table stop matching while requests under
// the new table start matching, with the process never restarting.
func TestHotReloadSwapsRoutingTableWithoutDroppingServer(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := writeSelfSignedCert(t, dir)

	backendA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer backendA.Close()
	backendB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer backendB.Close()

	configPath := writeConfigFile(t, dir, certPath, keyPath, "a.test", backendA.Listener.Addr().String())

	httpPort := freePort(t)
	httpsPort := freePort(t)
	static := config.Static{
		ConfigFilePath: configPath,
		HTTPPort:       uint16(httpPort),
		HTTPSPort:      uint16(httpsPort),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, static, zap.NewNop()) }()

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		Timeout:   2 * time.Second,
	}
	httpsAddr := net.JoinHostPort("127.0.0.1", strconv.Itoa(httpsPort))

	requireStatus := func(host string, want int) {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, "https://"+httpsAddr+"/", nil)
		require.NoError(t, err)
		req.Host = host

		var resp *http.Response
		require.Eventually(t, func() bool {
			resp, err = client.Do(req)
			return err == nil
		}, 2*time.Second, 20*time.Millisecond)
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		require.Equal(t, want, resp.StatusCode)
	}

	requireStatus("a.test", http.StatusTeapot)
	requireStatus("b.test", http.StatusNotFound)

	writeConfigFile(t, dir, certPath, keyPath, "b.test", backendB.Listener.Addr().String())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	time.Sleep(200 * time.Millisecond)

	requireStatus("b.test", http.StatusAccepted)
	requireStatus("a.test", http.StatusNotFound)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
