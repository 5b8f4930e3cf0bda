package proxy

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHopByHop(t *testing.T) {
	h := http.Header{}
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade", "websocket")
	h.Set("X-Custom", "keep")

	stripHopByHop(h)

	assert.Empty(t, h.Values("Keep-Alive"))
	assert.Empty(t, h.Values("Connection"))
	assert.Empty(t, h.Values("Upgrade"))
	assert.Equal(t, "keep", h.Get("X-Custom"))
}

func TestCoalesceCookies(t *testing.T) {
	h := http.Header{}
	h.Add("Cookie", "a=1")
	h.Add("Cookie", "b=2")

	coalesceCookies(h)

	assert.Equal(t, []string{"a=1; b=2"}, h.Values("Cookie"))
}

func TestCoalesceCookiesSingleValueUnchanged(t *testing.T) {
	h := http.Header{}
	h.Add("Cookie", "a=1")

	coalesceCookies(h)

	assert.Equal(t, []string{"a=1"}, h.Values("Cookie"))
}

func TestCoalesceCookiesNoneIsNoop(t *testing.T) {
	h := http.Header{}
	coalesceCookies(h)
	assert.Empty(t, h.Values("Cookie"))
}

func TestSetHostHeaderValid(t *testing.T) {
	r := &http.Request{Header: http.Header{}}
	setHostHeader(r, "example.com")
	assert.Equal(t, "example.com", r.Host)
	assert.Equal(t, "example.com", r.Header.Get("Host"))
}

func TestSetHostHeaderInvalidIsSkipped(t *testing.T) {
	r := &http.Request{Header: http.Header{}, Host: "original.test"}
	setHostHeader(r, "bad\x00host")
	assert.Equal(t, "original.test", r.Host)
	assert.Empty(t, r.Header.Get("Host"))
}

func TestPathAndQuery(t *testing.T) {
	u, err := url.Parse("/foo?x=1")
	assert.NoError(t, err)
	assert.Equal(t, "/foo?x=1", pathAndQuery(u))

	u, err = url.Parse("/bar")
	assert.NoError(t, err)
	assert.Equal(t, "/bar", pathAndQuery(u))
}
