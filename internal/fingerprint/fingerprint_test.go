package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newRequest(ua, remoteAddr, lang, enc string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", ua)
	r.Header.Set("Accept-Language", lang)
	r.Header.Set("Accept-Encoding", enc)
	r.RemoteAddr = remoteAddr
	return r
}

func TestGenerateIsDeterministic(t *testing.T) {
	r1 := newRequest("curl/8.0", "203.0.113.10:54321", "en-US", "gzip")
	r2 := newRequest("curl/8.0", "203.0.113.10:9999", "en-US", "gzip")

	assert.Equal(t, Generate(r1), Generate(r2), "port should not affect the fingerprint")
}

func TestGenerateDiffersOnUserAgent(t *testing.T) {
	r1 := newRequest("curl/8.0", "203.0.113.10:1", "en-US", "gzip")
	r2 := newRequest("firefox/120", "203.0.113.10:1", "en-US", "gzip")

	assert.NotEqual(t, Generate(r1), Generate(r2))
}

func TestGenerateToleratesSameSubnet(t *testing.T) {
	r1 := newRequest("curl/8.0", "203.0.113.10:1", "en-US", "gzip")
	r2 := newRequest("curl/8.0", "203.0.113.250:1", "en-US", "gzip")

	assert.Equal(t, Generate(r1), Generate(r2), "same /24 subnet should bind the same fingerprint")
}

func TestGenerateDiffersAcrossSubnets(t *testing.T) {
	r1 := newRequest("curl/8.0", "203.0.113.10:1", "en-US", "gzip")
	r2 := newRequest("curl/8.0", "203.0.114.10:1", "en-US", "gzip")

	assert.NotEqual(t, Generate(r1), Generate(r2))
}

func TestValidateMatchesStoredFingerprint(t *testing.T) {
	r := newRequest("curl/8.0", "203.0.113.10:1", "en-US", "gzip")
	stored := Generate(r)

	assert.True(t, Validate(r, stored, false))
	assert.True(t, Validate(r, stored, true))
}

func TestValidateRejectsMismatch(t *testing.T) {
	r := newRequest("curl/8.0", "203.0.113.10:1", "en-US", "gzip")
	assert.False(t, Validate(r, "0000000000000000000000000000000000000000000000000000000000000000", false))
}

func TestXForwardedForTakesPrecedence(t *testing.T) {
	r := newRequest("curl/8.0", "10.0.0.1:1", "en-US", "gzip")
	r.Header.Set("X-Forwarded-For", "203.0.113.10, 10.0.0.2")

	info := GetInfo(r)
	assert.Equal(t, "203.0.113.10", info.IP)
}

func TestXRealIPUsedWhenNoForwardedFor(t *testing.T) {
	r := newRequest("curl/8.0", "10.0.0.1:1", "en-US", "gzip")
	r.Header.Set("X-Real-IP", "203.0.113.20")

	info := GetInfo(r)
	assert.Equal(t, "203.0.113.20", info.IP)
}

func TestFallsBackToRemoteAddrWithoutProxyHeaders(t *testing.T) {
	r := newRequest("curl/8.0", "203.0.113.30:1", "en-US", "gzip")

	info := GetInfo(r)
	assert.Equal(t, "203.0.113.30", info.IP)
}
