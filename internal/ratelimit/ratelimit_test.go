package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func newRequest(remoteAddr string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remoteAddr
	return r
}

func TestAllowWithinBurstSucceeds(t *testing.T) {
	l := New(1, 3)
	defer l.Close()

	r := newRequest("203.0.113.10:1")
	assert.True(t, l.Allow(r))
	assert.True(t, l.Allow(r))
	assert.True(t, l.Allow(r))
}

func TestAllowRejectsBeyondBurst(t *testing.T) {
	l := New(0.001, 2)
	defer l.Close()

	r := newRequest("203.0.113.11:1")
	assert.True(t, l.Allow(r))
	assert.True(t, l.Allow(r))
	assert.False(t, l.Allow(r), "third request within the same instant should exceed the burst")
}

func TestDifferentIPsHaveIndependentBudgets(t *testing.T) {
	l := New(0.001, 1)
	defer l.Close()

	r1 := newRequest("203.0.113.12:1")
	r2 := newRequest("203.0.113.13:1")

	assert.True(t, l.Allow(r1))
	assert.False(t, l.Allow(r1))
	assert.True(t, l.Allow(r2), "a fresh IP has its own budget")
}

func TestCheckReturnsRateLimitedError(t *testing.T) {
	l := New(0.001, 1)
	defer l.Close()

	r := newRequest("203.0.113.14:1")
	assert.NoError(t, l.Check(r))

	err := l.Check(r)
	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeRateLimited))
}

func TestClientIPPrefersForwardedThenRealIPThenRemoteAddr(t *testing.T) {
	r := newRequest("10.0.0.1:1")
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Real-IP", "203.0.113.20")
	assert.Equal(t, "203.0.113.20", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.21, 10.0.0.2")
	assert.Equal(t, "203.0.113.21", clientIP(r))
}
