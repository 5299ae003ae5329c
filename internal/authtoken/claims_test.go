package authtoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrips(t *testing.T) {
	m, err := NewManager([]byte("test-secret"), "anchor")
	require.NoError(t, err)

	token, err := m.Issue("alice", "fingerprint-a", false)
	require.NoError(t, err)

	claims, err := m.Verify(token, "fingerprint-a")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "fingerprint-a", claims.Fingerprint)
	assert.False(t, claims.StepUp)
}

func TestIssueAssignsDistinctTokenIDs(t *testing.T) {
	m, err := NewManager([]byte("test-secret"), "anchor")
	require.NoError(t, err)

	tokenA, err := m.Issue("alice", "fingerprint-a", false)
	require.NoError(t, err)
	tokenB, err := m.Issue("alice", "fingerprint-a", false)
	require.NoError(t, err)

	claimsA, err := m.Verify(tokenA, "fingerprint-a")
	require.NoError(t, err)
	claimsB, err := m.Verify(tokenB, "fingerprint-a")
	require.NoError(t, err)

	assert.NotEmpty(t, claimsA.ID)
	assert.NotEqual(t, claimsA.ID, claimsB.ID)
}

// S5: a token minted for one fingerprint fails verification under another.
func TestVerifyRejectsFingerprintMismatch(t *testing.T) {
	m, err := NewManager([]byte("test-secret"), "anchor")
	require.NoError(t, err)

	token, err := m.Issue("alice", "fingerprint-a", false)
	require.NoError(t, err)

	_, err = m.Verify(token, "fingerprint-b")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}

func TestVerifyIgnoresFingerprintWhenRequestHasNone(t *testing.T) {
	m, err := NewManager([]byte("test-secret"), "anchor")
	require.NoError(t, err)

	token, err := m.Issue("alice", "fingerprint-a", false)
	require.NoError(t, err)

	_, err = m.Verify(token, "")
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m, err := NewManager([]byte("test-secret"), "anchor")
	require.NoError(t, err)

	token, err := m.Issue("alice", "fingerprint-a", false)
	require.NoError(t, err)

	_, err = m.Verify(token+"tamper", "fingerprint-a")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, err := NewManager([]byte("test-secret"), "anchor")
	require.NoError(t, err)

	claims := &Claims{Fingerprint: "fpt"}
	claims.Subject = "alice"
	claims.Issuer = "anchor"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-1 * time.Minute))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	require.NoError(t, err)

	_, err = m.Verify(signed, "fpt")
	assert.Error(t, err)
}

func TestIsStepUpFreshWithinWindow(t *testing.T) {
	now := time.Now()
	claims := &Claims{StepUp: true, StepUpAt: now.Add(-100 * time.Second).Unix()}
	assert.True(t, claims.IsStepUpFresh(now))
}

// Testable property 9: step-up older than 300s is not accepted.
func TestIsStepUpFreshRejectsStaleStepUp(t *testing.T) {
	now := time.Now()
	claims := &Claims{StepUp: true, StepUpAt: now.Add(-400 * time.Second).Unix()}
	assert.False(t, claims.IsStepUpFresh(now))
}

func TestIsStepUpFreshFalseWhenNeverSet(t *testing.T) {
	claims := &Claims{}
	assert.False(t, claims.IsStepUpFresh(time.Now()))
}
