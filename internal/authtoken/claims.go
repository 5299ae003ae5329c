// Package authtoken implements Anchor's token/session core: short-lived
// HMAC-signed access tokens bound to a device fingerprint, and a rotating
// refresh-token family with replay detection.
package authtoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// AccessTokenTTL is the lifetime of a signed access token.
const AccessTokenTTL = 5 * time.Minute

// StepUpFreshness is how long a step-up bit stays honored after it was set.
const StepUpFreshness = 300 * time.Second

// Claims is the access token payload: subject, fingerprint binding, and an
// optional step-up freshness bit.
type Claims struct {
	Fingerprint string `json:"fpt"`
	StepUp      bool   `json:"step_up,omitempty"`
	StepUpAt    int64  `json:"step_up_at,omitempty"`
	jwt.RegisteredClaims
}

// IsStepUpFresh reports whether the token's step-up bit is both set and
// within StepUpFreshness of now.
func (c *Claims) IsStepUpFresh(now time.Time) bool {
	if !c.StepUp {
		return false
	}
	return now.Unix()-c.StepUpAt <= int64(StepUpFreshness.Seconds())
}

// Manager signs and verifies access tokens with a single server secret.
type Manager struct {
	secret []byte
	issuer string
}

// NewManager builds a Manager around secret, which must be non-empty.
func NewManager(secret []byte, issuer string) (*Manager, error) {
	if len(secret) == 0 {
		return nil, apperr.Internal("access token secret must not be empty")
	}
	return &Manager{secret: secret, issuer: issuer}, nil
}

// Issue mints an access token for subject bound to fingerprint. If stepUp
// is true, the token's step-up bit is set with the current time.
func (m *Manager) Issue(subject, fingerprint string, stepUp bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}
	if stepUp {
		claims.StepUp = true
		claims.StepUpAt = now.Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "sign access token")
	}
	return signed, nil
}

// Verify parses and validates tokenString, additionally rejecting it if
// requestFingerprint is non-empty and differs from the token's bound
// fingerprint — a mismatch surfaces as apperr.Unauthenticated.
func (m *Manager) Verify(tokenString, requestFingerprint string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthenticated("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeUnauthenticated, "invalid or expired access token")
	}
	if !token.Valid {
		return nil, apperr.Unauthenticated("invalid access token")
	}

	if requestFingerprint != "" && claims.Fingerprint != requestFingerprint {
		return nil, apperr.Unauthenticated("device fingerprint mismatch")
	}

	return claims, nil
}
