package authtoken

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// RefreshTokenTTL is how long a freshly issued refresh token remains valid.
const RefreshTokenTTL = 7 * 24 * time.Hour

// RefreshTokenLength is the number of random bytes in a refresh token,
// before URL-safe base64 encoding.
const RefreshTokenLength = 32

// RefreshRecord is one entry in the rotation family, keyed by sha256(token)
// in a Store.
type RefreshRecord struct {
	Username   string  `json:"username"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt  string  `json:"created_at"`
	ExpiresAt  string  `json:"expires_at"`
	Used       bool    `json:"used"`
	RotatedTo  *string `json:"rotated_to"`
}

// Store persists refresh-token records keyed by token hash. Implementations
// must serialize mutation so it is safe against concurrent rotations.
type Store interface {
	Get(ctx context.Context, tokenHash string) (RefreshRecord, bool, error)
	Put(ctx context.Context, tokenHash string, record RefreshRecord) error
	Delete(ctx context.Context, tokenHash string) error
	// FindRotatedFrom returns every hash whose record's RotatedTo equals target.
	FindRotatedFrom(ctx context.Context, target string) ([]string, error)
	// DeleteByUsername deletes every record for username, returning the count removed.
	DeleteByUsername(ctx context.Context, username string) (int, error)
}

// RotationResult is returned by ValidateAndRotate on success.
type RotationResult struct {
	Username string
	NewToken string
}

// Manager issues, validates, and rotates refresh tokens against a Store.
type Manager struct {
	store Store
}

// NewRefreshManager wraps store.
func NewRefreshManager(store Store) *Manager {
	return &Manager{store: store}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	buf := make([]byte, RefreshTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "generate refresh token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue generates a new refresh token for username bound to fingerprint,
// persists its record, and returns the plaintext token.
func (m *Manager) Issue(ctx context.Context, username, fingerprint string) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	record := RefreshRecord{
		Username:    username,
		Fingerprint: fingerprint,
		CreatedAt:   now.Format(time.RFC3339),
		ExpiresAt:   now.Add(RefreshTokenTTL).Format(time.RFC3339),
	}
	if err := m.store.Put(ctx, hashToken(token), record); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateAndRotate validates a refresh token and rotates it: a hit that
// is unused and unexpired is marked used, a fresh token is minted in its
// place, and the two are linked via RotatedTo. Reuse of a used token or a
// fingerprint mismatch invalidates the family and returns apperr.Replay;
// an expired token has only its own record deleted and, like an unknown
// token, returns apperr.Unauthenticated.
func (m *Manager) ValidateAndRotate(ctx context.Context, token, fingerprint string) (*RotationResult, error) {
	tokenHash := hashToken(token)
	record, ok, err := m.store.Get(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthenticated("unknown refresh token")
	}

	if record.Used {
		m.invalidateFamily(ctx, tokenHash)
		return nil, apperr.Replay("refresh token reuse detected")
	}

	expiresAt, parseErr := time.Parse(time.RFC3339, record.ExpiresAt)
	if parseErr == nil && time.Now().UTC().After(expiresAt) {
		_ = m.store.Delete(ctx, tokenHash)
		return nil, apperr.Unauthenticated("refresh token expired")
	}

	if record.Fingerprint != "" && fingerprint != "" && record.Fingerprint != fingerprint {
		m.invalidateFamily(ctx, tokenHash)
		return nil, apperr.Replay("refresh token fingerprint mismatch")
	}

	newFingerprint := fingerprint
	if newFingerprint == "" {
		newFingerprint = record.Fingerprint
	}
	newToken, err := m.Issue(ctx, record.Username, newFingerprint)
	if err != nil {
		return nil, err
	}

	newHash := hashToken(newToken)
	record.Used = true
	record.RotatedTo = &newHash
	if err := m.store.Put(ctx, tokenHash, record); err != nil {
		return nil, err
	}

	return &RotationResult{Username: record.Username, NewToken: newToken}, nil
}

// invalidateFamily deletes tokenHash and transitively every record linked
// to it by a rotated_to pointer in either direction — the record it was
// rotated from, and every record rotated from it — following the chain to
// a fixpoint.
func (m *Manager) invalidateFamily(ctx context.Context, tokenHash string) {
	m.invalidateFamilyVisited(ctx, tokenHash, make(map[string]bool))
}

func (m *Manager) invalidateFamilyVisited(ctx context.Context, tokenHash string, visited map[string]bool) {
	if visited[tokenHash] {
		return
	}
	visited[tokenHash] = true

	record, ok, err := m.store.Get(ctx, tokenHash)
	_ = m.store.Delete(ctx, tokenHash)
	if err == nil && ok && record.RotatedTo != nil {
		m.invalidateFamilyVisited(ctx, *record.RotatedTo, visited)
	}

	children, err := m.store.FindRotatedFrom(ctx, tokenHash)
	if err != nil {
		return
	}
	for _, child := range children {
		m.invalidateFamilyVisited(ctx, child, visited)
	}
}

// Revoke invalidates the family containing token (used by logout and by
// sensitive account changes).
func (m *Manager) Revoke(ctx context.Context, token string) {
	m.invalidateFamily(ctx, hashToken(token))
}

// RevokeAllForUser deletes every refresh record belonging to username.
func (m *Manager) RevokeAllForUser(ctx context.Context, username string) (int, error) {
	return m.store.DeleteByUsername(ctx, username)
}
