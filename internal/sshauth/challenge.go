package sshauth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// nonceLength is the number of random bytes in an issued challenge, before
// URL-safe base64 encoding.
const nonceLength = 32

// ChallengeStore holds one-shot login nonces, keyed by username. A
// challenge is consumed (and deleted) the first time it's presented back,
// so a captured challenge/response pair cannot be replayed.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]string
}

// NewChallengeStore returns an empty store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{challenges: make(map[string]string)}
}

// Issue generates a fresh challenge for username, replacing any challenge
// already pending for that user.
func (c *ChallengeStore) Issue(username string) (string, error) {
	buf := make([]byte, nonceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "generate SSH login challenge")
	}
	challenge := base64.RawURLEncoding.EncodeToString(buf)

	c.mu.Lock()
	c.challenges[username] = challenge
	c.mu.Unlock()
	return challenge, nil
}

// Consume returns username's pending challenge and removes it. The second
// call for the same username returns ok=false.
func (c *ChallengeStore) Consume(username string) (challenge string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	challenge, ok = c.challenges[username]
	if ok {
		delete(c.challenges, username)
	}
	return challenge, ok
}
