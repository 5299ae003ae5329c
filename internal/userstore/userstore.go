package userstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Store roots every user's data under <root>/users/<name>/.
type Store struct {
	root string
}

// New wraps the users/ directory inside svcsRoot.
func New(svcsRoot string) *Store {
	return &Store{root: filepath.Join(svcsRoot, "users")}
}

func (s *Store) userDir(username string) string { return filepath.Join(s.root, username) }

func (s *Store) path(username, file string) string {
	return filepath.Join(s.userDir(username), file)
}

// Profile is a user's display attributes.
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	Website   string `json:"website"`
	AvatarURL string `json:"avatar_url"`
}

func defaultProfile(username string) Profile {
	return Profile{
		Username:  username,
		Bio:       "No bio yet.",
		Location:  "Unknown",
		Website:   "",
		AvatarURL: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s&accessories=prescription02", username),
	}
}

// GetProfile returns username's profile, or a generated default if none
// has ever been saved.
func (s *Store) GetProfile(username string) (Profile, error) {
	data, err := os.ReadFile(s.path(username, "profile.json"))
	if os.IsNotExist(err) {
		return defaultProfile(username), nil
	}
	if err != nil {
		return Profile{}, apperr.Wrap(err, apperr.CodeInternal, "read profile")
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, apperr.Wrap(err, apperr.CodeInternal, "decode profile")
	}
	return profile, nil
}

// UpdateProfile merges updates onto the current profile (zero-value fields
// in updates are not applied, matching the source's shallow-merge
// semantics) and persists the result.
func (s *Store) UpdateProfile(username string, updates Profile) (Profile, error) {
	current, err := s.GetProfile(username)
	if err != nil {
		return Profile{}, err
	}

	if updates.Bio != "" {
		current.Bio = updates.Bio
	}
	if updates.Location != "" {
		current.Location = updates.Location
	}
	if updates.Website != "" {
		current.Website = updates.Website
	}
	if updates.AvatarURL != "" {
		current.AvatarURL = updates.AvatarURL
	}

	if err := os.MkdirAll(s.userDir(username), 0o755); err != nil {
		return Profile{}, apperr.Wrap(err, apperr.CodeInternal, "create user directory")
	}
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return Profile{}, apperr.Wrap(err, apperr.CodeInternal, "encode profile")
	}
	if err := os.WriteFile(s.path(username, "profile.json"), data, 0o644); err != nil {
		return Profile{}, apperr.Wrap(err, apperr.CodeInternal, "write profile")
	}
	return current, nil
}

// SSHKey is one registered public key. ID is the first 8 hex characters
// of sha256(Key).
type SSHKey struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Key       string `json:"key"`
	CreatedAt string `json:"created_at"`
}

func keyID(publicKey string) string {
	sum := sha256.Sum256([]byte(publicKey))
	return hex.EncodeToString(sum[:])[:8]
}

// GetKeys returns username's registered SSH keys, or an empty slice if
// none have been added.
func (s *Store) GetKeys(username string) ([]SSHKey, error) {
	data, err := os.ReadFile(s.path(username, "keys.json"))
	if os.IsNotExist(err) {
		return []SSHKey{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "read keys")
	}
	var keys []SSHKey
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "decode keys")
	}
	return keys, nil
}

func (s *Store) writeKeys(username string, keys []SSHKey) error {
	if err := os.MkdirAll(s.userDir(username), 0o755); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create user directory")
	}
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "encode keys")
	}
	if err := os.WriteFile(s.path(username, "keys.json"), data, 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write keys")
	}
	return nil
}

// AddKey appends a new SSH public key, deriving its id from its content,
// and returns the full updated key list.
func (s *Store) AddKey(username, title, publicKey string) ([]SSHKey, error) {
	if strings.TrimSpace(publicKey) == "" {
		return nil, apperr.Invalid("SSH key must not be empty")
	}
	keys, err := s.GetKeys(username)
	if err != nil {
		return nil, err
	}
	keys = append(keys, SSHKey{
		ID:        keyID(publicKey),
		Title:     title,
		Key:       publicKey,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err := s.writeKeys(username, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteKey removes the key with the given id and returns the updated list.
func (s *Store) DeleteKey(username, keyID string) ([]SSHKey, error) {
	keys, err := s.GetKeys(username)
	if err != nil {
		return nil, err
	}
	kept := keys[:0]
	for _, k := range keys {
		if k.ID != keyID {
			kept = append(kept, k)
		}
	}
	if err := s.writeKeys(username, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// TwoFactor is a user's 2FA enablement state.
type TwoFactor struct {
	Enabled bool   `json:"enabled"`
	Secret  string `json:"secret,omitempty"`
}

// GetTwoFactor returns username's 2FA state, defaulting to disabled.
func (s *Store) GetTwoFactor(username string) (TwoFactor, error) {
	data, err := os.ReadFile(s.path(username, "auth_2fa.json"))
	if os.IsNotExist(err) {
		return TwoFactor{Enabled: false}, nil
	}
	if err != nil {
		return TwoFactor{}, apperr.Wrap(err, apperr.CodeInternal, "read 2fa state")
	}
	var tf TwoFactor
	if err := json.Unmarshal(data, &tf); err != nil {
		return TwoFactor{}, apperr.Wrap(err, apperr.CodeInternal, "decode 2fa state")
	}
	return tf, nil
}

// SetTwoFactor persists username's 2FA enablement state.
func (s *Store) SetTwoFactor(username string, tf TwoFactor) error {
	if err := os.MkdirAll(s.userDir(username), 0o755); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create user directory")
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "encode 2fa state")
	}
	if err := os.WriteFile(s.path(username, "auth_2fa.json"), data, 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write 2fa state")
	}
	return nil
}

// SetPasswordHash persists a bcrypt hash to password.hash.
func (s *Store) SetPasswordHash(username, hash string) error {
	if err := os.MkdirAll(s.userDir(username), 0o755); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create user directory")
	}
	if err := os.WriteFile(s.path(username, "password.hash"), []byte(hash), 0o600); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write password hash")
	}
	return nil
}

// GetPasswordHash reads the persisted bcrypt hash, or "" if none exists.
func (s *Store) GetPasswordHash(username string) (string, error) {
	data, err := os.ReadFile(s.path(username, "password.hash"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "read password hash")
	}
	return strings.TrimSpace(string(data)), nil
}

// RenameUser moves a user's entire directory to a new name. Fails with
// Conflict if the destination already exists.
func (s *Store) RenameUser(oldUsername, newUsername string) error {
	oldDir := s.userDir(oldUsername)
	newDir := s.userDir(newUsername)

	if _, err := os.Stat(oldDir); os.IsNotExist(err) {
		return apperr.NotFound("user not found")
	}
	if _, err := os.Stat(newDir); err == nil {
		return apperr.Conflict(fmt.Sprintf("user %q already exists", newUsername))
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "rename user directory")
	}
	return nil
}
