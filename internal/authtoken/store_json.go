package authtoken

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/logger"
)

// JSONFileStore persists refresh records in a single JSON file, loaded at
// startup (pruning expired records) and rewritten after every mutation.
// Mutation is serialized by an in-process mutex so concurrent rotations
// never interleave their rewrites.
type JSONFileStore struct {
	mu   sync.Mutex
	path string
	data map[string]RefreshRecord
}

// NewJSONFileStore loads (or creates) the refresh-token file at path.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path, data: make(map[string]RefreshRecord)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "read refresh token store")
	}
	var data map[string]RefreshRecord
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("refresh token store %s is corrupt, starting empty: %v", s.path, err)
		return nil
	}
	s.data = data
	s.pruneExpiredLocked()
	return nil
}

func (s *JSONFileStore) pruneExpiredLocked() {
	now := time.Now().UTC()
	for hash, record := range s.data {
		expiresAt, err := time.Parse(time.RFC3339, record.ExpiresAt)
		if err == nil && now.After(expiresAt) {
			delete(s.data, hash)
		}
	}
}

func (s *JSONFileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create refresh token store directory")
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "encode refresh token store")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tmp-refresh-*")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create temp refresh token file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return apperr.Wrap(err, apperr.CodeInternal, "write temp refresh token file")
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "close temp refresh token file")
	}
	return apperr.Wrap(os.Rename(tmpName, s.path), apperr.CodeInternal, "rename refresh token store into place")
}

func (s *JSONFileStore) Get(ctx context.Context, tokenHash string) (RefreshRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.data[tokenHash]
	return record, ok, nil
}

func (s *JSONFileStore) Put(ctx context.Context, tokenHash string, record RefreshRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tokenHash] = record
	return s.persistLocked()
}

func (s *JSONFileStore) Delete(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[tokenHash]; !ok {
		return nil
	}
	delete(s.data, tokenHash)
	return s.persistLocked()
}

func (s *JSONFileStore) FindRotatedFrom(ctx context.Context, target string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hashes []string
	for hash, record := range s.data {
		if record.RotatedTo != nil && *record.RotatedTo == target {
			hashes = append(hashes, hash)
		}
	}
	return hashes, nil
}

func (s *JSONFileStore) DeleteByUsername(ctx context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for hash, record := range s.data {
		if record.Username == username {
			delete(s.data, hash)
			count++
		}
	}
	if count > 0 {
		if err := s.persistLocked(); err != nil {
			return count, err
		}
	}
	return count, nil
}
