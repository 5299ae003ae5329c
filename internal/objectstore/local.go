package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalBackend implements Backend on the local filesystem, rooted at a
// repository's objects/ directory. Writes are rename-atomic: content is
// written to a sibling temp file first, then renamed into place, so a
// reader never observes a partially written object.
type LocalBackend struct {
	root string
}

// NewLocalBackend creates a filesystem-rooted backend, creating root if
// it doesn't already exist.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create object store root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve object store root: %w", err)
	}
	return &LocalBackend{root: abs}, nil
}

func (l *LocalBackend) Type() string { return "local" }

func (l *LocalBackend) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (l *LocalBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if os.IsNotExist(err) {
		return nil, &ErrBackendNotFound{Key: key}
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (l *LocalBackend) Put(ctx context.Context, key string, data []byte) error {
	dest := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file for %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename into place for %s: %w", key, err)
	}
	return nil
}
