package main

import (
	"os"
	"path/filepath"

	"github.com/anchorvcs/anchor/internal/client"
)

// sessionDir holds account-level CLI state (server URL, bearer token)
// that isn't scoped to any one working copy. It reuses client.Config's
// flat key=value file format by simply pointing LoadConfig/Save at a
// directory outside any .anchor replica.
func sessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".anchor")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func loadSession() (*client.Config, error) {
	dir, err := sessionDir()
	if err != nil {
		return nil, err
	}
	return client.LoadConfig(dir)
}

func saveSession(cfg *client.Config) error {
	dir, err := sessionDir()
	if err != nil {
		return err
	}
	return cfg.Save(dir)
}
