package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("ANCHOR_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "local", cfg.Storage.Backend)
}

func TestLoadMergesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchord.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9999"
jwt_secret: "from-file"
storage:
  backend: local
  local_path: /tmp/objects
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "from-file", cfg.JWTSecret)

	t.Setenv("ANCHOR_JWT_SECRET", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret, "environment variables override the file")
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = "x"
	cfg.Storage.Backend = "dropbox"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptySecret(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingBucketForS3(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = "x"
	cfg.Storage.Backend = "s3"
	assert.Error(t, cfg.Validate())

	cfg.Storage.S3Bucket = "anchor-objects"
	assert.NoError(t, cfg.Validate())
}

func TestWatchFileReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchord.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jwt_secret: "v1"
`), 0o644))

	w, err := WatchFile(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "v1", w.Current().JWTSecret)

	require.NoError(t, os.WriteFile(path, []byte(`
jwt_secret: "v2"
`), 0o644))

	require.Eventually(t, func() bool {
		return w.Current().JWTSecret == "v2"
	}, 2*time.Second, 50*time.Millisecond, "watcher should pick up the rewritten file")
}
