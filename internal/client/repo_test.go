package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	for _, sub := range []string{"objects", filepath.Join("refs", "heads"), filepath.Join("refs", "remotes"), "logs"} {
		info, err := os.Stat(filepath.Join(repo.AnchorDir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	ref, ok, err := repo.HEADRef()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "heads/main", ref)
}

func TestInitRefusesDoubleInit(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	_, err = Init(dir)
	assert.Error(t, err)
}

func TestOpenMissingReplicaFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	assert.Error(t, err)
}

func TestDetachHEAD(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	require.NoError(t, repo.DetachHEAD("s_123"))

	ref, ok, err := repo.HEADRef()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "s_123", ref)

	snap, err := repo.HEADSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "s_123", snap)
}

func TestReflogAppendAndRead(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	require.NoError(t, repo.AppendReflog("", "s_1", "commit", "first"))
	require.NoError(t, repo.AppendReflog("s_1", "s_2", "commit", "second"))

	lines, err := repo.Reflog()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "s_1 s_2 commit: second")
}
