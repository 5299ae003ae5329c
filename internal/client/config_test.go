package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetGetSaveLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Set("user.name", "ada")
	cfg.SetRemote("origin", "https://anchor.example.com/repos/demo")
	require.NoError(t, cfg.Save(dir))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)

	v, ok := loaded.Get("user.name")
	require.True(t, ok)
	assert.Equal(t, "ada", v)

	url, ok := loaded.Remote("origin")
	require.True(t, ok)
	assert.Equal(t, "https://anchor.example.com/repos/demo", url)
}

func TestConfigRemotesLists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetRemote("origin", "https://a.example.com/repos/x")
	cfg.SetRemote("upstream", "https://b.example.com/repos/x")

	remotes := cfg.Remotes()
	require.Len(t, remotes, 2)
	assert.Equal(t, "origin", remotes[0].Name)
	assert.Equal(t, "upstream", remotes[1].Name)
}

func TestConfigMissingFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.All())
}
