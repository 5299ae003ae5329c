package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlameFindsLastChangingCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v1")
	writeWorkingFile(t, dir, "b.txt", "unrelated")
	require.NoError(t, repo.Add(ctx, []string{"a.txt", "b.txt"}))
	first, err := repo.Commit(ctx, "first", false)
	require.NoError(t, err)

	// Second commit only touches b.txt; a.txt's blame should stay at first.
	writeWorkingFile(t, dir, "b.txt", "changed")
	require.NoError(t, repo.Add(ctx, []string{"b.txt"}))
	_, err = repo.Commit(ctx, "second", true)
	require.NoError(t, err)

	entry, err := repo.Blame(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, first, entry.SnapshotID)
}

func TestBlameMissingPathFails(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v1")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))
	_, err = repo.Commit(ctx, "first", false)
	require.NoError(t, err)

	_, err = repo.Blame(ctx, "missing.txt")
	assert.Error(t, err)
}
