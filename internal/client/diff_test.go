package client

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffWorkingTreeAgainstIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "line one\n")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))

	writeWorkingFile(t, dir, "a.txt", "line one\nline two\n")

	diffs, err := repo.Diff(ctx, false)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "a.txt", diffs[0].Path)
	assert.Contains(t, diffs[0].Text, "line two")
}

func TestDiffStagedAgainstHead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v1\n")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))
	_, err = repo.Commit(ctx, "first", false)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v2\n")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))

	diffs, err := repo.Diff(ctx, true)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.True(t, strings.Contains(diffs[0].Text, "v2"))
}

func TestDiffNoChangesIsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v1\n")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))
	_, err = repo.Commit(ctx, "first", false)
	require.NoError(t, err)

	diffs, err := repo.Diff(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}
