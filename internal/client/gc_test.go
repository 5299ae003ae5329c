package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCCountsReachableObjects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v1")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))
	_, err = repo.Commit(ctx, "first", false)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "a.txt", "v2")
	require.NoError(t, repo.Add(ctx, []string{"a.txt"}))
	_, err = repo.Commit(ctx, "second", false)
	require.NoError(t, err)

	report, err := repo.GC(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Branches)
	assert.Equal(t, 2, report.ReachableSnapshots)
	assert.Equal(t, 2, report.ReachableTrees)
	assert.Equal(t, 2, report.ReachableBlobs)
}
