package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClassifiesPaths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	writeWorkingFile(t, dir, "unchanged.txt", "same")
	writeWorkingFile(t, dir, "modified.txt", "before")
	writeWorkingFile(t, dir, "deleted.txt", "bye")
	require.NoError(t, repo.Add(ctx, []string{"unchanged.txt", "modified.txt", "deleted.txt"}))

	writeWorkingFile(t, dir, "modified.txt", "after")
	require.NoError(t, os.Remove(filepath.Join(dir, "deleted.txt")))
	writeWorkingFile(t, dir, "untracked.txt", "new")

	st, err := repo.Status()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"unchanged.txt"}, st.Unchanged)
	assert.ElementsMatch(t, []string{"modified.txt"}, st.Modified)
	assert.ElementsMatch(t, []string{"deleted.txt"}, st.Deleted)
	assert.ElementsMatch(t, []string{"untracked.txt"}, st.Untracked)
}
