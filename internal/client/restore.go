package client

import (
	"context"
	"os"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Restore rewrites path in the working directory from the index's
// recorded blob, discarding any local modification. Unlike Reset's path
// mode (which restores the index entry from a snapshot), Restore moves
// data the other direction: index -> working directory.
func (r *Repo) Restore(ctx context.Context, path string) error {
	idx, err := readIndex(r.AnchorDir)
	if err != nil {
		return err
	}
	blobID, ok := idx[path]
	if !ok {
		return apperr.NotFound(path + " is not tracked")
	}
	data, err := r.Snapshot.Store.GetBlob(ctx, blobID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.WorkingPath(path), data, 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write "+path)
	}
	return nil
}
