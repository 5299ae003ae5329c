package client

import (
	"context"
	"os"
	"path/filepath"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Merge fast-forwards the current branch to branchName's snapshot if the
// current HEAD is an ancestor of it, advancing the ref and overwriting
// the working tree (and index) from the target tree. Any other history
// shape — including a true three-way merge — is reported as unsupported;
// Anchor's client replica implements fast-forward only.
func (r *Repo) Merge(ctx context.Context, branchName string) error {
	ref, ok, err := r.HEADRef()
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invalid("cannot merge with a detached HEAD")
	}

	targetID, err := r.Snapshot.ReadRef("heads/" + branchName)
	if err != nil {
		return err
	}
	if targetID == "" {
		return apperr.NotFound("branch " + branchName + " not found")
	}

	headID, err := r.HEADSnapshot()
	if err != nil {
		return err
	}
	if headID == targetID {
		return nil
	}

	ancestors, err := r.Snapshot.HistoryFrom(ctx, targetID)
	if err != nil {
		return err
	}
	fastForward := headID == ""
	for _, snap := range ancestors {
		if snap.SnapshotID == headID {
			fastForward = true
			break
		}
	}
	if !fastForward {
		return apperr.Invalid("not supported: " + branchName + " has diverged from the current branch")
	}

	if err := r.checkoutTreeToWorkingDir(ctx, targetID); err != nil {
		return err
	}
	if err := r.Snapshot.WriteRef(ref, targetID); err != nil {
		return err
	}
	return r.AppendReflog(headID, targetID, "merge", "fast-forward "+branchName)
}

// checkoutTreeToWorkingDir materializes snapshotID's tree onto disk and
// replaces the index with it — used by Merge and Reset(hard).
func (r *Repo) checkoutTreeToWorkingDir(ctx context.Context, snapshotID string) error {
	tree, err := r.loadTree(ctx, snapshotID)
	if err != nil {
		return err
	}

	idx := Index{}
	for path, entry := range tree.Entries {
		data, err := r.Snapshot.Store.GetBlob(ctx, entry.ID)
		if err != nil {
			return err
		}
		dest := r.WorkingPath(path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return apperr.Wrap(err, apperr.CodeInternal, "create working directory")
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return apperr.Wrap(err, apperr.CodeInternal, "write working file")
		}
		idx[path] = entry.ID
	}

	return writeIndex(r.AnchorDir, idx)
}
