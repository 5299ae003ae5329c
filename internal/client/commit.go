package client

import (
	"context"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/objectstore"
)

// Commit builds a tree from the index (re-hashing tracked files and
// dropping deleted ones first when all is set), stores it, derives the
// snapshot id with the exact formula the server uses, stores the
// snapshot, and advances HEAD. It returns the new snapshot id.
func (r *Repo) Commit(ctx context.Context, message string, all bool) (string, error) {
	idx, err := readIndex(r.AnchorDir)
	if err != nil {
		return "", err
	}
	if all {
		idx, err = r.rehashTracked(ctx, idx)
		if err != nil {
			return "", err
		}
		if err := writeIndex(r.AnchorDir, idx); err != nil {
			return "", err
		}
	}
	if len(idx) == 0 {
		return "", apperr.Invalid("nothing to commit: index is empty")
	}

	entries := make(map[string]objectstore.TreeEntry, len(idx))
	for path, blobID := range idx {
		entries[path] = objectstore.TreeEntry{Type: "blob", ID: blobID}
	}
	treeID, err := r.Snapshot.Store.PutTree(ctx, objectstore.Tree{Entries: entries})
	if err != nil {
		return "", err
	}

	parent, err := r.HEADSnapshot()
	if err != nil {
		return "", err
	}

	snapshotID := objectstore.SnapshotID(treeID, parent)

	var parentPtr *string
	if parent != "" {
		p := parent
		parentPtr = &p
	}
	snap := objectstore.Snapshot{
		SnapshotID: snapshotID,
		RootTree:   treeID,
		Parent:     parentPtr,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.Snapshot.Store.PutSnapshot(ctx, snap); err != nil {
		return "", err
	}

	if err := r.AdvanceHEAD(snapshotID); err != nil {
		return "", err
	}
	if err := r.AppendReflog(parent, snapshotID, "commit", message); err != nil {
		return "", err
	}

	return snapshotID, nil
}
