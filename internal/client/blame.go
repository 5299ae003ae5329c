package client

import (
	"context"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/objectstore"
)

// BlameEntry names the commit that last changed a path.
type BlameEntry struct {
	SnapshotID string
	Message    string
	Timestamp  string
}

// Blame walks HEAD's history and returns the most recent snapshot where
// path's blob id differs from its parent's (or is newly introduced).
func (r *Repo) Blame(ctx context.Context, path string) (BlameEntry, error) {
	ref, _, err := r.HEADRef()
	if err != nil {
		return BlameEntry{}, err
	}
	history, err := r.Snapshot.HistoryFrom(ctx, ref)
	if err != nil {
		return BlameEntry{}, err
	}
	if len(history) == 0 {
		return BlameEntry{}, apperr.NotFound("no history for path " + path)
	}

	for _, snap := range history {
		tree, err := r.Snapshot.Store.GetTree(ctx, snap.RootTree)
		if err != nil {
			return BlameEntry{}, err
		}
		entry, present := tree.Entries[path]
		if !present {
			continue
		}

		if snap.Parent == nil {
			return toBlameEntry(snap), nil
		}
		parentTree, err := r.loadTree(ctx, *snap.Parent)
		if err != nil {
			return BlameEntry{}, err
		}
		parentEntry, inParent := parentTree.Entries[path]
		if !inParent || parentEntry.ID != entry.ID {
			return toBlameEntry(snap), nil
		}
	}
	return BlameEntry{}, apperr.NotFound("path " + path + " not found in history")
}

func toBlameEntry(snap objectstore.Snapshot) BlameEntry {
	return BlameEntry{SnapshotID: snap.SnapshotID, Message: snap.Message, Timestamp: snap.Timestamp}
}
