package client

import (
	"context"
)

// GCReport counts objects reachable from every local ref. Anchor never
// specifies an object-deletion policy, so GC deletes nothing; it exists
// to tell a user how much history their refs are pinning before they
// decide whether (and how) to prune a backend out of band.
type GCReport struct {
	Branches           int
	ReachableSnapshots int
	ReachableTrees     int
	ReachableBlobs     int
}

// GC walks every local branch's ancestor chain and each chain's root
// trees, counting distinct reachable snapshot, tree, and blob ids. It
// performs no writes.
func (r *Repo) GC(ctx context.Context) (GCReport, error) {
	branches, err := r.Branches()
	if err != nil {
		return GCReport{}, err
	}

	seenSnapshots := map[string]bool{}
	seenTrees := map[string]bool{}
	seenBlobs := map[string]bool{}

	for _, b := range branches {
		history, err := r.Snapshot.HistoryFrom(ctx, b.SnapshotID)
		if err != nil {
			return GCReport{}, err
		}
		for _, snap := range history {
			if seenSnapshots[snap.SnapshotID] {
				continue
			}
			seenSnapshots[snap.SnapshotID] = true

			if seenTrees[snap.RootTree] {
				continue
			}
			seenTrees[snap.RootTree] = true

			tree, err := r.Snapshot.Store.GetTree(ctx, snap.RootTree)
			if err != nil {
				return GCReport{}, err
			}
			for _, entry := range tree.Entries {
				seenBlobs[entry.ID] = true
			}
		}
	}

	return GCReport{
		Branches:           len(branches),
		ReachableSnapshots: len(seenSnapshots),
		ReachableTrees:     len(seenTrees),
		ReachableBlobs:     len(seenBlobs),
	}, nil
}
