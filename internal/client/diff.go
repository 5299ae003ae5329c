package client

import (
	"context"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// FileDiff is one path's unified diff.
type FileDiff struct {
	Path string
	Text string
}

// Diff computes the working tree vs index diff (staged=false) or the
// index vs HEAD tree diff (staged=true), emitting one unified diff per
// changed path.
func (r *Repo) Diff(ctx context.Context, staged bool) ([]FileDiff, error) {
	idx, err := readIndex(r.AnchorDir)
	if err != nil {
		return nil, err
	}

	if staged {
		return r.diffIndexAgainstHead(ctx, idx)
	}
	return r.diffWorkingTreeAgainstIndex(idx)
}

func (r *Repo) diffWorkingTreeAgainstIndex(idx Index) ([]FileDiff, error) {
	var diffs []FileDiff
	for path, blobID := range idx {
		onDisk, err := os.ReadFile(r.WorkingPath(path))
		if os.IsNotExist(err) {
			staged, err := r.Snapshot.Store.GetBlob(context.Background(), blobID)
			if err != nil {
				return nil, err
			}
			diffs = append(diffs, unifiedDiff(path, staged, nil))
			continue
		}
		if err != nil {
			return nil, err
		}
		hash, err := hashFile(r.WorkingPath(path))
		if err != nil {
			return nil, err
		}
		if hashEqualsBlobID(hash, blobID) {
			continue
		}
		staged, err := r.Snapshot.Store.GetBlob(context.Background(), blobID)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, unifiedDiff(path, staged, onDisk))
	}
	return diffs, nil
}

func (r *Repo) diffIndexAgainstHead(ctx context.Context, idx Index) ([]FileDiff, error) {
	headTreeEntries := map[string]string{}
	headSnapshotID, err := r.HEADSnapshot()
	if err != nil {
		return nil, err
	}
	if headSnapshotID != "" {
		snap, err := r.Snapshot.Store.GetSnapshot(ctx, headSnapshotID)
		if err != nil {
			return nil, err
		}
		tree, err := r.Snapshot.Store.GetTree(ctx, snap.RootTree)
		if err != nil {
			return nil, err
		}
		for path, entry := range tree.Entries {
			headTreeEntries[path] = entry.ID
		}
	}

	var diffs []FileDiff
	for path, blobID := range idx {
		headBlobID, existed := headTreeEntries[path]
		if existed && headBlobID == blobID {
			continue
		}
		var before []byte
		if existed {
			before, err = r.Snapshot.Store.GetBlob(ctx, headBlobID)
			if err != nil {
				return nil, err
			}
		}
		after, err := r.Snapshot.Store.GetBlob(ctx, blobID)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, unifiedDiff(path, before, after))
	}
	for path, headBlobID := range headTreeEntries {
		if _, staged := idx[path]; staged {
			continue
		}
		before, err := r.Snapshot.Store.GetBlob(ctx, headBlobID)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, unifiedDiff(path, before, nil))
	}
	return diffs, nil
}

func unifiedDiff(path string, before, after []byte) FileDiff {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(ud)
	return FileDiff{Path: path, Text: text}
}
