package client

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/objectstore"
)

// ResetMode selects how far reset rewinds local state beyond moving HEAD.
type ResetMode int

const (
	ResetSoft ResetMode = iota
	ResetMixed
	ResetHard
)

// ResolveRevision resolves "<base>~<N>" (or a bare base) to a snapshot id,
// where base is "HEAD", a branch name, or a snapshot id, by walking N
// parent links.
func (r *Repo) ResolveRevision(ctx context.Context, rev string) (string, error) {
	base, n, err := splitRevision(rev)
	if err != nil {
		return "", err
	}

	var start string
	if base == "" || base == "HEAD" {
		start, err = r.HEADSnapshot()
		if err != nil {
			return "", err
		}
	} else if strings.HasPrefix(base, "s_") {
		start = base
	} else {
		start, err = r.Snapshot.ReadRef("heads/" + base)
		if err != nil {
			return "", err
		}
		if start == "" {
			return "", apperr.NotFound("no branch or snapshot named " + base)
		}
	}

	if n == 0 {
		return start, nil
	}
	history, err := r.Snapshot.HistoryFrom(ctx, start)
	if err != nil {
		return "", err
	}
	if n >= len(history) {
		return "", apperr.Invalid("revision has no ancestor " + strconv.Itoa(n) + " generations back")
	}
	return history[n].SnapshotID, nil
}

func splitRevision(rev string) (base string, n int, err error) {
	idx := strings.LastIndex(rev, "~")
	if idx < 0 {
		return rev, 0, nil
	}
	base = rev[:idx]
	suffix := rev[idx+1:]
	if suffix == "" {
		return base, 1, nil
	}
	n, convErr := strconv.Atoi(suffix)
	if convErr != nil || n < 0 {
		return "", 0, apperr.Invalid("malformed revision " + rev)
	}
	return base, n, nil
}

// Reset moves HEAD (and, depending on mode, the index and working tree)
// to rev. If path is non-empty, only that path's index entry is restored
// from rev's tree and HEAD is left untouched.
func (r *Repo) Reset(ctx context.Context, rev string, mode ResetMode, path string) error {
	targetID, err := r.ResolveRevision(ctx, rev)
	if err != nil {
		return err
	}

	if path != "" {
		return r.restorePathFromSnapshot(ctx, targetID, path)
	}

	ref, ok, err := r.HEADRef()
	if err != nil {
		return err
	}
	headID, err := r.HEADSnapshot()
	if err != nil {
		return err
	}

	switch mode {
	case ResetSoft:
		// only the ref/HEAD pointer moves; index and working tree are untouched.
	case ResetMixed:
		if err := r.rewriteIndexFromSnapshot(ctx, targetID); err != nil {
			return err
		}
	case ResetHard:
		if err := r.checkoutTreeToWorkingDir(ctx, targetID); err != nil {
			return err
		}
	}

	if ok {
		if err := r.Snapshot.WriteRef(ref, targetID); err != nil {
			return err
		}
	} else {
		if err := r.DetachHEAD(targetID); err != nil {
			return err
		}
	}
	return r.AppendReflog(headID, targetID, "reset", rev)
}

func (r *Repo) rewriteIndexFromSnapshot(ctx context.Context, snapshotID string) error {
	tree, err := r.loadTree(ctx, snapshotID)
	if err != nil {
		return err
	}
	idx := Index{}
	for path, entry := range tree.Entries {
		idx[path] = entry.ID
	}
	return writeIndex(r.AnchorDir, idx)
}

func (r *Repo) restorePathFromSnapshot(ctx context.Context, snapshotID, path string) error {
	tree, err := r.loadTree(ctx, snapshotID)
	if err != nil {
		return err
	}
	rel := filepath.ToSlash(path)
	entry, ok := tree.Entries[rel]
	if !ok {
		return apperr.NotFound("path " + path + " not found in target snapshot")
	}

	idx, err := readIndex(r.AnchorDir)
	if err != nil {
		return err
	}
	idx[rel] = entry.ID
	return writeIndex(r.AnchorDir, idx)
}

func (r *Repo) loadTree(ctx context.Context, snapshotID string) (objectstore.Tree, error) {
	snap, err := r.Snapshot.Store.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return objectstore.Tree{}, err
	}
	return r.Snapshot.Store.GetTree(ctx, snap.RootTree)
}
