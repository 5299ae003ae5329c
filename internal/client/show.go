package client

import (
	"context"
	"strings"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/objectstore"
)

// ShownObject is whichever of the three object kinds Show resolved id to.
type ShownObject struct {
	Kind     string // "snapshot", "tree", or "blob"
	Snapshot *objectstore.Snapshot
	Tree     *objectstore.Tree
	Blob     []byte
}

// Show resolves id against the snapshot, tree, and blob stores in turn
// (a snapshot id always starts with "s_"; tree and blob ids are bare
// sha256 hex, so there is no way to tell them apart except by asking the
// store) and returns whichever object answered.
func (r *Repo) Show(ctx context.Context, id string) (ShownObject, error) {
	if strings.HasPrefix(id, "s_") {
		snap, err := r.Snapshot.Store.GetSnapshot(ctx, id)
		if err != nil {
			return ShownObject{}, err
		}
		return ShownObject{Kind: "snapshot", Snapshot: &snap}, nil
	}

	if tree, err := r.Snapshot.Store.GetTree(ctx, id); err == nil {
		return ShownObject{Kind: "tree", Tree: &tree}, nil
	}
	if blob, err := r.Snapshot.Store.GetBlob(ctx, id); err == nil {
		return ShownObject{Kind: "blob", Blob: blob}, nil
	}
	return ShownObject{}, apperr.NotFound(id + " is not a known snapshot, tree, or blob")
}
