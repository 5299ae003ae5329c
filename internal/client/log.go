package client

import (
	"context"

	"github.com/anchorvcs/anchor/internal/objectstore"
)

// Log follows HEAD's parent chain, newest first. A missing parent object
// stops the walk gracefully rather than erroring, matching the server's
// own history traversal. HistoryFrom handles both a symbolic ref name and
// a raw (detached-HEAD) snapshot id, so no branching is needed here.
func (r *Repo) Log(ctx context.Context) ([]objectstore.Snapshot, error) {
	ref, _, err := r.HEADRef()
	if err != nil {
		return nil, err
	}
	return r.Snapshot.HistoryFrom(ctx, ref)
}
