// Package objectstore implements the content-addressed blob/tree/snapshot
// store behind a pluggable Backend so the same hashing and sharding logic
// runs unchanged whether bytes land on local disk, S3, GCS, or Azure Blob
// Storage.
package objectstore

import (
	"context"
	"fmt"
)

// Backend stores and retrieves opaque byte blobs by key. It has no notion
// of blobs/trees/snapshots — that's the Store's job. Every Backend
// implementation must preserve whatever key layout the Store hands it
// (including the two-level blob shard prefix) so directory listings and
// bucket prefixes stay bounded.
type Backend interface {
	Type() string
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes data at key. Implementations need not be atomic against
	// concurrent writers of *different* keys, but a Put of content that
	// already exists at key must leave the stored bytes unchanged.
	Put(ctx context.Context, key string, data []byte) error
}

// ErrBackendNotFound is wrapped by backend implementations when a Get
// misses; Store translates it into apperr.NotFound.
type ErrBackendNotFound struct{ Key string }

func (e *ErrBackendNotFound) Error() string {
	return fmt.Sprintf("object store: key %q not found", e.Key)
}
