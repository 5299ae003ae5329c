package objectstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// TreeEntry is a single path's entry in a flat tree: trees have no
// nesting, path separators live inside the map key.
type TreeEntry struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Tree is the flat path -> blob mapping stored as a tree object.
type Tree struct {
	Entries map[string]TreeEntry `json:"entries"`
}

// Snapshot is a commit: a root tree, an optional parent, and metadata.
type Snapshot struct {
	SnapshotID string  `json:"snapshot_id"`
	RootTree   string  `json:"root_tree"`
	Parent     *string `json:"parent"`
	Message    string  `json:"message"`
	Timestamp  string  `json:"timestamp"`
}

// Store layers content-addressing and the object key layout on top of a
// Backend. It is safe for concurrent use by multiple readers; callers that
// mutate a repository's objects serialize via internal/repolock.
type Store struct {
	backend Backend
	cache   *readCache
}

// New wraps backend with a read-through cache. Caching is always safe here
// because every key this Store reads is content-addressed.
func New(backend Backend) (*Store, error) {
	cache, err := newReadCache()
	if err != nil {
		return nil, fmt.Errorf("create object cache: %w", err)
	}
	return &Store{backend: backend, cache: cache}, nil
}

func blobKey(id string) string {
	return fmt.Sprintf("blobs/%s/%s/%s.blob", id[0:2], id[2:4], id)
}

func treeKey(id string) string   { return fmt.Sprintf("trees/%s.json", id) }
func snapshotKey(id string) string { return fmt.Sprintf("snapshots/%s.json", id) }

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PutBlob writes bytes under their content hash. Writing the same bytes
// twice is a no-op that leaves the stored file untouched.
func (s *Store) PutBlob(ctx context.Context, data []byte) (string, error) {
	id := sha256Hex(data)
	key := blobKey(id)

	exists, err := s.backend.Exists(ctx, key)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "check blob existence")
	}
	if exists {
		return id, nil
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "write blob")
	}
	return id, nil
}

func (s *Store) GetBlob(ctx context.Context, id string) ([]byte, error) {
	key := blobKey(id)
	if data, ok := s.cache.get(key); ok {
		return data, nil
	}
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		var nf *ErrBackendNotFound
		if errors.As(err, &nf) {
			return nil, apperr.NotFound(fmt.Sprintf("blob %s not found", id))
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "read blob")
	}
	s.cache.set(key, data)
	return data, nil
}

// PutTree canonically encodes tree (sorted keys, no whitespace) and writes
// it under the hash of those exact bytes.
func (s *Store) PutTree(ctx context.Context, tree Tree) (string, error) {
	data, err := encodeTree(tree)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "encode tree")
	}
	id := sha256Hex(data)
	key := treeKey(id)

	exists, err := s.backend.Exists(ctx, key)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "check tree existence")
	}
	if exists {
		return id, nil
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "write tree")
	}
	return id, nil
}

func (s *Store) GetTree(ctx context.Context, id string) (Tree, error) {
	key := treeKey(id)
	var data []byte
	if cached, ok := s.cache.get(key); ok {
		data = cached
	} else {
		fetched, err := s.backend.Get(ctx, key)
		if err != nil {
			var nf *ErrBackendNotFound
			if errors.As(err, &nf) {
				return Tree{}, apperr.NotFound(fmt.Sprintf("tree %s not found", id))
			}
			return Tree{}, apperr.Wrap(err, apperr.CodeInternal, "read tree")
		}
		s.cache.set(key, fetched)
		data = fetched
	}

	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return Tree{}, apperr.Wrap(err, apperr.CodeInternal, "decode tree")
	}
	return tree, nil
}

func encodeTree(tree Tree) ([]byte, error) {
	entries := make(map[string]any, len(tree.Entries))
	for path, entry := range tree.Entries {
		entries[path] = map[string]any{
			"type": entry.Type,
			"id":   entry.ID,
		}
	}
	return Canonical(map[string]any{"entries": entries})
}

// SnapshotID computes the 32-bit snapshot identifier: the first 8 hex
// nibbles of sha256(rootTree + parent), read as a hex integer and
// decimal-formatted, prefixed with "s_". parent is the empty string for
// the first snapshot in a repository. This must match byte-for-byte
// between server and client for push parity.
func SnapshotID(rootTree, parent string) string {
	sum := sha256.Sum256([]byte(rootTree + parent))
	prefix := hex.EncodeToString(sum[:])[:8]
	n, _ := strconv.ParseUint(prefix, 16, 64)
	return "s_" + strconv.FormatUint(n, 10)
}

// PutSnapshot writes a snapshot object under its precomputed SnapshotID.
// Unlike blobs and trees, a snapshot's id is not the hash of its own
// encoded bytes (it's derived from root tree + parent per SnapshotID), so
// writing here always overwrites — callers must only ever call this once
// per id, which save_snapshot's formula guarantees by construction.
func (s *Store) PutSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "encode snapshot")
	}
	if err := s.backend.Put(ctx, snapshotKey(snap.SnapshotID), data); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write snapshot")
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	data, err := s.backend.Get(ctx, snapshotKey(id))
	if err != nil {
		var nf *ErrBackendNotFound
		if errors.As(err, &nf) {
			return Snapshot{}, apperr.NotFound(fmt.Sprintf("snapshot %s not found", id))
		}
		return Snapshot{}, apperr.Wrap(err, apperr.CodeInternal, "read snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, apperr.Wrap(err, apperr.CodeInternal, "decode snapshot")
	}
	return snap, nil
}
