// Package snapshot implements the snapshot engine: building a tree from a
// working directory, writing a snapshot, advancing refs, traversing
// history, diffing, and archiving. It is shared verbatim by the server
// (over a Backend of its choosing) and the client replica (always over a
// LocalBackend under .anchor/).
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/logger"
	"github.com/anchorvcs/anchor/internal/objectstore"
	"github.com/anchorvcs/anchor/internal/repolock"
)

// Meta is a repository's meta.json.
type Meta struct {
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
	IsPublic    bool   `json:"is_public,omitempty"`
	IsFavorite  bool   `json:"is_favorite,omitempty"`
}

// Repo is an Anchor repository rooted at Path, containing meta.json,
// refs/, repo.lock, and objects/.
type Repo struct {
	Path  string
	Store *objectstore.Store
}

// Open wraps an existing repository directory. It does not validate that
// meta.json or refs/ exist — callers that need that guarantee should call
// ReadMeta first.
func Open(path string, store *objectstore.Store) *Repo {
	return &Repo{Path: path, Store: store}
}

// InitRepo creates a new repository directory, meta.json, and an empty
// refs/main. It errors if the repo directory already exists — re-init is a
// Conflict, not a silent overwrite.
func InitRepo(rootDir, name string, store *objectstore.Store) (*Repo, error) {
	repoPath := filepath.Join(rootDir, name)
	if _, err := os.Stat(repoPath); err == nil {
		return nil, apperr.Conflict(fmt.Sprintf("repository %q already exists", name))
	} else if !os.IsNotExist(err) {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "stat repo path")
	}

	if err := os.MkdirAll(filepath.Join(repoPath, "refs"), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "create repo directories")
	}

	meta := Meta{Name: name, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	if err := writeMeta(repoPath, meta); err != nil {
		return nil, err
	}
	if err := writeRefAtomic(filepath.Join(repoPath, "refs", "main"), ""); err != nil {
		return nil, err
	}

	logger.Info("initialized repository %q at %s", name, repoPath)
	return &Repo{Path: repoPath, Store: store}, nil
}

func metaPath(repoPath string) string { return filepath.Join(repoPath, "meta.json") }

func writeMeta(repoPath string, meta Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "encode meta.json")
	}
	if err := os.WriteFile(metaPath(repoPath), data, 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write meta.json")
	}
	return nil
}

// ReadMeta loads meta.json, returning NotFound if the repo doesn't exist.
func (r *Repo) ReadMeta() (Meta, error) {
	data, err := os.ReadFile(metaPath(r.Path))
	if os.IsNotExist(err) {
		return Meta{}, apperr.NotFound("repository not found")
	}
	if err != nil {
		return Meta{}, apperr.Wrap(err, apperr.CodeInternal, "read meta.json")
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, apperr.Wrap(err, apperr.CodeInternal, "decode meta.json")
	}
	return meta, nil
}

// SetFavorite toggles meta.json's is_favorite flag.
func (r *Repo) SetFavorite(isFavorite bool) error {
	meta, err := r.ReadMeta()
	if err != nil {
		return err
	}
	meta.IsFavorite = isFavorite
	return writeMeta(r.Path, meta)
}

// SetVisibility toggles meta.json's is_public flag, which gates whether
// read-only endpoints accept anonymous (unauthenticated) requests for
// this repository.
func (r *Repo) SetVisibility(isPublic bool) error {
	meta, err := r.ReadMeta()
	if err != nil {
		return err
	}
	meta.IsPublic = isPublic
	return writeMeta(r.Path, meta)
}

func (r *Repo) refPath(name string) string { return filepath.Join(r.Path, "refs", name) }

// ReadRef returns the ref's stripped contents, or "" if the ref file is
// empty or missing (an empty repo before its first snapshot).
func (r *Repo) ReadRef(name string) (string, error) {
	data, err := os.ReadFile(r.refPath(name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "read ref")
	}
	return strings.TrimSpace(string(data)), nil
}

func writeRefAtomic(path, value string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create refs directory")
	}
	tmp, err := os.CreateTemp(dir, ".tmp-ref-*")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "create temp ref file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return apperr.Wrap(err, apperr.CodeInternal, "write temp ref file")
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "close temp ref file")
	}
	// Objects referenced by value must already be durable before this
	// rename runs — that ordering is what makes lock-free readers safe.
	if err := os.Rename(tmpName, path); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "rename ref into place")
	}
	return nil
}

// WriteRef atomically overwrites a ref file.
func (r *Repo) WriteRef(name, value string) error {
	return writeRefAtomic(r.refPath(name), value)
}

// SaveSnapshot acquires the repo lock, builds a flat tree from workDir,
// writes any new blobs and the tree, derives the snapshot id from
// (tree_id, parent), writes the snapshot object, and advances refs/main.
// Two calls that see the same tree and the same parent ref value produce
// the same snapshot id.
func (r *Repo) SaveSnapshot(ctx context.Context, message, workDir string) (string, error) {
	return r.SaveSnapshotOnRef(ctx, "main", message, workDir)
}

// SaveSnapshotOnRef is SaveSnapshot generalized to an arbitrary ref name
// (e.g. "heads/feature" for the client replica's branch-scoped commits,
// rather than the server's single always-"main" ref).
func (r *Repo) SaveSnapshotOnRef(ctx context.Context, ref, message, workDir string) (string, error) {
	var snapshotID string
	err := repolock.WithLock(r.Path, func() error {
		parent, err := r.ReadRef(ref)
		if err != nil {
			return err
		}

		tree, err := BuildTree(ctx, r.Store, workDir)
		if err != nil {
			return err
		}
		treeID, err := r.Store.PutTree(ctx, tree)
		if err != nil {
			return err
		}

		snapshotID = objectstore.SnapshotID(treeID, parent)

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
		if err := r.Store.PutSnapshot(ctx, snap); err != nil {
			return err
		}

		if err := r.WriteRef(ref, snapshotID); err != nil {
			return err
		}

		logger.Info("saved snapshot %s in %s", snapshotID, r.Path)
		return nil
	})
	if err != nil {
		return "", err
	}
	return snapshotID, nil
}

// BuildTree walks workDir depth-first, storing every regular file as a
// blob and recording path -> blob id in a single flat tree (no nested tree
// objects; path separators live inside the map key). Exported so the
// client replica can build a tree from the working directory using the
// exact same encoding the server does, a precondition for matching
// snapshot ids.
func BuildTree(ctx context.Context, store *objectstore.Store, workDir string) (objectstore.Tree, error) {
	entries := make(map[string]objectstore.TreeEntry)

	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		blobID, err := store.PutBlob(ctx, data)
		if err != nil {
			return err
		}
		entries[rel] = objectstore.TreeEntry{Type: "blob", ID: blobID}
		return nil
	})
	if err != nil {
		return objectstore.Tree{}, apperr.Wrap(err, apperr.CodeInternal, "walk working directory")
	}
	return objectstore.Tree{Entries: entries}, nil
}

// GetHistory follows parent pointers from refs/main, newest first, until
// it reaches the root or a missing object.
func (r *Repo) GetHistory(ctx context.Context) ([]objectstore.Snapshot, error) {
	return r.HistoryFrom(ctx, "main")
}

// HistoryFrom follows parents starting at the snapshot named by ref (or,
// if ref looks like a snapshot id itself, starting there directly — used
// by the client's detached-HEAD log and by its branch-scoped log/blame).
func (r *Repo) HistoryFrom(ctx context.Context, refOrID string) ([]objectstore.Snapshot, error) {
	current := refOrID
	if !strings.HasPrefix(refOrID, "s_") {
		ref, err := r.ReadRef(refOrID)
		if err != nil {
			return nil, err
		}
		current = ref
	}

	var history []objectstore.Snapshot
	for current != "" {
		snap, err := r.Store.GetSnapshot(ctx, current)
		if apperr.Is(err, apperr.CodeNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		history = append(history, snap)
		if snap.Parent == nil {
			break
		}
		current = *snap.Parent
	}
	return history, nil
}

// Diff is the symmetric tree comparison between two snapshots.
type Diff struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}

// GetDiff loads the root trees of two snapshots and compares them by path.
func (r *Repo) GetDiff(ctx context.Context, fromID, toID string) (Diff, error) {
	fromTree, err := r.loadSnapshotTree(ctx, fromID)
	if err != nil {
		return Diff{}, err
	}
	toTree, err := r.loadSnapshotTree(ctx, toID)
	if err != nil {
		return Diff{}, err
	}
	return DiffTrees(fromTree, toTree), nil
}

func (r *Repo) loadSnapshotTree(ctx context.Context, snapshotID string) (objectstore.Tree, error) {
	snap, err := r.Store.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return objectstore.Tree{}, err
	}
	return r.Store.GetTree(ctx, snap.RootTree)
}

// DiffTrees compares two trees by path. added/removed/modified are all
// reported relative to "from -> to" so that swapping from and to swaps
// added with removed and leaves modified unchanged.
func DiffTrees(from, to objectstore.Tree) Diff {
	diff := Diff{Added: []string{}, Removed: []string{}, Modified: []string{}}

	for path, toEntry := range to.Entries {
		fromEntry, ok := from.Entries[path]
		if !ok {
			diff.Added = append(diff.Added, path)
		} else if fromEntry.ID != toEntry.ID {
			diff.Modified = append(diff.Modified, path)
		}
	}
	for path := range from.Entries {
		if _, ok := to.Entries[path]; !ok {
			diff.Removed = append(diff.Removed, path)
		}
	}
	return diff
}
