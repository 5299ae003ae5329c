package client

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Index is the staging area: tracked working-tree path -> blob id.
type Index map[string]string

func indexPath(anchorDir string) string { return filepath.Join(anchorDir, "index") }

func readIndex(anchorDir string) (Index, error) {
	data, err := os.ReadFile(indexPath(anchorDir))
	if os.IsNotExist(err) {
		return Index{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "read index")
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "decode index")
	}
	return idx, nil
}

func writeIndex(anchorDir string, idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "encode index")
	}
	if err := os.WriteFile(indexPath(anchorDir), data, 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write index")
	}
	return nil
}

// Index loads the current staging area.
func (r *Repo) Index() (Index, error) {
	return readIndex(r.AnchorDir)
}

// Add hashes each given working-tree-relative path, stores the blob if
// it isn't already present, and records path -> blob id in the index.
func (r *Repo) Add(ctx context.Context, paths []string) error {
	idx, err := readIndex(r.AnchorDir)
	if err != nil {
		return err
	}

	for _, rel := range paths {
		data, err := os.ReadFile(r.WorkingPath(rel))
		if err != nil {
			return apperr.Wrap(err, apperr.CodeInvalid, "read "+rel)
		}
		blobID, err := r.Snapshot.Store.PutBlob(ctx, data)
		if err != nil {
			return err
		}
		idx[filepath.ToSlash(rel)] = blobID
	}

	return writeIndex(r.AnchorDir, idx)
}

// rehashTracked re-hashes every currently tracked path, dropping any that
// no longer exist on disk. Used by `commit -a`.
func (r *Repo) rehashTracked(ctx context.Context, idx Index) (Index, error) {
	next := Index{}
	for rel := range idx {
		data, err := os.ReadFile(r.WorkingPath(rel))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInvalid, "read "+rel)
		}
		newID, err := r.Snapshot.Store.PutBlob(ctx, data)
		if err != nil {
			return nil, err
		}
		next[rel] = newID
	}
	return next, nil
}
