package client

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Status classifies every path in the working tree (excluding .anchor and
// .git) and every path in the index against each other.
type Status struct {
	Modified []string
	Untracked []string
	Deleted  []string
	Unchanged []string
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Status walks the working tree and compares it against the index.
func (r *Repo) Status() (Status, error) {
	idx, err := readIndex(r.AnchorDir)
	if err != nil {
		return Status{}, err
	}

	seen := map[string]bool{}
	var st Status

	err = filepath.WalkDir(r.WorkDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == DirName || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.WorkDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true

		hash, err := hashFile(path)
		if err != nil {
			return err
		}

		blobID, tracked := idx[rel]
		switch {
		case !tracked:
			st.Untracked = append(st.Untracked, rel)
		case hashEqualsBlobID(hash, blobID):
			st.Unchanged = append(st.Unchanged, rel)
		default:
			st.Modified = append(st.Modified, rel)
		}
		return nil
	})
	if err != nil {
		return Status{}, err
	}

	for rel := range idx {
		if !seen[rel] {
			st.Deleted = append(st.Deleted, rel)
		}
	}

	return st, nil
}

// hashEqualsBlobID compares a raw content hash against a stored blob id.
// Blob ids are the content's sha256 hex digest, so this is a direct
// comparison — kept as its own helper so a future content-addressing
// scheme change only touches one place.
func hashEqualsBlobID(hash, blobID string) bool {
	return strings.EqualFold(hash, blobID)
}
