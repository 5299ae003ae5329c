// Package client implements the local working-copy replica: a .anchor
// directory that mirrors the server's object layout closely enough to
// commit, branch, log, diff, merge, and sync with a remote entirely
// offline. It builds directly on internal/snapshot and internal/
// objectstore rather than re-deriving tree/snapshot semantics, so the
// two share one definition of "what a snapshot id is".
package client

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/objectstore"
	"github.com/anchorvcs/anchor/internal/snapshot"
)

// DirName is the working-tree-relative directory every replica lives under.
const DirName = ".anchor"

// Repo is a working copy rooted at WorkDir, with its replica state under
// WorkDir/.anchor. Snapshot is the shared engine, opened over a
// LocalBackend rooted at the replica's own objects/ directory.
type Repo struct {
	WorkDir  string
	AnchorDir string
	Snapshot *snapshot.Repo
	Config   *Config
}

func anchorDir(workDir string) string { return filepath.Join(workDir, DirName) }

// Init creates a fresh .anchor directory under workDir. It errors if one
// already exists.
func Init(workDir string) (*Repo, error) {
	dir := anchorDir(workDir)
	if _, err := os.Stat(dir); err == nil {
		return nil, apperr.Conflict("repository already initialized")
	} else if !os.IsNotExist(err) {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "stat .anchor directory")
	}

	if err := os.MkdirAll(filepath.Join(dir, "objects"), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "create replica directories")
	}
	if err := os.MkdirAll(filepath.Join(dir, "refs", "heads"), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "create refs directories")
	}
	if err := os.MkdirAll(filepath.Join(dir, "refs", "remotes"), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "create refs directories")
	}
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "create logs directory")
	}

	cfg := DefaultConfig()
	if err := cfg.Save(dir); err != nil {
		return nil, err
	}

	if err := writeIndex(dir, Index{}); err != nil {
		return nil, err
	}

	if err := writeHEAD(dir, symbolicHEAD("heads/main")); err != nil {
		return nil, err
	}

	repo, err := open(workDir, dir, cfg)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Open loads an existing replica at workDir/.anchor.
func Open(workDir string) (*Repo, error) {
	dir := anchorDir(workDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, apperr.NotFound("not an anchor working copy")
	} else if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "stat .anchor directory")
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	return open(workDir, dir, cfg)
}

func open(workDir, dir string, cfg *Config) (*Repo, error) {
	backend, err := objectstore.NewLocalBackend(filepath.Join(dir, "objects"))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "open replica object store")
	}
	store, err := objectstore.New(backend)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "open replica object store")
	}

	return &Repo{
		WorkDir:   workDir,
		AnchorDir: dir,
		Snapshot:  snapshot.Open(dir, store),
		Config:    cfg,
	}, nil
}

// --- HEAD ---

const headSymbolicPrefix = "ref: "

func symbolicHEAD(ref string) string { return headSymbolicPrefix + ref }

func headPath(anchorDir string) string { return filepath.Join(anchorDir, "HEAD") }

func writeHEAD(anchorDir, value string) error {
	if err := os.WriteFile(headPath(anchorDir), []byte(value+"\n"), 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write HEAD")
	}
	return nil
}

func readHEAD(anchorDir string) (string, error) {
	data, err := os.ReadFile(headPath(anchorDir))
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeInternal, "read HEAD")
	}
	return strings.TrimSpace(string(data)), nil
}

// HEADRef returns the branch ref name HEAD points to ("heads/main"), and
// ok=false when HEAD is detached (pointing directly at a snapshot id).
func (r *Repo) HEADRef() (ref string, ok bool, err error) {
	raw, err := readHEAD(r.AnchorDir)
	if err != nil {
		return "", false, err
	}
	if strings.HasPrefix(raw, headSymbolicPrefix) {
		return strings.TrimPrefix(raw, headSymbolicPrefix), true, nil
	}
	return raw, false, nil
}

// HEADSnapshot resolves HEAD (symbolic or detached) to the snapshot id it
// currently points to, or "" if the branch has no commits yet.
func (r *Repo) HEADSnapshot() (string, error) {
	ref, ok, err := r.HEADRef()
	if err != nil {
		return "", err
	}
	if !ok {
		return ref, nil
	}
	return r.Snapshot.ReadRef(ref)
}

// SetHEADBranch points HEAD symbolically at refs/<ref> (e.g. "heads/main").
func (r *Repo) SetHEADBranch(ref string) error {
	return writeHEAD(r.AnchorDir, symbolicHEAD(ref))
}

// DetachHEAD points HEAD directly at a snapshot id.
func (r *Repo) DetachHEAD(snapshotID string) error {
	return writeHEAD(r.AnchorDir, snapshotID)
}

// AdvanceHEAD writes snapshotID to whatever HEAD currently resolves to: the
// branch ref it is symbolic for, or HEAD itself if detached.
func (r *Repo) AdvanceHEAD(snapshotID string) error {
	ref, ok, err := r.HEADRef()
	if err != nil {
		return err
	}
	if ok {
		return r.Snapshot.WriteRef(ref, snapshotID)
	}
	return r.DetachHEAD(snapshotID)
}

// --- reflog ---

// AppendReflog appends a one-line entry to logs/HEAD, matching the format
// `<old> <new> <action>: <detail>`.
func (r *Repo) AppendReflog(oldID, newID, action, detail string) error {
	path := filepath.Join(r.AnchorDir, "logs", "HEAD")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "open reflog")
	}
	defer f.Close()

	if oldID == "" {
		oldID = strings.Repeat("0", 1)
	}
	line := oldID + " " + newID + " " + action + ": " + detail + "\n"
	if _, err := f.WriteString(line); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write reflog")
	}
	return nil
}

// Reflog returns every recorded reflog line, oldest first.
func (r *Repo) Reflog() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(r.AnchorDir, "logs", "HEAD"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "read reflog")
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

// WorkingPath joins a replica-relative path onto the working directory.
func (r *Repo) WorkingPath(rel string) string {
	return filepath.Join(r.WorkDir, filepath.FromSlash(rel))
}
