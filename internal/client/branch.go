package client

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Branch is a named ref plus the snapshot it currently points to.
type Branch struct {
	Name       string
	SnapshotID string
}

// Branches lists every local branch (refs/heads/*), sorted by name.
func (r *Repo) Branches() ([]Branch, error) {
	dir := filepath.Join(r.AnchorDir, "refs", "heads")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "list branches")
	}

	var branches []Branch
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, err := r.Snapshot.ReadRef("heads/" + e.Name())
		if err != nil {
			return nil, err
		}
		branches = append(branches, Branch{Name: e.Name(), SnapshotID: id})
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// CreateBranch points a new branch ref at HEAD's current snapshot. It
// errors if the branch already exists.
func (r *Repo) CreateBranch(name string) error {
	existing, err := r.Snapshot.ReadRef("heads/" + name)
	if err != nil {
		return err
	}
	if existing != "" {
		return apperr.Conflict("branch " + name + " already exists")
	}
	head, err := r.HEADSnapshot()
	if err != nil {
		return err
	}
	return r.Snapshot.WriteRef("heads/"+name, head)
}

// DeleteBranch removes a branch ref file. It refuses to delete the branch
// HEAD currently points to.
func (r *Repo) DeleteBranch(name string) error {
	ref, ok, err := r.HEADRef()
	if err != nil {
		return err
	}
	if ok && ref == "heads/"+name {
		return apperr.Invalid("cannot delete the currently checked out branch")
	}
	path := filepath.Join(r.AnchorDir, "refs", "heads", name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("branch " + name + " not found")
		}
		return apperr.Wrap(err, apperr.CodeInternal, "delete branch ref")
	}
	return nil
}

// Checkout moves HEAD to name. If create is set, a new branch is made
// first (pointing at the current HEAD snapshot) and then checked out.
// If name isn't an existing branch but looks like a snapshot id, HEAD is
// left detached at that snapshot. Per the documented limitation, only the
// HEAD pointer moves — the working tree is never rewritten by checkout.
func (r *Repo) Checkout(name string, create bool) error {
	if create {
		if err := r.CreateBranch(name); err != nil {
			return err
		}
		return r.SetHEADBranch("heads/" + name)
	}

	existing, err := r.Snapshot.ReadRef("heads/" + name)
	if err != nil {
		return err
	}
	if existing != "" || branchFileExists(r.AnchorDir, name) {
		return r.SetHEADBranch("heads/" + name)
	}
	if strings.HasPrefix(name, "s_") {
		return r.DetachHEAD(name)
	}
	return apperr.NotFound("no branch or snapshot named " + name)
}

func branchFileExists(anchorDir, name string) bool {
	_, err := os.Stat(filepath.Join(anchorDir, "refs", "heads", name))
	return err == nil
}
