package client

import "os"

// Clean removes every untracked working-tree file Status reports. When
// dryRun is true, nothing is deleted; the same paths that would have
// been removed are still returned.
func (r *Repo) Clean(dryRun bool) ([]string, error) {
	status, err := r.Status()
	if err != nil {
		return nil, err
	}
	if dryRun {
		return status.Untracked, nil
	}
	for _, rel := range status.Untracked {
		if err := os.Remove(r.WorkingPath(rel)); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return status.Untracked, nil
}
