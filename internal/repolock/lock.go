// Package repolock implements the advisory whole-repository lock: exclusive
// for a snapshot save's entire transaction, never taken by readers,
// anchored to a file so it survives process restarts.
package repolock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Lock guards a single repository's write path. It wraps an flock(2)
// exclusive lock on repo.lock, so a crashed holder's lock is released by
// the kernel on process exit even without an unlock call.
type Lock struct {
	path string
	fd   *os.File
}

// New returns (without acquiring) a lock anchored at <repoPath>/repo.lock.
func New(repoPath string) *Lock {
	return &Lock{path: filepath.Join(repoPath, "repo.lock")}
}

// Acquire blocks until the exclusive lock is held. Call Release when done.
func (l *Lock) Acquire() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "open repo lock file")
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return apperr.Wrap(err, apperr.CodeInternal, "acquire repo lock")
	}
	l.fd = f
	return nil
}

// Release unlocks and closes the lock file descriptor.
func (l *Lock) Release() error {
	if l.fd == nil {
		return nil
	}
	err := syscall.Flock(int(l.fd.Fd()), syscall.LOCK_UN)
	closeErr := l.fd.Close()
	l.fd = nil
	if err != nil {
		return fmt.Errorf("release repo lock: %w", err)
	}
	return closeErr
}

// WithLock acquires the lock, runs fn, and always releases afterward.
// snapshot.SaveSnapshotOnRef runs every save under it; InitRepo does not
// take the lock.
func WithLock(repoPath string, fn func() error) error {
	l := New(repoPath)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
