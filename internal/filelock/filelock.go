// Package filelock provides advisory file locks, used to keep two padcount
// runs from renaming the same tree at the same time.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrLocked is returned by AcquireRunLock when another process holds the
// lock for the same root.
var ErrLocked = errors.New("another run is already in progress")

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
// Returns an error if the lock cannot be acquired.
func (fl *FileLock) Lock() error {
	err := fl.flock.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
// Returns an error if the lock operation fails.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
// Returns an error if the unlock operation fails.
func (fl *FileLock) Unlock() error {
	err := fl.flock.Unlock()
	if err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// RunLockPath returns the lock file used for runs over root. The file lives
// in lockDir (os.TempDir() when empty), never inside the walked tree, and is
// named after a name-based UUID of the absolute root path.
func RunLockPath(lockDir, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return filepath.Join(lockDir, "padcount-"+id.String()+".lock"), nil
}

// AcquireRunLock takes the run lock for root without blocking. It returns
// ErrLocked (wrapped with the root) when another run holds it.
func AcquireRunLock(lockDir, root string) (*FileLock, error) {
	path, err := RunLockPath(lockDir, root)
	if err != nil {
		return nil, err
	}

	lock := NewFileLock(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w for %s", ErrLocked, root)
	}
	return lock, nil
}

// WaitRunLock takes the run lock for root, blocking until any other run
// over the same root releases it.
func WaitRunLock(lockDir, root string) (*FileLock, error) {
	path, err := RunLockPath(lockDir, root)
	if err != nil {
		return nil, err
	}

	lock := NewFileLock(path)
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	return lock, nil
}
