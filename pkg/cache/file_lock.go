package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rustyhook/rustyhook/internal/log"
)

// lockRetryInterval is how often a contended lock is re-attempted. flock has
// no cancellable blocking form, so acquisition polls the non-blocking variant
// and sleeps between attempts.
const lockRetryInterval = 25 * time.Millisecond

// Lock is an advisory flock over one lock file. The cache root's global
// .lock guards purges; per-fingerprint lease files guard environment builds.
// The zero value is unusable; construct with NewLock.
type Lock struct {
	path string
}

// NewLock creates a lock over the given lock file. The file and its parent
// directories are created on first acquisition.
func NewLock(path string) *Lock {
	return &Lock{path: path}
}

// Acquire takes the lock, retrying until it is free or ctx is done. On
// success it returns a release function; the caller must invoke it exactly
// once.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		flockErr := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if flockErr == nil {
			return func() { l.release(file) }, nil
		}
		if flockErr != syscall.EWOULDBLOCK {
			_ = file.Close()
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", l.path, flockErr)
		}

		// Held elsewhere; wait for the next attempt or give up.
		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// release drops the flock and closes the descriptor. Closing alone would
// release the lock; the explicit unlock keeps the hand-off immediate.
func (l *Lock) release(file *os.File) {
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_UN); err != nil {
		log.Warn("failed to unlock", "path", l.path, "error", err)
	}
	if err := file.Close(); err != nil {
		log.Warn("failed to close lock file", "path", l.path, "error", err)
	}
}

// Do runs fn while holding the lock.
func (l *Lock) Do(ctx context.Context, fn func() error) error {
	release, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}
