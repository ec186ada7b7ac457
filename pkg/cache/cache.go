// Package cache manages the on-disk cache root: hermetic environments,
// downloaded runtimes, the archive cache, and the sqlite index over them.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvCacheDir overrides the cache root when set.
const EnvCacheDir = "RUSTYHOOK_CACHE_DIR"

// DefaultDirName is the cache root directory created at the repository root.
const DefaultDirName = ".rustyhook"

// Layout names the fixed subtrees under the cache root.
const (
	EnvsDir     = "envs"
	RuntimesDir = "runtimes"
	ArchivesDir = "archives"
	ReadyMarker = ".ready"
)

// Root is one cache root and the path helpers over it.
type Root struct {
	path string
}

// ResolveRoot picks the cache root from the environment override or the
// default location under the repository root, and ensures it exists.
func ResolveRoot(repoRoot string) (*Root, error) {
	path := os.Getenv(EnvCacheDir)
	if path == "" {
		path = filepath.Join(repoRoot, DefaultDirName)
	}

	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// The lock file backs flock leases across processes.
	lockPath := filepath.Join(path, ".lock")
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		if err := os.WriteFile(lockPath, []byte{}, 0o600); err != nil {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
	}

	return &Root{path: path}, nil
}

// Path returns the cache root path.
func (r *Root) Path() string {
	return r.path
}

// EnvDir returns the environment directory for one fingerprint.
func (r *Root) EnvDir(language, fingerprint string) string {
	return filepath.Join(r.path, EnvsDir, language, fingerprint)
}

// EnvLeasePath returns the flock file guarding one fingerprint's build.
func (r *Root) EnvLeasePath(language, fingerprint string) string {
	return filepath.Join(r.path, EnvsDir, language, fingerprint+".lock")
}

// ReadyPath returns the completion marker inside an env directory.
func (r *Root) ReadyPath(language, fingerprint string) string {
	return filepath.Join(r.EnvDir(language, fingerprint), ReadyMarker)
}

// RuntimeDir returns the directory for one downloaded interpreter.
func (r *Root) RuntimeDir(language, version string) string {
	return filepath.Join(r.path, RuntimesDir, language, version)
}

// ArchivePath returns the download-cache path for a digest and extension.
func (r *Root) ArchivePath(digest, ext string) string {
	return filepath.Join(r.path, ArchivesDir, digest+ext)
}

// IndexPath returns the sqlite index location.
func (r *Root) IndexPath() string {
	return filepath.Join(r.path, "index.db")
}

// GlobalLock returns the lock over the whole cache root.
func (r *Root) GlobalLock() *Lock {
	return NewLock(filepath.Join(r.path, ".lock"))
}

// withGlobalLock runs fn under the cache-root lock, giving up after timeout.
func (r *Root) withGlobalLock(timeout time.Duration, fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return r.GlobalLock().Do(ctx, fn)
}

// Purge removes everything under the cache root except its lock file, holding
// the global lock. The root directory itself is kept so subsequent runs need
// no setup.
func (r *Root) Purge(timeout time.Duration) error {
	return r.withGlobalLock(timeout, func() error {
		entries, err := os.ReadDir(r.path)
		if err != nil {
			return fmt.Errorf("failed to read cache directory: %w", err)
		}
		for _, entry := range entries {
			if entry.Name() == ".lock" {
				continue
			}
			if err := os.RemoveAll(filepath.Join(r.path, entry.Name())); err != nil {
				return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
			}
		}
		return nil
	})
}

// PurgeLanguage removes one language's environments and runtimes.
func (r *Root) PurgeLanguage(language string, timeout time.Duration) error {
	return r.withGlobalLock(timeout, func() error {
		for _, dir := range []string{
			filepath.Join(r.path, EnvsDir, language),
			filepath.Join(r.path, RuntimesDir, language),
		} {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}
		return nil
	})
}
