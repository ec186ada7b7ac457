// Package download fetches runtime archives over HTTP, verifies them, and
// extracts them into the cache.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyhook/rustyhook/internal/log"
)

// Manager provides download and extraction capabilities.
type Manager struct {
	client  *http.Client
	timeout time.Duration
}

// NewManager creates a download manager with the default timeout.
func NewManager() *Manager {
	const defaultTimeout = 5 * time.Minute
	return &Manager{
		timeout: defaultTimeout,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// WithTimeout sets the per-download timeout.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.timeout = timeout
	m.client.Timeout = timeout
	return m
}

// Fetch downloads url to dest. A partial file from an interrupted run is
// discarded and the download restarted. When digest is non-empty the
// downloaded bytes must hash to it (hex SHA-256) or the file is removed and
// an error returned.
func (m *Manager) Fetch(ctx context.Context, url, dest, digest string) error {
	if m.verifyExisting(dest, digest) {
		log.Debug("download cache hit", "dest", dest)
		return nil
	}

	// Any pre-existing file here is either truncated or digest-mismatched.
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear partial download %s: %w", dest, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	log.Debug("downloading", "url", url)

	timeoutCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download from %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d for %s", resp.StatusCode, url)
	}

	if err := m.writeVerified(resp.Body, dest, digest, resp.ContentLength); err != nil {
		_ = os.Remove(dest)
		return err
	}

	log.Debug("downloaded", "dest", dest)
	return nil
}

// writeVerified streams body to a staging file, checks length and digest,
// then renames into place so dest is never visible half-written.
func (m *Manager) writeVerified(body io.Reader, dest, digest string, contentLength int64) error {
	staging := dest + ".part"
	file, err := os.Create(staging) // #nosec G304 -- writing into the cache root
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", staging, err)
	}

	hasher := sha256.New()
	written, copyErr := io.Copy(io.MultiWriter(file, hasher), body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("failed to write %s: %w", staging, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("failed to close %s: %w", staging, closeErr)
	}

	if contentLength > 0 && written != contentLength {
		_ = os.Remove(staging)
		return fmt.Errorf("truncated download: got %d of %d bytes", written, contentLength)
	}

	if digest != "" {
		if actual := hex.EncodeToString(hasher.Sum(nil)); !strings.EqualFold(actual, digest) {
			_ = os.Remove(staging)
			return fmt.Errorf("digest mismatch: expected %s, got %s", digest, actual)
		}
	}

	if err := os.Rename(staging, dest); err != nil {
		_ = os.Remove(staging)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}

// verifyExisting reports whether dest already holds a complete download.
// Without a declared digest any existing regular file is trusted; the
// atomic rename in writeVerified guarantees it was fully written.
func (m *Manager) verifyExisting(dest, digest string) bool {
	info, err := os.Stat(dest)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	if digest == "" {
		return true
	}

	file, err := os.Open(dest) // #nosec G304 -- reading back the cache file
	if err != nil {
		return false
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return false
	}
	return strings.EqualFold(hex.EncodeToString(hasher.Sum(nil)), digest)
}

// FetchAndExtract downloads an archive (through the archive cache) and
// extracts it into destDir.
func (m *Manager) FetchAndExtract(ctx context.Context, url, archivePath, digest, destDir string) error {
	if err := m.Fetch(ctx, url, archivePath, digest); err != nil {
		return err
	}

	return NewArchiver().Extract(archivePath, destDir)
}

// Sha256String returns the hex digest of a string; used to key the archive
// cache when no upstream digest is declared.
func Sha256String(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
