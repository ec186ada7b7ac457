package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot(t *testing.T) *Root {
	t.Helper()
	t.Setenv(EnvCacheDir, "")
	root, err := ResolveRoot(t.TempDir())
	require.NoError(t, err)
	return root
}

func TestResolveRootDefault(t *testing.T) {
	t.Setenv(EnvCacheDir, "")
	repoRoot := t.TempDir()

	root, err := ResolveRoot(repoRoot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoRoot, DefaultDirName), root.Path())

	info, err := os.Stat(root.Path())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(root.Path(), ".lock"))
	assert.NoError(t, err)
}

func TestResolveRootEnvOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "custom-cache")
	t.Setenv(EnvCacheDir, override)

	root, err := ResolveRoot(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, override, root.Path())
}

func TestLayoutPaths(t *testing.T) {
	root := testRoot(t)
	fp := "abc123"

	assert.Equal(t, filepath.Join(root.Path(), "envs", "python", fp), root.EnvDir("python", fp))
	assert.Equal(t, filepath.Join(root.EnvDir("python", fp), ".ready"), root.ReadyPath("python", fp))
	assert.Equal(t, filepath.Join(root.Path(), "envs", "python", fp+".lock"), root.EnvLeasePath("python", fp))
	assert.Equal(t, filepath.Join(root.Path(), "runtimes", "node", "20"), root.RuntimeDir("node", "20"))
	assert.Equal(t, filepath.Join(root.Path(), "archives", "deadbeef.tar.gz"), root.ArchivePath("deadbeef", ".tar.gz"))
}

func TestPurge(t *testing.T) {
	root := testRoot(t)

	envDir := root.EnvDir("python", "fp1")
	require.NoError(t, os.MkdirAll(envDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "file"), []byte("x"), 0o600))

	require.NoError(t, root.Purge(5*time.Second))

	_, err := os.Stat(envDir)
	assert.True(t, os.IsNotExist(err))

	// The root and its lock survive.
	_, err = os.Stat(filepath.Join(root.Path(), ".lock"))
	assert.NoError(t, err)
}

func TestPurgeLanguage(t *testing.T) {
	root := testRoot(t)

	pyEnv := root.EnvDir("python", "fp1")
	nodeEnv := root.EnvDir("node", "fp2")
	require.NoError(t, os.MkdirAll(pyEnv, 0o750))
	require.NoError(t, os.MkdirAll(nodeEnv, 0o750))

	require.NoError(t, root.PurgeLanguage("python", 5*time.Second))

	_, err := os.Stat(pyEnv)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(nodeEnv)
	assert.NoError(t, err)
}

func TestLockMutualExclusion(t *testing.T) {
	root := testRoot(t)

	release, err := root.GlobalLock().Acquire(context.Background())
	require.NoError(t, err)

	// A second acquisition of the same lock file must time out while held.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = root.GlobalLock().Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	second, err := root.GlobalLock().Acquire(context.Background())
	require.NoError(t, err)
	second()
}

func TestLockCreatesParentDirectories(t *testing.T) {
	root := testRoot(t)
	lease := NewLock(root.EnvLeasePath("python", "fp1"))

	release, err := lease.Acquire(context.Background())
	require.NoError(t, err)
	release()

	_, statErr := os.Stat(root.EnvLeasePath("python", "fp1"))
	assert.NoError(t, statErr)
}

func TestLockDoRuns(t *testing.T) {
	root := testRoot(t)
	var ran bool
	err := root.GlobalLock().Do(context.Background(), func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestLockDoHandsOff(t *testing.T) {
	root := testRoot(t)
	lock := root.GlobalLock()

	// Sequential holders see the lock released between calls.
	for range 3 {
		require.NoError(t, lock.Do(context.Background(), func() error { return nil }))
	}
}

func TestIndexRecordAndLookup(t *testing.T) {
	root := testRoot(t)
	idx, err := OpenIndex(root)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	ctx := context.Background()
	rec := EnvRecord{
		Fingerprint: "fp1",
		Language:    "python",
		Spec:        "language=python\ntool=ruff\n",
		Path:        root.EnvDir("python", "fp1"),
		LastUsed:    time.Now(),
	}
	require.NoError(t, idx.RecordEnv(ctx, rec))

	got, found, err := idx.LookupEnv(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Language, got.Language)
	assert.Equal(t, rec.Path, got.Path)

	_, found, err = idx.LookupEnv(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndexListAndDelete(t *testing.T) {
	root := testRoot(t)
	idx, err := OpenIndex(root)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	ctx := context.Background()
	for _, fp := range []string{"fp1", "fp2"} {
		require.NoError(t, idx.RecordEnv(ctx, EnvRecord{
			Fingerprint: fp, Language: "node", Spec: "s", Path: "p", LastUsed: time.Now(),
		}))
	}

	records, err := idx.ListEnvs(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, idx.DeleteEnv(ctx, "fp1"))
	records, err = idx.ListEnvs(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, idx.DeleteLanguage(ctx, "node"))
	records, err = idx.ListEnvs(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
