package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadNativeConfig(t *testing.T) {
	path := writeConfig(t, `
fail_fast: true
parallelism: 4
exclude: "^vendor/"
hooks:
  - id: ruff
    name: ruff
    language: python
    entry: ruff check
    version: "==0.4.0"
    files: "\\.py$"
    dependencies:
      - tomli==2.0.1
  - id: shellcheck
    language: system
    entry: shellcheck
    files: "\\.sh$"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.FailFast)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, []string{StageCommit}, cfg.DefaultStages)
	assert.NotNil(t, cfg.ExcludePattern)
	require.Len(t, cfg.Hooks, 2)

	ruff := cfg.Hooks[0]
	assert.Equal(t, "ruff", ruff.ID)
	assert.Equal(t, "python", ruff.Language)
	assert.Equal(t, "ruff check", ruff.Entry)
	assert.Equal(t, []string{StageCommit}, ruff.Stages)
	assert.NotNil(t, ruff.FilesPattern)
	assert.True(t, ruff.ShouldPassFilenames())
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	path := writeConfig(t, `
hooks:
  - id: ruff
    language: python
    entry: ruff
  - id: ruff
    language: python
    entry: ruff
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate hook id")
}

func TestLoadRejectsBadRegex(t *testing.T) {
	path := writeConfig(t, `
hooks:
  - id: broken
    language: system
    entry: "true"
    files: "([unclosed"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "files pattern")
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	path := writeConfig(t, `
hooks:
  - id: weird
    language: fortran
    entry: fmt
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown language")
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := writeConfig(t, "   \n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestStageAliasNormalization(t *testing.T) {
	path := writeConfig(t, `
default_stages: [pre-commit, pre-push]
hooks:
  - id: lint
    language: system
    entry: lint
    stages: [pre-merge-commit, manual]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{StageCommit, StagePush}, cfg.DefaultStages)
	assert.Equal(t, []string{StageMergeCommit, StageManual}, cfg.Hooks[0].Stages)
}

func TestPassFilenamesDefault(t *testing.T) {
	off := false
	hook := Hook{}
	assert.True(t, hook.ShouldPassFilenames())

	hook.PassFilenames = &off
	assert.False(t, hook.ShouldPassFilenames())
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml", NativeConfigName))

	t.Setenv(EnvConfigPath, "from-env.yaml")
	assert.Equal(t, "from-env.yaml", ResolvePath("", NativeConfigName))

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, NativeConfigName, ResolvePath("", NativeConfigName))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.normalize())
	assert.NotEmpty(t, cfg.Hooks)
}
