package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyRuffConfig = `
repos:
  - repo: https://github.com/astral-sh/ruff-pre-commit
    rev: v0.8.3
    hooks:
      - id: ruff
        args: ["--fix"]
        files: "\\.py$"
`

func TestLoadLegacy(t *testing.T) {
	path := writeConfig(t, legacyRuffConfig)

	lc, err := LoadLegacy(path)
	require.NoError(t, err)
	require.Len(t, lc.Repos, 1)
	assert.Equal(t, "v0.8.3", lc.Repos[0].Rev)
}

func TestLoadLegacyValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing repo url",
			content: "repos:\n  - rev: v1.0.0\n    hooks:\n      - id: x\n",
			errMsg:  "repository URL is required",
		},
		{
			name:    "no hooks",
			content: "repos:\n  - repo: https://example.com/r\n    rev: v1.0.0\n",
			errMsg:  "no hooks configured",
		},
		{
			name:    "missing hook id",
			content: "repos:\n  - repo: https://example.com/r\n    rev: v1.0.0\n    hooks:\n      - name: x\n",
			errMsg:  "hook id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLegacy(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNormalizeRegistryHit(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, legacyRuffConfig))
	require.NoError(t, err)

	cfg, err := lc.Normalize()
	require.NoError(t, err)
	require.Len(t, cfg.Hooks, 1)

	hook := cfg.Hooks[0]
	assert.Equal(t, "ruff", hook.ID)
	assert.Equal(t, "python", hook.Language)
	assert.Equal(t, "ruff", hook.Entry)
	assert.Equal(t, "==0.8.3", hook.Version)
	assert.Equal(t, []string{"--fix"}, hook.Args)
	assert.Empty(t, hook.Unresolved)
	assert.NotNil(t, hook.FilesPattern)
}

func TestNormalizeAdditionalDependencies(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, `
repos:
  - repo: https://github.com/psf/black
    rev: v24.1.0
    hooks:
      - id: black
        additional_dependencies: ["click==8.1.7"]
`))
	require.NoError(t, err)

	cfg, err := lc.Normalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"click==8.1.7"}, cfg.Hooks[0].Dependencies)
}

func TestNormalizeUnknownRepo(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, `
repos:
  - repo: https://github.com/nobody/obscure-hooks
    rev: v1.0.0
    hooks:
      - id: obscure-check
`))
	require.NoError(t, err)

	cfg, err := lc.Normalize()
	require.NoError(t, err)
	require.Len(t, cfg.Hooks, 1)

	hook := cfg.Hooks[0]
	assert.NotEmpty(t, hook.Unresolved)
	assert.Equal(t, "system", hook.Language)
	assert.Equal(t, "obscure-check", hook.Entry)
}

func TestNormalizeScriptLanguage(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, `
repos:
  - repo: local
    hooks:
      - id: run-checks
        language: script
        entry: scripts/run-checks.sh
`))
	require.NoError(t, err)

	cfg, err := lc.Normalize()
	require.NoError(t, err)

	hook := cfg.Hooks[0]
	assert.Equal(t, "system", hook.Language)
	assert.Equal(t, "scripts/run-checks.sh", hook.Entry)
	assert.Empty(t, hook.Unresolved)
}

func TestNormalizeDuplicateAcrossRepos(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, `
repos:
  - repo: https://github.com/psf/black
    rev: v24.1.0
    hooks:
      - id: black
  - repo: https://github.com/psf/black
    rev: v23.0.0
    hooks:
      - id: black
`))
	require.NoError(t, err)

	_, err = lc.Normalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate hook id")
}

func TestLookupRegistry(t *testing.T) {
	entry, found := LookupRegistry("https://github.com/astral-sh/ruff-pre-commit", "ruff")
	require.True(t, found)
	assert.Equal(t, "python", entry.Language)

	_, found = LookupRegistry("https://github.com/nobody/unknown", "ruff")
	assert.False(t, found)

	_, found = LookupRegistry("https://github.com/astral-sh/ruff-pre-commit", "unknown-hook")
	assert.False(t, found)
}

func TestVersionFromRev(t *testing.T) {
	tests := []struct {
		language string
		rev      string
		expected string
	}{
		{"python", "v0.8.3", "==0.8.3"},
		{"python", "24.1.0", "==24.1.0"},
		{"node", "v9.1.0", "^9.1.0"},
		{"ruby", "v1.60.0", "~> 1.60.0"},
		{"system", "v2.0.0", "2.0.0"},
		{"python", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, VersionFromRev(tt.language, tt.rev))
	}
}
