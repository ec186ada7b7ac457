package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLegacyRegistryHit(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, legacyRuffConfig))
	require.NoError(t, err)

	out, err := ConvertLegacy(lc)
	require.NoError(t, err)

	assert.Contains(t, out, "language: python")
	assert.Contains(t, out, `version: ==0.8.3`)
	assert.Contains(t, out, "id: ruff")
	assert.NotContains(t, out, "WARNING")
}

func TestConvertLegacyUnknownRepo(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, `
repos:
  - repo: https://github.com/nobody/obscure-hooks
    rev: v1.0.0
    hooks:
      - id: obscure-check
`))
	require.NoError(t, err)

	out, err := ConvertLegacy(lc)
	require.NoError(t, err)

	assert.Contains(t, out, "# WARNING:")
	assert.Contains(t, out, "language: system")
	assert.Contains(t, out, "entry: obscure-check")
}

// Converting a fully-registered legacy config and loading the result must
// yield the same normalized hook sequence as normalizing the legacy input.
func TestConvertRoundTrip(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, `
fail_fast: true
exclude: "^docs/"
repos:
  - repo: https://github.com/astral-sh/ruff-pre-commit
    rev: v0.8.3
    hooks:
      - id: ruff
        args: ["--fix"]
  - repo: https://github.com/psf/black
    rev: v24.1.0
    hooks:
      - id: black
        additional_dependencies: ["click==8.1.7"]
        stages: [pre-push]
`))
	require.NoError(t, err)

	fromLegacy, err := lc.Normalize()
	require.NoError(t, err)

	converted, err := ConvertLegacy(lc)
	require.NoError(t, err)

	fromNative, err := Load(writeConfig(t, converted))
	require.NoError(t, err)

	assert.Equal(t, fromLegacy.FailFast, fromNative.FailFast)
	assert.Equal(t, fromLegacy.Exclude, fromNative.Exclude)
	require.Equal(t, len(fromLegacy.Hooks), len(fromNative.Hooks))

	for i := range fromLegacy.Hooks {
		want, got := fromLegacy.Hooks[i], fromNative.Hooks[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Language, got.Language)
		assert.Equal(t, want.Entry, got.Entry)
		assert.Equal(t, want.Version, got.Version)
		assert.Equal(t, want.Args, got.Args)
		assert.Equal(t, want.Stages, got.Stages)
		assert.Equal(t, want.Dependencies, got.Dependencies)
	}
}

func TestConvertEmitsValidIndentation(t *testing.T) {
	lc, err := LoadLegacy(writeConfig(t, legacyRuffConfig))
	require.NoError(t, err)

	out, err := ConvertLegacy(lc)
	require.NoError(t, err)

	var sawHookItem bool
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  - ") {
			sawHookItem = true
		}
	}
	assert.True(t, sawHookItem)
}
