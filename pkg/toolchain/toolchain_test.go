package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyhook/rustyhook/pkg/config"
)

func TestToolName(t *testing.T) {
	tests := []struct {
		entry    string
		expected string
	}{
		{"ruff", "ruff"},
		{"ruff check --force-exclude", "ruff"},
		{"  black  ", "black"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ToolName(tt.entry))
	}
}

func TestSpecForHook(t *testing.T) {
	hook := &config.Hook{
		ID:           "ruff",
		Language:     "python",
		Entry:        "ruff check",
		Version:      "==0.4.0",
		Dependencies: []string{"tomli==2.0.1"},
	}

	spec := SpecForHook(hook)
	assert.Equal(t, "python", spec.Language)
	assert.Equal(t, "ruff", spec.Tool)
	assert.Equal(t, "==0.4.0", spec.ToolVersion)
	assert.Equal(t, DefaultPythonSeries, spec.InterpreterVersion)
	assert.Equal(t, []string{"tomli==2.0.1"}, spec.Dependencies)
}

// Two hooks with the same provisioning identity share one fingerprint even
// when their invocation details differ.
func TestSpecForHookSharedFingerprint(t *testing.T) {
	a := &config.Hook{ID: "ruff-check", Language: "python", Entry: "ruff check", Version: "==0.4.0"}
	b := &config.Hook{ID: "ruff-lint", Language: "python", Entry: "ruff", Version: "==0.4.0", Args: []string{"--fix"}}

	assert.Equal(t, SpecForHook(a).Fingerprint(), SpecForHook(b).Fingerprint())
}

func TestSpecForHookSystemHasNoInterpreter(t *testing.T) {
	hook := &config.Hook{ID: "shellcheck", Language: "system", Entry: "shellcheck"}
	assert.Empty(t, SpecForHook(hook).InterpreterVersion)
}

func TestPythonRequirement(t *testing.T) {
	assert.Equal(t, "ruff==0.4.0", pythonRequirement("ruff", "==0.4.0"))
	assert.Equal(t, "ruff", pythonRequirement("ruff", ""))
}

func TestNodeRequirement(t *testing.T) {
	assert.Equal(t, "eslint@^9.1.0", nodeRequirement("eslint", "^9.1.0"))
	assert.Equal(t, "eslint", nodeRequirement("eslint", ""))
}

func TestValidateNodeRange(t *testing.T) {
	assert.NoError(t, validateNodeRange(""))
	assert.NoError(t, validateNodeRange("^9.1.0"))
	assert.NoError(t, validateNodeRange(">=8, <10"))
	assert.Error(t, validateNodeRange("not-a-range"))
}

func TestVersionSatisfiesPrefix(t *testing.T) {
	tests := []struct {
		reported string
		prefix   string
		expected bool
	}{
		{"3.12.7", "3.12", true},
		{"3.11.2", "3.12", false},
		{"20.18.0", "20", true},
		{"18.20.4", "20", false},
		{"garbage", "3.12", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, versionSatisfiesPrefix(tt.reported, tt.prefix),
			"%s vs %s", tt.reported, tt.prefix)
	}
}

func TestSeriesFloor(t *testing.T) {
	assert.Equal(t, "3.12.0", seriesFloor("3.12"))
	assert.Equal(t, "20.0", seriesFloor("20"))
}
