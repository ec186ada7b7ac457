// Package config provides configuration parsing and normalization for rustyhook.
// Two dialects are accepted: the native dialect with a top-level hooks sequence,
// and the legacy pre-commit dialect with a top-level repos sequence. Both
// normalize to the same internal Hook model.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

// Stage names after alias normalization.
const (
	StageCommit      = "commit"
	StagePush        = "push"
	StageManual      = "manual"
	StageMergeCommit = "merge-commit"
)

// Default config locations relative to the repository root.
const (
	NativeConfigName = ".rustyhook/config.yaml"
	LegacyConfigName = ".pre-commit-config.yaml"
)

// EnvConfigPath overrides the config path when set.
const EnvConfigPath = "RUSTYHOOK_CONFIG"

// Hook is the internal model: the atomic unit of work, shared by both dialects.
type Hook struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name,omitempty"`
	Language        string            `yaml:"language"`
	Entry           string            `yaml:"entry"`
	Args            []string          `yaml:"args,omitempty"`
	Files           string            `yaml:"files,omitempty"`
	Exclude         string            `yaml:"exclude,omitempty"`
	Stages          []string          `yaml:"stages,omitempty"`
	Version         string            `yaml:"version,omitempty"`
	Dependencies    []string          `yaml:"dependencies,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	PassFilenames   *bool             `yaml:"pass_filenames,omitempty"`
	AlwaysRun       bool              `yaml:"always_run,omitempty"`
	WorkingDir      string            `yaml:"working_dir,omitempty"`
	SeparateProcess bool              `yaml:"separate_process,omitempty"`

	// Compiled at load time so run never discovers malformed patterns late.
	FilesPattern   *regexp2.Regexp `yaml:"-"`
	ExcludePattern *regexp2.Regexp `yaml:"-"`

	// Set by the legacy normalizer when the (repo, id) pair is not in the
	// registry. The hook still lists and converts; execution reports it
	// as errored with this reason.
	Unresolved string `yaml:"-"`
}

// ShouldPassFilenames reports whether the filename tail is appended to argv.
// Defaults to true when unset.
func (h *Hook) ShouldPassFilenames() bool {
	if h.PassFilenames == nil {
		return true
	}
	return *h.PassFilenames
}

// EffectiveName returns the human label, falling back to the id.
func (h *Hook) EffectiveName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// HasStage reports whether the hook is configured for the given stage.
func (h *Hook) HasStage(stage string) bool {
	for _, s := range h.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Config is the root document after normalization. Exactly one of the two
// dialect loaders produces it.
type Config struct {
	DefaultStages []string `yaml:"default_stages,omitempty"`
	FailFast      bool     `yaml:"fail_fast,omitempty"`
	Parallelism   int      `yaml:"parallelism,omitempty"`
	Exclude       string   `yaml:"exclude,omitempty"`
	Hooks         []Hook   `yaml:"hooks"`

	ExcludePattern *regexp2.Regexp `yaml:"-"`
}

// Load reads and normalizes a native-dialect config file.
func Load(configPath string) (*Config, error) {
	data, err := readConfigFile(configPath, NativeConfigName)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return &cfg, nil
}

// ResolvePath picks the config path from the explicit flag, the environment
// override, or the dialect default, in that order.
func ResolvePath(flagPath, defaultName string) string {
	if flagPath != "" {
		return flagPath
	}
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath
	}
	return defaultName
}

// normalize applies defaults, compiles patterns, and validates identifiers.
func (c *Config) normalize() error {
	if len(c.DefaultStages) == 0 {
		c.DefaultStages = []string{StageCommit}
	}
	c.DefaultStages = normalizeStages(c.DefaultStages)

	var err error
	if c.ExcludePattern, err = compilePattern(c.Exclude); err != nil {
		return fmt.Errorf("global exclude: %w", err)
	}

	seen := make(map[string]bool, len(c.Hooks))
	for i := range c.Hooks {
		hook := &c.Hooks[i]
		if hook.ID == "" {
			return fmt.Errorf("hook %d: id is required", i)
		}
		if seen[hook.ID] {
			return fmt.Errorf("duplicate hook id %q", hook.ID)
		}
		seen[hook.ID] = true

		if err := normalizeHook(hook, c.DefaultStages); err != nil {
			return fmt.Errorf("hook %q: %w", hook.ID, err)
		}
	}

	return nil
}

// normalizeHook applies per-hook defaults and compiles its patterns.
func normalizeHook(hook *Hook, defaultStages []string) error {
	if hook.Language == "" {
		return fmt.Errorf("language is required")
	}
	if !knownLanguage(hook.Language) {
		return fmt.Errorf("unknown language %q", hook.Language)
	}
	if hook.Entry == "" && hook.Unresolved == "" {
		return fmt.Errorf("entry is required")
	}

	if len(hook.Stages) == 0 {
		hook.Stages = append([]string(nil), defaultStages...)
	}
	hook.Stages = normalizeStages(hook.Stages)

	var err error
	if hook.FilesPattern, err = compilePattern(hook.Files); err != nil {
		return fmt.Errorf("files pattern: %w", err)
	}
	if hook.ExcludePattern, err = compilePattern(hook.Exclude); err != nil {
		return fmt.Errorf("exclude pattern: %w", err)
	}

	return nil
}

// knownLanguage reports whether the tag names a supported toolchain.
func knownLanguage(language string) bool {
	switch language {
	case "python", "node", "ruby", "system":
		return true
	}
	return false
}

// compilePattern compiles an optional regex field. Empty means "no filter".
func compilePattern(pattern string) (*regexp2.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", pattern, err)
	}
	return re, nil
}

// normalizeStages rewrites legacy stage aliases onto the canonical names.
func normalizeStages(stages []string) []string {
	normalized := make([]string, 0, len(stages))
	for _, stage := range stages {
		switch stage {
		case "pre-commit":
			normalized = append(normalized, StageCommit)
		case "pre-push":
			normalized = append(normalized, StagePush)
		case "pre-merge-commit":
			normalized = append(normalized, StageMergeCommit)
		default:
			normalized = append(normalized, stage)
		}
	}
	return normalized
}

// readConfigFile reads a config file, rejecting empty documents the way the
// YAML parser cannot.
func readConfigFile(configPath, defaultName string) ([]byte, error) {
	if configPath == "" {
		configPath = defaultName
	}

	if !filepath.IsAbs(configPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		configPath = filepath.Join(cwd, configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- user-selected config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("config file %s is empty", configPath)
	}

	return data, nil
}

// DefaultConfig returns the document written by the init command.
func DefaultConfig() *Config {
	return &Config{
		DefaultStages: []string{StageCommit},
		Hooks: []Hook{
			{
				ID:       "trailing-whitespace",
				Name:     "Trim Trailing Whitespace",
				Language: "python",
				Entry:    "trailing-whitespace-fixer",
				Version:  "==4.5.0",
			},
			{
				ID:       "end-of-file-fixer",
				Name:     "Fix End of Files",
				Language: "python",
				Entry:    "end-of-file-fixer",
				Version:  "==4.5.0",
			},
		},
	}
}
