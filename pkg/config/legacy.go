package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LegacyConfig is the upstream pre-commit dialect: a repos sequence instead of
// a flat hooks sequence.
type LegacyConfig struct {
	DefaultStages []string     `yaml:"default_stages,omitempty"`
	FailFast      bool         `yaml:"fail_fast,omitempty"`
	Exclude       string       `yaml:"exclude,omitempty"`
	Repos         []LegacyRepo `yaml:"repos"`
}

// LegacyRepo carries a source URL, a revision tag, and its hooks.
type LegacyRepo struct {
	Repo  string       `yaml:"repo"`
	Rev   string       `yaml:"rev"`
	Hooks []LegacyHook `yaml:"hooks"`
}

// LegacyHook is one hook record in the legacy dialect. Entry and language are
// usually derived from the registry rather than spelled out.
type LegacyHook struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name,omitempty"`
	Entry          string   `yaml:"entry,omitempty"`
	Language       string   `yaml:"language,omitempty"`
	Files          string   `yaml:"files,omitempty"`
	Exclude        string   `yaml:"exclude,omitempty"`
	Args           []string `yaml:"args,omitempty"`
	Stages         []string `yaml:"stages,omitempty"`
	AdditionalDeps []string `yaml:"additional_dependencies,omitempty"`
	PassFilenames  *bool    `yaml:"pass_filenames,omitempty"`
	AlwaysRun      bool     `yaml:"always_run,omitempty"`
}

// LoadLegacy reads a legacy-dialect config file without normalizing it.
// Use Normalize to obtain the internal hook sequence.
func LoadLegacy(configPath string) (*LegacyConfig, error) {
	data, err := readConfigFile(configPath, LegacyConfigName)
	if err != nil {
		return nil, err
	}

	var cfg LegacyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	for i, repo := range cfg.Repos {
		if repo.Repo == "" {
			return nil, fmt.Errorf("repo %d: repository URL is required", i)
		}
		if len(repo.Hooks) == 0 {
			return nil, fmt.Errorf("repo %d (%s): no hooks configured", i, repo.Repo)
		}
		for j, hook := range repo.Hooks {
			if hook.ID == "" {
				return nil, fmt.Errorf("repo %d (%s), hook %d: hook id is required", i, repo.Repo, j)
			}
		}
	}

	return &cfg, nil
}

// Normalize produces the internal Config from the legacy dialect. Hooks whose
// (repo, id) pair is unknown to the registry are kept with an Unresolved
// reason so list and convert still operate; execution reports them errored.
func (lc *LegacyConfig) Normalize() (*Config, error) {
	cfg := &Config{
		DefaultStages: lc.DefaultStages,
		FailFast:      lc.FailFast,
		Exclude:       lc.Exclude,
	}

	seen := make(map[string]bool)
	for _, repo := range lc.Repos {
		for _, legacy := range repo.Hooks {
			if seen[legacy.ID] {
				return nil, fmt.Errorf("duplicate hook id %q", legacy.ID)
			}
			seen[legacy.ID] = true

			cfg.Hooks = append(cfg.Hooks, normalizeLegacyHook(repo, legacy))
		}
	}

	// The flat-dialect normalizer handles defaults and pattern compilation;
	// ids were checked above against the whole config scope.
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizeLegacyHook maps one legacy hook onto the internal model, consulting
// the registry for language, entry, and version.
func normalizeLegacyHook(repo LegacyRepo, legacy LegacyHook) Hook {
	hook := Hook{
		ID:            legacy.ID,
		Name:          legacy.Name,
		Entry:         legacy.Entry,
		Language:      legacy.Language,
		Files:         legacy.Files,
		Exclude:       legacy.Exclude,
		Args:          legacy.Args,
		Stages:        legacy.Stages,
		Dependencies:  legacy.AdditionalDeps,
		PassFilenames: legacy.PassFilenames,
		AlwaysRun:     legacy.AlwaysRun,
	}

	// The legacy script language has no native equivalent: the entry is the
	// script path, resolved like any other system executable.
	if hook.Language == "script" {
		hook.Language = "system"
		if hook.Entry == "" {
			hook.Entry = legacy.ID
		}
		return hook
	}

	entry, found := LookupRegistry(repo.Repo, legacy.ID)
	if found {
		if hook.Language == "" {
			hook.Language = entry.Language
		}
		if hook.Entry == "" {
			hook.Entry = entry.Entry
		}
		if hook.Name == "" {
			hook.Name = entry.Name
		}
		if hook.Version == "" {
			hook.Version = VersionFromRev(entry.Language, repo.Rev)
		}
		return hook
	}

	// Unknown pair: keep the hook loadable but mark it so execution can
	// surface the miss instead of guessing an entry.
	if hook.Language == "" || hook.Entry == "" {
		hook.Unresolved = fmt.Sprintf("hook %q is not in the registry for %s", legacy.ID, repo.Repo)
		if hook.Language == "" {
			hook.Language = "system"
		}
		if hook.Entry == "" {
			hook.Entry = legacy.ID
		}
	}

	return hook
}
