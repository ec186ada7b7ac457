package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConvertLegacy rewrites a legacy-dialect config as a native-dialect document.
// Registry hits produce complete hooks; unknown repos are emitted with a
// warning comment, language system, and the hook id as a placeholder entry.
func ConvertLegacy(lc *LegacyConfig) (string, error) {
	cfg, err := lc.Normalize()
	if err != nil {
		return "", err
	}

	var b strings.Builder

	header := Config{
		DefaultStages: lc.DefaultStages,
		FailFast:      lc.FailFast,
		Exclude:       lc.Exclude,
	}
	if err := encodeFragment(&b, &header); err != nil {
		return "", err
	}

	b.WriteString("hooks:\n")
	for i := range cfg.Hooks {
		hook := &cfg.Hooks[i]
		if hook.Unresolved != "" {
			fmt.Fprintf(&b, "  # WARNING: %s; entry left as the hook id, complete it by hand\n", hook.Unresolved)
		}
		if err := encodeHook(&b, hook); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// encodeFragment marshals the top-level scalar fields, dropping the empty
// hooks sequence the Config marshaler would otherwise emit.
func encodeFragment(b *strings.Builder, header *Config) error {
	data, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode config header: %w", err)
	}

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "hooks: []" || line == "hooks: null" || line == "{}" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return nil
}

// encodeHook marshals one hook as a two-space-indented sequence item.
func encodeHook(b *strings.Builder, hook *Hook) error {
	data, err := yaml.Marshal(hook)
	if err != nil {
		return fmt.Errorf("failed to encode hook %q: %w", hook.ID, err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(b, "  - %s\n", line)
		} else {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
	return nil
}
