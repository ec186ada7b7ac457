// Package matching turns a source file set and a hook's include/exclude
// patterns into the filename tail the hook is invoked with.
package matching

import (
	"sort"

	"github.com/dlclark/regexp2"

	"github.com/rustyhook/rustyhook/pkg/config"
)

// Mode selects where the source file set comes from.
type Mode int

const (
	// ModeChanged uses the staged change set; the default for run.
	ModeChanged Mode = iota
	// ModeAll uses every tracked file; forced by --all-files.
	ModeAll
	// ModeExplicit uses a caller-provided list; --files.
	ModeExplicit
)

// Matcher filters source file sets for hooks. The global exclude pattern is
// applied after each hook's own patterns.
type Matcher struct {
	globalExclude *regexp2.Regexp
}

// NewMatcher creates a matcher with the config-wide exclude pattern.
func NewMatcher(globalExclude *regexp2.Regexp) *Matcher {
	return &Matcher{globalExclude: globalExclude}
}

// FilesForHook returns the deterministic filtering of the source set by the
// hook's files pattern, then its exclude, then the global exclude, preserving
// repository order.
func (m *Matcher) FilesForHook(hook *config.Hook, sourceSet []string) []string {
	ordered := make([]string, len(sourceSet))
	copy(ordered, sourceSet)
	sort.Strings(ordered)

	var selected []string
	for _, file := range ordered {
		if !matches(hook.FilesPattern, file, true) {
			continue
		}
		if matches(hook.ExcludePattern, file, false) {
			continue
		}
		if matches(m.globalExclude, file, false) {
			continue
		}
		selected = append(selected, file)
	}

	return selected
}

// ShouldSkip reports whether the hook is skipped outright: nothing matched
// and the hook is not marked always_run.
func (m *Matcher) ShouldSkip(hook *config.Hook, selected []string) bool {
	return len(selected) == 0 && !hook.AlwaysRun
}

// matches evaluates an optional pattern against one path. A nil pattern
// yields emptyResult, so include patterns default to "everything" and
// exclude patterns to "nothing".
func matches(re *regexp2.Regexp, file string, emptyResult bool) bool {
	if re == nil {
		return emptyResult
	}
	matched, err := re.MatchString(file)
	if err != nil {
		// Patterns are compiled at load; a runtime error here means the
		// engine timed out on a pathological input. Treat as no match.
		return false
	}
	return matched
}
