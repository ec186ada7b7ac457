package config

import (
	"fmt"
	"strings"
)

// RegistryEntry describes how a well-known legacy hook is invoked once its
// repository is replaced by a provisioned environment.
type RegistryEntry struct {
	Name     string
	Language string
	Entry    string
}

// registry maps (repo URL, hook id) to the tool behind it. Legacy configs
// rarely spell out entry or language; this table supplies both without
// cloning anything.
var registry = map[string]map[string]RegistryEntry{
	"https://github.com/pre-commit/pre-commit-hooks": {
		"trailing-whitespace":     {Name: "Trim Trailing Whitespace", Language: "python", Entry: "trailing-whitespace-fixer"},
		"end-of-file-fixer":       {Name: "Fix End of Files", Language: "python", Entry: "end-of-file-fixer"},
		"check-yaml":              {Name: "Check Yaml", Language: "python", Entry: "check-yaml"},
		"check-json":              {Name: "Check JSON", Language: "python", Entry: "check-json"},
		"check-toml":              {Name: "Check Toml", Language: "python", Entry: "check-toml"},
		"check-xml":               {Name: "Check Xml", Language: "python", Entry: "check-xml"},
		"check-added-large-files": {Name: "Check for added large files", Language: "python", Entry: "check-added-large-files"},
		"check-merge-conflict":    {Name: "Check for merge conflicts", Language: "python", Entry: "check-merge-conflict"},
		"mixed-line-ending":       {Name: "Mixed line ending", Language: "python", Entry: "mixed-line-ending"},
	},
	"https://github.com/astral-sh/ruff-pre-commit": {
		"ruff":        {Name: "ruff", Language: "python", Entry: "ruff"},
		"ruff-format": {Name: "ruff-format", Language: "python", Entry: "ruff format"},
	},
	"https://github.com/psf/black": {
		"black": {Name: "black", Language: "python", Entry: "black"},
	},
	"https://github.com/pycqa/flake8": {
		"flake8": {Name: "flake8", Language: "python", Entry: "flake8"},
	},
	"https://github.com/pycqa/isort": {
		"isort": {Name: "isort", Language: "python", Entry: "isort"},
	},
	"https://github.com/pycqa/bandit": {
		"bandit": {Name: "bandit", Language: "python", Entry: "bandit"},
	},
	"https://github.com/python/mypy": {
		"mypy": {Name: "mypy", Language: "python", Entry: "mypy"},
	},
	"https://github.com/pre-commit/mirrors-mypy": {
		"mypy": {Name: "mypy", Language: "python", Entry: "mypy"},
	},
	"https://github.com/pre-commit/mirrors-eslint": {
		"eslint": {Name: "eslint", Language: "node", Entry: "eslint"},
	},
	"https://github.com/pre-commit/mirrors-prettier": {
		"prettier": {Name: "prettier", Language: "node", Entry: "prettier"},
	},
	"https://github.com/prettier/prettier": {
		"prettier": {Name: "prettier", Language: "node", Entry: "prettier"},
	},
	"https://github.com/standard/standard": {
		"standard": {Name: "JavaScript Standard Style", Language: "node", Entry: "standard"},
	},
	"https://github.com/mattlqx/pre-commit-ruby": {
		"rubocop": {Name: "rubocop", Language: "ruby", Entry: "rubocop"},
	},
	"https://github.com/rubocop/rubocop": {
		"rubocop": {Name: "rubocop", Language: "ruby", Entry: "rubocop"},
	},
	"https://github.com/adrienverge/yamllint": {
		"yamllint": {Name: "yamllint", Language: "python", Entry: "yamllint"},
	},
	"https://github.com/codespell-project/codespell": {
		"codespell": {Name: "codespell", Language: "python", Entry: "codespell"},
	},
}

// LookupRegistry returns the registry entry for a (repo URL, hook id) pair.
func LookupRegistry(repoURL, hookID string) (RegistryEntry, bool) {
	repoHooks, ok := registry[strings.TrimSuffix(repoURL, "/")]
	if !ok {
		return RegistryEntry{}, false
	}
	entry, ok := repoHooks[hookID]
	return entry, ok
}

// VersionFromRev derives the native version constraint from a legacy Git
// revision tag: pinned equality for Python, a caret range for Node, and a
// pessimistic gem requirement for Ruby.
func VersionFromRev(language, rev string) string {
	version := strings.TrimPrefix(strings.TrimSpace(rev), "v")
	if version == "" {
		return ""
	}

	switch language {
	case "python":
		return "==" + version
	case "node":
		return "^" + version
	case "ruby":
		return fmt.Sprintf("~> %s", version)
	default:
		return version
	}
}
