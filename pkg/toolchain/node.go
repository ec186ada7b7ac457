package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/rustyhook/rustyhook/internal/log"
	"github.com/rustyhook/rustyhook/pkg/envspec"
	"github.com/rustyhook/rustyhook/pkg/platform"
)

// nodeInstaller materializes a minimal npm project with the tool and its
// declared dependencies installed locally.
type nodeInstaller struct {
	runtimes *Runtimes
	platform platform.Probe
}

func (n *nodeInstaller) Install(ctx context.Context, spec envspec.Spec, envDir string) error {
	if err := validateNodeRange(spec.ToolVersion); err != nil {
		return err
	}

	nodeExe, err := n.runtimes.EnsureNode(ctx, spec.InterpreterVersion)
	if err != nil {
		return err
	}

	manifest := filepath.Join(envDir, "package.json")
	if err := os.WriteFile(manifest, []byte("{\n  \"name\": \"rustyhook-env\",\n  \"private\": true\n}\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write package manifest: %w", err)
	}

	npm := filepath.Join(filepath.Dir(nodeExe), "npm"+n.platform.ExeSuffix())
	if !isExecutable(npm) {
		// Inherited node installations keep npm on PATH rather than
		// beside the binary.
		npm = "npm"
	}

	packages := append([]string{nodeRequirement(spec.Tool, spec.ToolVersion)}, spec.Dependencies...)
	args := append([]string{"install", "--no-audit", "--no-fund", "--prefix", envDir}, packages...)

	log.Debug("npm install", "dir", envDir, "packages", packages)
	if out, err := runCommand(ctx, envDir, npm, args...); err != nil {
		return fmt.Errorf("npm install failed: %w (%s)", err, out)
	}

	return nil
}

func (n *nodeInstaller) Resolve(spec envspec.Spec, envDir string) (string, map[string]string, error) {
	binDir := filepath.Join(envDir, "node_modules", ".bin")
	execPath := filepath.Join(binDir, spec.Tool+n.binSuffix())
	if !isExecutable(execPath) {
		return "", nil, fmt.Errorf("tool %s not present in environment %s", spec.Tool, envDir)
	}

	env := map[string]string{
		"PATH": prependPath(binDir),
	}
	return execPath, env, nil
}

// binSuffix returns the wrapper suffix npm writes into node_modules/.bin.
func (n *nodeInstaller) binSuffix() string {
	if n.platform.OS == platform.WindowsOS {
		return ".cmd"
	}
	return ""
}

// nodeRequirement joins a tool and its semver range into one npm install
// argument ("eslint" + "^9.1.0" -> "eslint@^9.1.0").
func nodeRequirement(tool, constraint string) string {
	if constraint == "" {
		return tool
	}
	return tool + "@" + constraint
}

// validateNodeRange rejects malformed semver ranges before any network work.
func validateNodeRange(constraint string) error {
	if constraint == "" {
		return nil
	}
	if _, err := semver.NewConstraint(constraint); err != nil {
		return fmt.Errorf("invalid version range %q: %w", constraint, err)
	}
	return nil
}
