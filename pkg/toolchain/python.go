package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rustyhook/rustyhook/internal/log"
	"github.com/rustyhook/rustyhook/pkg/envspec"
	"github.com/rustyhook/rustyhook/pkg/platform"
)

// pythonInstaller materializes an isolated venv with the tool and its
// declared dependencies installed by pip.
type pythonInstaller struct {
	runtimes *Runtimes
	platform platform.Probe
}

func (p *pythonInstaller) Install(ctx context.Context, spec envspec.Spec, envDir string) error {
	interpreter, err := p.runtimes.EnsurePython(ctx, spec.InterpreterVersion)
	if err != nil {
		return err
	}

	log.Debug("creating venv", "dir", envDir)
	if out, err := runCommand(ctx, envDir, interpreter, "-m", "venv", envDir); err != nil {
		return fmt.Errorf("venv creation failed: %w (%s)", err, out)
	}

	envPython := filepath.Join(envDir, p.platform.BinDir(), "python"+p.platform.ExeSuffix())

	packages := append([]string{pythonRequirement(spec.Tool, spec.ToolVersion)}, spec.Dependencies...)
	args := append([]string{"-m", "pip", "install", "--quiet", "--disable-pip-version-check"}, packages...)
	if out, err := runCommand(ctx, envDir, envPython, args...); err != nil {
		return fmt.Errorf("pip install failed: %w (%s)", err, out)
	}

	return nil
}

func (p *pythonInstaller) Resolve(spec envspec.Spec, envDir string) (string, map[string]string, error) {
	binDir := filepath.Join(envDir, p.platform.BinDir())
	execPath := filepath.Join(binDir, spec.Tool+p.platform.ExeSuffix())
	if !isExecutable(execPath) {
		return "", nil, fmt.Errorf("tool %s not present in environment %s", spec.Tool, envDir)
	}

	env := map[string]string{
		"VIRTUAL_ENV": envDir,
		"PATH":        prependPath(binDir),
	}
	return execPath, env, nil
}

// pythonRequirement joins a tool and its pinned constraint into one pip
// requirement ("ruff" + "==0.4.0" -> "ruff==0.4.0").
func pythonRequirement(tool, constraint string) string {
	if constraint == "" {
		return tool
	}
	return tool + strings.TrimSpace(constraint)
}
