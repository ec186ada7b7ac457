package toolchain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rustyhook/rustyhook/internal/log"
	"github.com/rustyhook/rustyhook/pkg/envspec"
	"github.com/rustyhook/rustyhook/pkg/platform"
)

// rubyInstaller materializes a gem root with the tool and its declared
// dependencies installed into it.
type rubyInstaller struct {
	runtimes *Runtimes
	platform platform.Probe
}

func (r *rubyInstaller) Install(ctx context.Context, spec envspec.Spec, envDir string) error {
	rubyExe, err := r.runtimes.EnsureRuby(ctx, spec.InterpreterVersion)
	if err != nil {
		return err
	}

	gem := filepath.Join(filepath.Dir(rubyExe), "gem"+r.platform.ExeSuffix())
	if !isExecutable(gem) {
		gem = "gem"
	}

	binDir := filepath.Join(envDir, "bin")
	install := func(pkg, constraint string) error {
		args := []string{
			"install", pkg,
			"--install-dir", envDir,
			"--bindir", binDir,
			"--no-document",
		}
		if constraint != "" {
			args = append(args, "--version", constraint)
		}
		log.Debug("gem install", "package", pkg, "dir", envDir)
		if out, err := runCommand(ctx, envDir, gem, args...); err != nil {
			return fmt.Errorf("gem install %s failed: %w (%s)", pkg, err, out)
		}
		return nil
	}

	if err := install(spec.Tool, spec.ToolVersion); err != nil {
		return err
	}
	for _, dep := range spec.Dependencies {
		if err := install(dep, ""); err != nil {
			return err
		}
	}

	return nil
}

func (r *rubyInstaller) Resolve(spec envspec.Spec, envDir string) (string, map[string]string, error) {
	binDir := filepath.Join(envDir, "bin")
	execPath := filepath.Join(binDir, spec.Tool)
	if !isExecutable(execPath) {
		return "", nil, fmt.Errorf("tool %s not present in environment %s", spec.Tool, envDir)
	}

	env := map[string]string{
		"GEM_HOME": envDir,
		"GEM_PATH": envDir,
		"PATH":     prependPath(binDir),
	}
	return execPath, env, nil
}
