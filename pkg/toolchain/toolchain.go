// Package toolchain provisions hermetic per-tool environments keyed by
// EnvSpec fingerprint and resolves the executable each hook invokes.
package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyhook/rustyhook/pkg/config"
	"github.com/rustyhook/rustyhook/pkg/envspec"
)

// Default interpreter lines requested when a hook does not constrain one.
const (
	DefaultPythonSeries = "3.12"
	DefaultNodeMajor    = "20"
	DefaultRubySeries   = "3.3"
)

// EnvHandle is the result of provisioning: where the tool lives and what the
// subprocess environment overlays.
type EnvHandle struct {
	ExecPath    string
	Env         map[string]string
	Fingerprint string
}

// SpecForHook derives the provisioning identity from a hook. The tool is the
// first entry token; the interpreter line is the per-language default.
func SpecForHook(hook *config.Hook) envspec.Spec {
	return envspec.Spec{
		Language:           hook.Language,
		Tool:               ToolName(hook.Entry),
		ToolVersion:        hook.Version,
		InterpreterVersion: defaultInterpreter(hook.Language),
		Dependencies:       hook.Dependencies,
	}
}

// ToolName returns the executable named by an entry string.
func ToolName(entry string) string {
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func defaultInterpreter(language string) string {
	switch language {
	case "python":
		return DefaultPythonSeries
	case "node":
		return DefaultNodeMajor
	case "ruby":
		return DefaultRubySeries
	default:
		return ""
	}
}

// ProvisionHook provisions the environment a hook dispatches against.
func (p *Provisioner) ProvisionHook(ctx context.Context, hook *config.Hook) (EnvHandle, error) {
	return p.Provision(ctx, SpecForHook(hook))
}

// installer is the capability set one language needs: materialize an
// environment and resolve the tool inside it. The variant set is closed;
// the dispatcher is the only client.
type installer interface {
	// Install materializes the environment for spec under envDir.
	Install(ctx context.Context, spec envspec.Spec, envDir string) error
	// Resolve returns the executable path and env overlay for a ready envDir.
	Resolve(spec envspec.Spec, envDir string) (string, map[string]string, error)
}

// installerFor returns the installer variant for a language tag.
func (p *Provisioner) installerFor(language string) (installer, error) {
	switch language {
	case "python":
		return &pythonInstaller{runtimes: p.runtimes, platform: p.platform}, nil
	case "node":
		return &nodeInstaller{runtimes: p.runtimes, platform: p.platform}, nil
	case "ruby":
		return &rubyInstaller{runtimes: p.runtimes, platform: p.platform}, nil
	case "system":
		return &systemInstaller{}, nil
	default:
		return nil, fmt.Errorf("unknown language %q", language)
	}
}
