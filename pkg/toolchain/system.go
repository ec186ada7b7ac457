package toolchain

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rustyhook/rustyhook/pkg/envspec"
)

// systemInstaller performs no installation: the tool is resolved against the
// inherited PATH, and absence surfaces at execution time.
type systemInstaller struct{}

func (s *systemInstaller) Install(_ context.Context, _ envspec.Spec, _ string) error {
	return nil
}

func (s *systemInstaller) Resolve(spec envspec.Spec, _ string) (string, map[string]string, error) {
	path, err := exec.LookPath(spec.Tool)
	if err != nil {
		return "", nil, fmt.Errorf("executable %s not found on PATH: %w", spec.Tool, err)
	}
	return path, nil, nil
}
