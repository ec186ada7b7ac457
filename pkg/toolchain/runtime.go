package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/rustyhook/rustyhook/internal/log"
	"github.com/rustyhook/rustyhook/pkg/cache"
	"github.com/rustyhook/rustyhook/pkg/download"
	"github.com/rustyhook/rustyhook/pkg/platform"
)

// Runtime distribution URL templates. Version, platform, and extension are
// substituted per request; the python-build-standalone release tag is pinned
// so fingerprinted environments stay reproducible.
const (
	pythonStandaloneRelease = "20241002"
	pythonDownloadURL       = "https://github.com/astral-sh/python-build-standalone/releases/download/%s/cpython-%s+%s-%s-install_only%s"
	nodeDownloadURL         = "https://nodejs.org/dist/v%s/node-v%s-%s-%s%s"
)

// patch levels resolved for bare series requests.
var pythonPatchVersions = map[string]string{
	"3.9":  "3.9.20",
	"3.10": "3.10.15",
	"3.11": "3.11.10",
	"3.12": "3.12.7",
}

var nodeLatestByMajor = map[string]string{
	"18": "18.20.4",
	"20": "20.18.0",
	"22": "22.9.0",
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Runtimes acquires interpreters: an inherited one matching the requested
// version when present, otherwise (python and node only) a prebuilt archive
// downloaded into the cache's runtimes subtree.
type Runtimes struct {
	root     *cache.Root
	dl       *download.Manager
	platform platform.Probe
}

// NewRuntimes creates the interpreter acquirer over one cache root.
func NewRuntimes(root *cache.Root, dl *download.Manager, probe platform.Probe) *Runtimes {
	return &Runtimes{root: root, dl: dl, platform: probe}
}

// EnsurePython returns a python executable for the requested series,
// probing inherited interpreters before downloading a standalone build.
func (r *Runtimes) EnsurePython(ctx context.Context, series string) (string, error) {
	for _, name := range []string{"python" + series, "python3", "python"} {
		if path, ok := r.probe(name, "--version", series); ok {
			return path, nil
		}
	}

	patch, ok := pythonPatchVersions[series]
	if !ok {
		return "", fmt.Errorf("no prebuilt python available for series %s", series)
	}

	runtimeDir := r.root.RuntimeDir("python", patch)
	pythonExe := filepath.Join(runtimeDir, "python", r.platform.BinDir(), "python3"+r.platform.ExeSuffix())
	if r.platform.OS == platform.WindowsOS {
		pythonExe = filepath.Join(runtimeDir, "python", "python.exe")
	}
	if isExecutable(pythonExe) {
		return pythonExe, nil
	}

	// python-build-standalone ships tar.gz on every platform.
	triple := r.pythonTriple()
	url := fmt.Sprintf(pythonDownloadURL, pythonStandaloneRelease, patch, pythonStandaloneRelease, triple, ".tar.gz")
	if err := r.fetchRuntime(ctx, "python", patch, url, ".tar.gz", runtimeDir); err != nil {
		return "", err
	}

	return r.verify(pythonExe, "--version")
}

// EnsureNode returns a node executable for the requested major version.
func (r *Runtimes) EnsureNode(ctx context.Context, major string) (string, error) {
	if path, ok := r.probe("node", "--version", major); ok {
		return path, nil
	}

	version, ok := nodeLatestByMajor[major]
	if !ok {
		return "", fmt.Errorf("no prebuilt node available for major version %s", major)
	}

	distName := fmt.Sprintf("node-v%s-%s-%s", version, r.nodeOS(), r.platform.NormalizedArch())
	runtimeDir := r.root.RuntimeDir("node", version)
	nodeExe := filepath.Join(runtimeDir, distName, "bin", "node"+r.platform.ExeSuffix())
	if r.platform.OS == platform.WindowsOS {
		nodeExe = filepath.Join(runtimeDir, distName, "node.exe")
	}
	if isExecutable(nodeExe) {
		return nodeExe, nil
	}

	url := fmt.Sprintf(nodeDownloadURL, version, version, r.nodeOS(), r.platform.NormalizedArch(), r.platform.ArchiveExt())
	if err := r.fetchRuntime(ctx, "node", version, url, r.platform.ArchiveExt(), runtimeDir); err != nil {
		return "", err
	}

	return r.verify(nodeExe, "--version")
}

// EnsureRuby returns a ruby executable for the requested series. No ruby
// runtime is downloaded or cached; an inherited interpreter on PATH is
// required, preferably one in the requested series.
func (r *Runtimes) EnsureRuby(_ context.Context, series string) (string, error) {
	if path, ok := r.probe("ruby", "--version", series); ok {
		return path, nil
	}
	// Accept any inherited ruby rather than failing outright: gem installs
	// into an isolated GEM_HOME regardless of the interpreter patch level.
	if path, ok := r.probe("ruby", "--version", ""); ok {
		log.Warn("inherited ruby does not match requested series", "requested", series)
		return path, nil
	}
	return "", fmt.Errorf("no ruby interpreter found on PATH and no prebuilt available for %s/%s",
		r.platform.OS, r.platform.Arch)
}

// fetchRuntime downloads one runtime archive through the archive cache and
// extracts it into the runtimes subtree.
func (r *Runtimes) fetchRuntime(ctx context.Context, language, version, url, ext, runtimeDir string) error {
	log.Info("downloading runtime", "language", language, "version", version)

	archivePath := r.root.ArchivePath(download.Sha256String(url), ext)
	if err := r.dl.FetchAndExtract(ctx, url, archivePath, "", runtimeDir); err != nil {
		_ = os.RemoveAll(runtimeDir)
		return fmt.Errorf("failed to install %s %s: %w", language, version, err)
	}
	return nil
}

// probe checks one executable name on PATH against a version prefix.
// An empty wantPrefix accepts any version that reports at all.
func (r *Runtimes) probe(name, versionFlag, wantPrefix string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}

	out, err := exec.Command(path, versionFlag).CombinedOutput() // #nosec G204 -- probing a PATH executable
	if err != nil {
		return "", false
	}

	reported := versionPattern.FindString(string(out))
	if reported == "" {
		return "", false
	}
	if wantPrefix == "" {
		return path, true
	}

	if !versionSatisfiesPrefix(reported, wantPrefix) {
		return "", false
	}
	return path, true
}

// versionSatisfiesPrefix reports whether a concrete version falls in the
// series named by prefix ("3.12" matches 3.12.x, "20" matches 20.x.y).
func versionSatisfiesPrefix(reported, prefix string) bool {
	v, err := goversion.NewVersion(reported)
	if err != nil {
		return false
	}

	constraint, err := goversion.NewConstraint(fmt.Sprintf("~> %s", seriesFloor(prefix)))
	if err != nil {
		return false
	}
	return constraint.Check(v)
}

// seriesFloor pads a series to the pessimistic-constraint floor whose upper
// bound is the next series: "3.12" becomes "3.12.0" (< 3.13), bare majors
// like "20" become "20.0" (< 21).
func seriesFloor(prefix string) string {
	return prefix + ".0"
}

// verify runs the freshly-extracted interpreter once to confirm the archive
// was usable.
func (r *Runtimes) verify(exePath, versionFlag string) (string, error) {
	out, err := exec.Command(exePath, versionFlag).CombinedOutput() // #nosec G204 -- verifying extracted runtime
	if err != nil {
		return "", fmt.Errorf("runtime verification failed for %s: %w (%s)", exePath, err, strings.TrimSpace(string(out)))
	}
	return exePath, nil
}

// pythonTriple maps the platform probe onto python-build-standalone's
// target-triple naming.
func (r *Runtimes) pythonTriple() string {
	arch := map[string]string{
		platform.ArchAMD64: "x86_64",
		platform.ArchARM64: "aarch64",
		platform.Arch386:   "i686",
	}[r.platform.Arch]
	if arch == "" {
		arch = r.platform.Arch
	}

	switch r.platform.OS {
	case platform.DarwinOS:
		return arch + "-apple-darwin"
	case platform.WindowsOS:
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-linux-gnu"
	}
}

// nodeOS maps the probe onto nodejs.org's distribution naming.
func (r *Runtimes) nodeOS() string {
	if r.platform.OS == platform.WindowsOS {
		return "win"
	}
	return r.platform.OS
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
