package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/cache"
	"github.com/rustyhook/rustyhook/pkg/git"
)

// DoctorCommand probes interpreters and cache health.
type DoctorCommand struct{}

// DoctorOptions holds command-line options for the doctor command.
type DoctorOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Show probe details"`
	Help    bool `short:"h" long:"help"    description:"Show this help message"`
}

// Help returns the help text for the doctor command.
func (c *DoctorCommand) Help() string {
	var opts DoctorOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "doctor",
		Description: "Probe language interpreters and check cache health.",
		Examples: []Example{
			{Command: "rustyhook doctor", Description: "Report missing prerequisites"},
		},
		Notes: []string{
			"A missing interpreter is not fatal: the provisioner downloads prebuilt runtimes for python and node.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the doctor command.
func (c *DoctorCommand) Synopsis() string {
	return "Probe interpreters and cache health"
}

var (
	okMark   = color.New(color.FgGreen).Sprint("ok")
	warnMark = color.New(color.FgYellow).Sprint("missing")
	failMark = color.New(color.FgRed).Sprint("broken")
)

// Run executes the doctor command.
func (c *DoctorCommand) Run(args []string) int {
	var opts DoctorOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	if os.Getenv("RUSTYHOOK_NO_COLOR") != "" {
		color.NoColor = true
	}

	healthy := true
	healthy = c.probeInterpreters(opts.Verbose) && healthy
	healthy = c.checkCache() && healthy

	if !healthy {
		return ExitSystemError
	}
	return ExitOK
}

// probeInterpreters reports each language interpreter found on PATH.
func (c *DoctorCommand) probeInterpreters(verbose bool) bool {
	probes := []struct {
		language string
		names    []string
		flag     string
	}{
		{"python", []string{"python3", "python"}, "--version"},
		{"node", []string{"node"}, "--version"},
		{"ruby", []string{"ruby"}, "--version"},
	}

	for _, probe := range probes {
		found := false
		for _, name := range probe.names {
			path, err := exec.LookPath(name)
			if err != nil {
				continue
			}
			out, err := exec.Command(path, probe.flag).CombinedOutput() // #nosec G204 -- probing a PATH executable
			if err != nil {
				continue
			}
			version := strings.TrimSpace(string(out))
			if verbose {
				fmt.Printf("%-8s %s (%s, %s)\n", probe.language, okMark, path, version)
			} else {
				fmt.Printf("%-8s %s (%s)\n", probe.language, okMark, version)
			}
			found = true
			break
		}
		if !found {
			if probe.language == "ruby" {
				fmt.Printf("%-8s %s (required for ruby hooks; no prebuilt runtime is downloaded)\n", probe.language, warnMark)
			} else {
				fmt.Printf("%-8s %s (will download a prebuilt runtime on demand)\n", probe.language, warnMark)
			}
		}
	}

	return true
}

// checkCache verifies the cache root is writable and the index opens.
func (c *DoctorCommand) checkCache() bool {
	repoRoot := "."
	if repo, err := git.NewRepository(""); err == nil {
		repoRoot = repo.Root
	}

	root, err := cache.ResolveRoot(repoRoot)
	if err != nil {
		fmt.Printf("%-8s %s (%v)\n", "cache", failMark, err)
		return false
	}

	probe := filepath.Join(root.Path(), ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		fmt.Printf("%-8s %s (not writable: %v)\n", "cache", failMark, err)
		return false
	}
	_ = os.Remove(probe)

	index, err := cache.OpenIndex(root)
	if err != nil {
		fmt.Printf("%-8s %s (index: %v)\n", "cache", failMark, err)
		return false
	}
	_ = index.Close()

	fmt.Printf("%-8s %s (%s)\n", "cache", okMark, root.Path())
	return true
}

// DoctorCommandFactory creates a new doctor command instance.
func DoctorCommandFactory() (cli.Command, error) {
	return &DoctorCommand{}, nil
}
