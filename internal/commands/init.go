package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"
	"gopkg.in/yaml.v3"

	"github.com/rustyhook/rustyhook/pkg/config"
)

// InitCommand scaffolds an empty native config.
type InitCommand struct{}

// InitOptions holds command-line options for the init command.
type InitOptions struct {
	Force bool `short:"f" long:"force" description:"Overwrite an existing config"`
	Help  bool `short:"h" long:"help"  description:"Show this help message"`
}

// Help returns the help text for the init command.
func (c *InitCommand) Help() string {
	var opts InitOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "init",
		Description: "Create a starter .rustyhook/config.yaml in the current repository.",
		Examples: []Example{
			{Command: "rustyhook init", Description: "Scaffold the default config"},
			{Command: "rustyhook init --force", Description: "Replace an existing config"},
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the init command.
func (c *InitCommand) Synopsis() string {
	return "Scaffold an empty native config"
}

// Run executes the init command.
func (c *InitCommand) Run(args []string) int {
	var opts InitOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	path := config.NativeConfigName
	if _, err := os.Stat(path); err == nil && !opts.Force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		return ExitUserError
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", path, err)
		return ExitSystemError
	}

	fmt.Printf("Wrote %s.\n", path)
	return ExitOK
}

// InitCommandFactory creates a new init command instance.
func InitCommandFactory() (cli.Command, error) {
	return &InitCommand{}, nil
}
