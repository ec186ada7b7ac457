package commands

import (
	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/config"
)

// RunCommand executes hooks from the native config for a stage.
type RunCommand struct{}

// Help returns the help text for the run command.
func (c *RunCommand) Help() string {
	var opts runOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "run",
		Description: "Run hooks from the native config against the staged change set.",
		Examples: []Example{
			{Command: "rustyhook run", Description: "Run commit-stage hooks on staged files"},
			{Command: "rustyhook run --all-files", Description: "Run against every tracked file"},
			{Command: "rustyhook run --hook ruff", Description: "Run a single hook"},
			{Command: "rustyhook run --stage push", Description: "Run push-stage hooks"},
		},
		Notes: []string{
			"The config is read from .rustyhook/config.yaml unless --config or RUSTYHOOK_CONFIG is set.",
			"Exit code 1 means at least one hook failed; 2 a config error; 3 a system error.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the run command.
func (c *RunCommand) Synopsis() string {
	return "Run hooks from the native config"
}

// Run executes the run command.
func (c *RunCommand) Run(args []string) int {
	var opts runOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	return executeRun(&opts, config.Load, config.NativeConfigName)
}

// RunCommandFactory creates a new run command instance.
func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{}, nil
}
