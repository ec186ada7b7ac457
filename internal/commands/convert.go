package commands

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/config"
)

// ConvertCommand rewrites a legacy config in the native dialect.
type ConvertCommand struct{}

// ConvertOptions holds command-line options for the convert command.
type ConvertOptions struct {
	Config string `short:"c" long:"config" description:"Path to the legacy config file"`
	Output string `short:"o" long:"output" description:"Write the native config here instead of stdout"`
	Help   bool   `short:"h" long:"help"   description:"Show this help message"`
}

// Help returns the help text for the convert command.
func (c *ConvertCommand) Help() string {
	var opts ConvertOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "convert",
		Description: "Read a legacy .pre-commit-config.yaml and emit the equivalent native config.",
		Examples: []Example{
			{Command: "rustyhook convert", Description: "Print the native config to stdout"},
			{Command: "rustyhook convert -o .rustyhook/config.yaml", Description: "Write it in place"},
		},
		Notes: []string{
			"Hooks from unknown repositories are emitted with language: system, a placeholder entry, and a warning comment.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the convert command.
func (c *ConvertCommand) Synopsis() string {
	return "Convert a legacy config to the native dialect"
}

// Run executes the convert command.
func (c *ConvertCommand) Run(args []string) int {
	var opts ConvertOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	lc, err := config.LoadLegacy(config.ResolvePath(opts.Config, config.LegacyConfigName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	converted, err := config.ConvertLegacy(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	if opts.Output == "" {
		fmt.Print(converted)
		return ExitOK
	}

	if err := os.WriteFile(opts.Output, []byte(converted), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", opts.Output, err)
		return ExitSystemError
	}
	fmt.Printf("Wrote %s.\n", opts.Output)
	return ExitOK
}

// ConvertCommandFactory creates a new convert command instance.
func ConvertCommandFactory() (cli.Command, error) {
	return &ConvertCommand{}, nil
}
