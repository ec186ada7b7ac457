package commands

import (
	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/config"
)

// CompatCommand executes hooks from a legacy pre-commit config.
type CompatCommand struct{}

// Help returns the help text for the compat command.
func (c *CompatCommand) Help() string {
	var opts runOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "compat",
		Description: "Run hooks from a legacy .pre-commit-config.yaml without converting it.",
		Examples: []Example{
			{Command: "rustyhook compat", Description: "Run the legacy config's commit-stage hooks"},
			{Command: "rustyhook compat --all-files --verbose", Description: "Full run with output"},
		},
		Notes: []string{
			"Hooks from repositories the registry does not know are reported as errored.",
			"Use convert to migrate the config to the native dialect.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the compat command.
func (c *CompatCommand) Synopsis() string {
	return "Run hooks from a legacy pre-commit config"
}

// Run executes the compat command.
func (c *CompatCommand) Run(args []string) int {
	var opts runOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	return executeRun(&opts, loadLegacyNormalized, config.LegacyConfigName)
}

// loadLegacyNormalized loads the legacy dialect and normalizes it to the
// internal hook model.
func loadLegacyNormalized(path string) (*config.Config, error) {
	lc, err := config.LoadLegacy(path)
	if err != nil {
		return nil, err
	}
	return lc.Normalize()
}

// CompatCommandFactory creates a new compat command instance.
func CompatCommandFactory() (cli.Command, error) {
	return &CompatCommand{}, nil
}
