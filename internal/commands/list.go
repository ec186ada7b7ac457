package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/cache"
	"github.com/rustyhook/rustyhook/pkg/config"
	"github.com/rustyhook/rustyhook/pkg/git"
	"github.com/rustyhook/rustyhook/pkg/toolchain"
)

// ListCommand enumerates loaded hooks and the state of their cached envs.
type ListCommand struct{}

// ListOptions holds command-line options for the list command.
type ListOptions struct {
	Config string `short:"c" long:"config" description:"Path to config file"`
	Legacy bool   `long:"legacy" description:"Read the legacy dialect instead of the native one"`
	Help   bool   `short:"h" long:"help"   description:"Show this help message"`
}

// Help returns the help text for the list command.
func (c *ListCommand) Help() string {
	var opts ListOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "list",
		Description: "List configured hooks with the cache state of their environments.",
		Examples: []Example{
			{Command: "rustyhook list", Description: "List hooks from the native config"},
			{Command: "rustyhook list --legacy", Description: "List hooks from .pre-commit-config.yaml"},
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the list command.
func (c *ListCommand) Synopsis() string {
	return "List hooks and their environment status"
}

// Run executes the list command.
func (c *ListCommand) Run(args []string) int {
	var opts ListOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	var cfg *config.Config
	var err error
	if opts.Legacy {
		cfg, err = loadLegacyNormalized(config.ResolvePath(opts.Config, config.LegacyConfigName))
	} else {
		cfg, err = config.Load(config.ResolvePath(opts.Config, config.NativeConfigName))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	repoRoot := "."
	if repo, repoErr := git.NewRepository(""); repoErr == nil {
		repoRoot = repo.Root
	}

	root, err := cache.ResolveRoot(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	prov := toolchain.NewProvisioner(root, nil)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLANGUAGE\tTOOL\tSTAGES\tENV")
	for i := range cfg.Hooks {
		hook := &cfg.Hooks[i]
		status := string(prov.Status(toolchain.SpecForHook(hook)))
		if hook.Unresolved != "" {
			status = "unresolved"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			hook.ID, hook.Language, toolchain.ToolName(hook.Entry),
			strings.Join(hook.Stages, ","), status)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	return ExitOK
}

// ListCommandFactory creates a new list command instance.
func ListCommandFactory() (cli.Command, error) {
	return &ListCommand{}, nil
}
