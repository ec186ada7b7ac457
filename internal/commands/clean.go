package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/cache"
	"github.com/rustyhook/rustyhook/pkg/git"
)

// cleanLockTimeout bounds how long clean waits for other processes.
const cleanLockTimeout = 30 * time.Second

// CleanCommand purges the cache root or one language subtree.
type CleanCommand struct{}

// CleanOptions holds command-line options for the clean command.
type CleanOptions struct {
	Language string `short:"l" long:"language" description:"Purge only this language's environments and runtimes"`
	Verbose  bool   `short:"v" long:"verbose"  description:"Show what is being removed"`
	Help     bool   `short:"h" long:"help"     description:"Show this help message"`
}

// Help returns the help text for the clean command.
func (c *CleanCommand) Help() string {
	var opts CleanOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "clean",
		Description: "Purge cached environments, runtimes, and downloaded archives.",
		Examples: []Example{
			{Command: "rustyhook clean", Description: "Remove everything under the cache root"},
			{Command: "rustyhook clean --language python", Description: "Remove only python state"},
		},
		Notes: []string{
			"Environments are rebuilt on the next run; nothing outside the cache root is touched.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the clean command.
func (c *CleanCommand) Synopsis() string {
	return "Purge the cache root or a language subtree"
}

// Run executes the clean command.
func (c *CleanCommand) Run(args []string) int {
	var opts CleanOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	repoRoot := "."
	if repo, err := git.NewRepository(""); err == nil {
		repoRoot = repo.Root
	}

	root, err := cache.ResolveRoot(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	if opts.Verbose {
		fmt.Printf("Cleaning cache directory: %s\n", root.Path())
	}

	if opts.Language != "" {
		if err := root.PurgeLanguage(opts.Language, cleanLockTimeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitSystemError
		}
		if err := c.dropIndexLanguage(root, opts.Language); err != nil && opts.Verbose {
			fmt.Printf("Warning: %v\n", err)
		}
		fmt.Printf("Cleaned %s environments under %s.\n", opts.Language, root.Path())
		return ExitOK
	}

	if err := root.Purge(cleanLockTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}
	fmt.Printf("Cleaned %s.\n", root.Path())
	return ExitOK
}

// dropIndexLanguage removes the purged language's rows from the index.
func (c *CleanCommand) dropIndexLanguage(root *cache.Root, language string) error {
	index, err := cache.OpenIndex(root)
	if err != nil {
		return err
	}
	defer func() { _ = index.Close() }()

	return index.DeleteLanguage(context.Background(), language)
}

// CleanCommandFactory creates a new clean command instance.
func CleanCommandFactory() (cli.Command, error) {
	return &CleanCommand{}, nil
}
