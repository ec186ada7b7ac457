package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/git"
)

// UninstallCommand removes installed Git hook scripts.
type UninstallCommand struct{}

// UninstallOptions holds command-line options for the uninstall command.
type UninstallOptions struct {
	HookTypes []string `short:"t" long:"hook-type" description:"Stage to uninstall (repeatable)" default:"commit"`
	Help      bool     `short:"h" long:"help"      description:"Show this help message"`
}

// Help returns the help text for the uninstall command.
func (c *UninstallCommand) Help() string {
	var opts UninstallOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "uninstall",
		Description: "Remove rustyhook's Git hook scripts, restoring any saved backups.",
		Examples: []Example{
			{Command: "rustyhook uninstall", Description: "Remove the pre-commit hook"},
			{Command: "rustyhook uninstall -t push", Description: "Remove the pre-push hook"},
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the uninstall command.
func (c *UninstallCommand) Synopsis() string {
	return "Remove installed Git hook scripts"
}

// Run executes the uninstall command.
func (c *UninstallCommand) Run(args []string) int {
	var opts UninstallOptions
	if handled, code := parseArgs(&opts, args); handled {
		return code
	}

	repo, err := git.NewRepository("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	for _, stage := range opts.HookTypes {
		scriptName, ok := hookStageScripts[stage]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown hook stage %q\n", stage)
			return ExitUserError
		}

		if err := c.removeScript(repo, scriptName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitSystemError
		}
	}

	return ExitOK
}

// removeScript deletes one hook script when rustyhook owns it and restores a
// .legacy backup when one exists.
func (c *UninstallCommand) removeScript(repo *git.Repository, scriptName string) error {
	scriptPath := filepath.Join(repo.HooksDir(), scriptName)

	content, err := os.ReadFile(scriptPath) // #nosec G304 -- path under .git/hooks
	if os.IsNotExist(err) {
		fmt.Printf("No %s hook installed.\n", scriptName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read hook script: %w", err)
	}

	if !strings.Contains(string(content), "Installed by rustyhook") {
		fmt.Printf("Skipping %s: not installed by rustyhook.\n", scriptName)
		return nil
	}

	if err := os.Remove(scriptPath); err != nil {
		return fmt.Errorf("failed to remove hook script: %w", err)
	}
	fmt.Printf("Uninstalled %s hook.\n", scriptName)

	backup := scriptPath + legacyBackupSuffix
	if _, err := os.Stat(backup); err == nil {
		if err := os.Rename(backup, scriptPath); err != nil {
			return fmt.Errorf("failed to restore backup hook: %w", err)
		}
		fmt.Printf("Restored previous %s hook from backup.\n", scriptName)
	}

	return nil
}

// UninstallCommandFactory creates a new uninstall command instance.
func UninstallCommandFactory() (cli.Command, error) {
	return &UninstallCommand{}, nil
}
