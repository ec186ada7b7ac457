package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/pkg/config"
	"github.com/rustyhook/rustyhook/pkg/git"
)

// hookStageScripts maps hook stages onto the Git hook filenames that
// trigger them.
var hookStageScripts = map[string]string{
	config.StageCommit:      "pre-commit",
	config.StagePush:        "pre-push",
	config.StageMergeCommit: "pre-merge-commit",
}

// legacyBackupSuffix marks a pre-existing hook script saved aside.
const legacyBackupSuffix = ".legacy"

// InstallCommand writes Git hook scripts that invoke rustyhook.
type InstallCommand struct{}

// InstallOptions holds command-line options for the install command.
type InstallOptions struct {
	HookTypes []string `short:"t" long:"hook-type" description:"Stage to install (repeatable)" default:"commit"`
	Overwrite bool     `short:"f" long:"overwrite" description:"Replace existing hook scripts without keeping a backup"`
	Help      bool     `short:"h" long:"help"      description:"Show this help message"`
}

// Help returns the help text for the install command.
func (c *InstallCommand) Help() string {
	var opts InstallOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "install",
		Description: "Install Git hook scripts under .git/hooks that run rustyhook for a stage.",
		Examples: []Example{
			{Command: "rustyhook install", Description: "Install the pre-commit hook"},
			{Command: "rustyhook install -t commit -t push", Description: "Install for both stages"},
		},
		Notes: []string{
			"An existing hook script is kept as <name>.legacy and restored by uninstall.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the install command.
func (c *InstallCommand) Synopsis() string {
	return "Install Git hook scripts"
}

// Run executes the install command.
func (c *InstallCommand) Run(args []string) int {
	var opts InstallOptions
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

		if err := c.installScript(repo, stage, scriptName, opts.Overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitSystemError
		}
		fmt.Printf("Installed %s hook at .git/hooks/%s.\n", stage, scriptName)
	}

	return ExitOK
}

// installScript writes one stage's hook script, backing up anything present.
func (c *InstallCommand) installScript(repo *git.Repository, stage, scriptName string, overwrite bool) error {
	hooksDir := repo.HooksDir()
	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	scriptPath := filepath.Join(hooksDir, scriptName)
	if _, err := os.Stat(scriptPath); err == nil && !overwrite {
		backup := scriptPath + legacyBackupSuffix
		if err := os.Rename(scriptPath, backup); err != nil {
			return fmt.Errorf("failed to back up existing hook: %w", err)
		}
		fmt.Printf("Existing %s hook saved as %s%s.\n", scriptName, scriptName, legacyBackupSuffix)
	}

	script := fmt.Sprintf(`#!/bin/sh
# Installed by rustyhook. Remove with: rustyhook uninstall -t %s
exec rustyhook run --stage %s "$@"
`, stage, stage)

	if err := os.WriteFile(scriptPath, []byte(script), 0o700); err != nil { // #nosec G306 -- hook scripts must be executable
		return fmt.Errorf("failed to write hook script: %w", err)
	}
	return nil
}

// InstallCommandFactory creates a new install command instance.
func InstallCommandFactory() (cli.Command, error) {
	return &InstallCommand{}, nil
}
