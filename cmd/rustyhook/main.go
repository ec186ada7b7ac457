// Package main provides the rustyhook command-line tool: a language-agnostic
// Git-hook runner with hermetic per-tool environments.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/rustyhook/rustyhook/internal/commands"
)

// Version information set by the release pipeline.
var (
	version = "dev"
	commit  = "none"    //nolint:unused // set at build time
	date    = "unknown" //nolint:unused // set at build time
)

func main() {
	c := cli.NewCLI("rustyhook", version)
	c.Args = os.Args[1:]
	c.HelpFunc = customHelpFunc
	c.Commands = map[string]cli.CommandFactory{
		"run":       commands.RunCommandFactory,
		"compat":    commands.CompatCommandFactory,
		"convert":   commands.ConvertCommandFactory,
		"init":      commands.InitCommandFactory,
		"list":      commands.ListCommandFactory,
		"doctor":    commands.DoctorCommandFactory,
		"clean":     commands.CleanCommandFactory,
		"install":   commands.InstallCommandFactory,
		"uninstall": commands.UninstallCommandFactory,
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

// customHelpFunc renders the top-level help with commands in alphabetical
// order.
func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	commandNames := make([]string, 0, len(cmdFactories))
	for name := range cmdFactories {
		commandNames = append(commandNames, name)
	}
	sort.Strings(commandNames)

	usageLine := "usage: rustyhook [-h] [--version]\n"
	usageLine += "                 {" + strings.Join(commandNames, ",") + "}\n                 ...\n"

	return usageLine + `
A Git-hook orchestrator with hermetic per-tool environments.

positional arguments:
  {` + strings.Join(commandNames, ",") + `}
    clean               Purge cached environments, runtimes, and archives
    compat              Run hooks from a legacy pre-commit config
    convert             Convert a legacy config to the native dialect
    doctor              Probe interpreters and cache health
    init                Scaffold an empty native config
    install             Install Git hook scripts
    list                List hooks and their environment status
    run                 Run hooks from the native config
    uninstall           Remove installed Git hook scripts

optional arguments:
  -h, --help            show this help message and exit
  --version             show program's version number and exit
`
}
