// Package commands implements the rustyhook subcommands as thin shells over
// the config, toolchain, and engine packages.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/rustyhook/rustyhook/internal/log"
	"github.com/rustyhook/rustyhook/pkg/cache"
	"github.com/rustyhook/rustyhook/pkg/config"
	"github.com/rustyhook/rustyhook/pkg/engine"
	"github.com/rustyhook/rustyhook/pkg/git"
	"github.com/rustyhook/rustyhook/pkg/matching"
	"github.com/rustyhook/rustyhook/pkg/reporter"
	"github.com/rustyhook/rustyhook/pkg/toolchain"
)

// Exit codes shared by every subcommand.
const (
	ExitOK          = 0
	ExitHookFailed  = 1
	ExitConfigError = 2
	ExitSystemError = 3
	ExitUserError   = 4
)

// OptionsUsage is the generic usage suffix for option-only commands.
const OptionsUsage = "[OPTIONS]"

// parseArgs parses args into opts, returning (handled, exitCode) when parsing
// already settled the command (help requested or flags invalid).
func parseArgs(opts any, args []string) (bool, int) {
	parser := flags.NewParser(opts, flags.Default)
	parser.Usage = OptionsUsage

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return true, ExitOK
		}
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		return true, ExitUserError
	}
	return false, 0
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runOptions are the flags shared by run and compat.
type runOptions struct {
	Config   string `short:"c" long:"config"    description:"Path to config file"`
	HookID   string `long:"hook"      description:"Restrict the run to one hook id"`
	AllFiles bool   `short:"a" long:"all-files" description:"Run against every tracked file"`
	Files    string `long:"files"     description:"Comma-separated list of files to run against"`
	Stage    string `long:"stage"     description:"Hook stage to run" default:"commit"`
	Jobs     int    `short:"j" long:"jobs"      description:"Maximum concurrent hooks (0 = config parallelism, or CPU count)"`
	NoCache  bool   `long:"no-cache"  description:"Ignore ready environments and re-provision"`
	Verbose  bool   `short:"v" long:"verbose"   description:"Verbose output"`
	Help     bool   `short:"h" long:"help"      description:"Show this help message"`
}

// executeRun is the shared core of run and compat: load, plan, execute,
// report, and map the outcome onto an exit code.
func executeRun(opts *runOptions, loadHooks func(path string) (*config.Config, error), defaultConfig string) int {
	if opts.AllFiles && opts.Files != "" {
		fmt.Fprintln(os.Stderr, "Error: --all-files and --files are mutually exclusive")
		return ExitUserError
	}

	repo, err := git.NewRepository("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	cfg, err := loadHooks(config.ResolvePath(opts.Config, defaultConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	sourceSet, err := sourceFiles(repo, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	root, err := cache.ResolveRoot(repo.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	index, err := cache.OpenIndex(root)
	if err != nil {
		log.Warn("cache index unavailable", "error", err)
		index = nil
	}
	defer func() {
		if index != nil {
			_ = index.Close()
		}
	}()

	prov := toolchain.NewProvisioner(root, index, toolchain.WithNoCache(opts.NoCache))

	parallelism := opts.Jobs
	if parallelism == 0 {
		parallelism = cfg.Parallelism
	}

	eng := engine.New(prov, cfg, engine.Options{
		RepoRoot:    repo.Root,
		Stage:       opts.Stage,
		HookID:      opts.HookID,
		Parallelism: parallelism,
		FailFast:    cfg.FailFast,
	})

	ctx, stop := signalContext()
	defer stop()

	summary, err := eng.Run(ctx, cfg.Hooks, sourceSet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitSystemError
	}

	reporter.New(os.Stdout, opts.Verbose).PrintSummary(summary)

	if summary.Ok() {
		return ExitOK
	}
	return ExitHookFailed
}

// sourceFiles resolves the source file set for the selected mode.
func sourceFiles(repo *git.Repository, opts *runOptions) ([]string, error) {
	mode := matching.ModeChanged
	switch {
	case opts.AllFiles:
		mode = matching.ModeAll
	case opts.Files != "":
		mode = matching.ModeExplicit
	}

	switch mode {
	case matching.ModeAll:
		return repo.AllFiles()
	case matching.ModeExplicit:
		var files []string
		for _, f := range strings.Split(opts.Files, ",") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				files = append(files, trimmed)
			}
		}
		return files, nil
	default:
		return repo.ChangedFiles()
	}
}
