// Package reporter renders per-hook status lines and the final run summary.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rustyhook/rustyhook/pkg/engine"
)

// lineWidth matches the classic hook-runner output width.
const lineWidth = 79

// EnvNoColor disables ANSI styling when set.
const EnvNoColor = "RUSTYHOOK_NO_COLOR"

// Reporter writes run output to one stream.
type Reporter struct {
	out     io.Writer
	verbose bool

	passed  lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	errored lipgloss.Style
	dim     lipgloss.Style
}

// New creates a reporter on the given stream.
func New(out io.Writer, verbose bool) *Reporter {
	r := &Reporter{out: out, verbose: verbose}

	if os.Getenv(EnvNoColor) != "" {
		plain := lipgloss.NewStyle()
		r.passed, r.failed, r.skipped, r.errored, r.dim = plain, plain, plain, plain, plain
		return r
	}

	r.passed = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0"))
	r.failed = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15"))
	r.skipped = lipgloss.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0"))
	r.errored = lipgloss.NewStyle().Background(lipgloss.Color("5")).Foreground(lipgloss.Color("15"))
	r.dim = lipgloss.NewStyle().Faint(true)
	return r
}

// PrintReport writes one hook's dotted status line, plus captured output for
// failures and verbose runs.
func (r *Reporter) PrintReport(report engine.Report) {
	label, style := r.statusLabel(report.Status)

	dots := lineWidth - len(report.HookName) - len(label)
	if dots < 1 {
		dots = 1
	}
	fmt.Fprintf(r.out, "%s%s%s\n", report.HookName, strings.Repeat(".", dots), style.Render(label))

	if report.Note != "" && (report.Status == engine.StatusErrored || r.verbose) {
		fmt.Fprintf(r.out, "%s\n", r.dim.Render("- "+report.Note))
	}

	showOutput := report.Status == engine.StatusFailed || report.Status == engine.StatusErrored || r.verbose
	if !showOutput {
		return
	}
	if out := strings.TrimRight(report.Stdout, "\n"); out != "" {
		fmt.Fprintf(r.out, "%s\n", out)
	}
	if errOut := strings.TrimRight(report.Stderr, "\n"); errOut != "" {
		fmt.Fprintf(r.out, "%s\n", errOut)
	}
	if r.verbose && report.Duration > 0 {
		fmt.Fprintf(r.out, "%s\n", r.dim.Render(fmt.Sprintf("- duration: %s", report.Duration.Round(10*time.Millisecond))))
	}
}

// PrintSummary writes the reports in order followed by the aggregate line.
func (r *Reporter) PrintSummary(summary *engine.Summary) {
	for _, report := range summary.Reports {
		r.PrintReport(report)
	}

	passed, failed, skipped, errored := summary.Counts()
	fmt.Fprintf(r.out, "\n%d passed, %d failed, %d skipped, %d errored in %s\n",
		passed, failed, skipped, errored, summary.Duration.Round(10*time.Millisecond))
}

func (r *Reporter) statusLabel(status engine.Status) (string, lipgloss.Style) {
	switch status {
	case engine.StatusPassed:
		return "Passed", r.passed
	case engine.StatusFailed:
		return "Failed", r.failed
	case engine.StatusSkipped:
		return "Skipped", r.skipped
	case engine.StatusErrored:
		return "Errored", r.errored
	default:
		return string(status), r.dim
	}
}
