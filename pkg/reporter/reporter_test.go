package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyhook/rustyhook/pkg/engine"
)

func plainReporter(t *testing.T, verbose bool) (*Reporter, *bytes.Buffer) {
	t.Helper()
	t.Setenv(EnvNoColor, "1")
	var buf bytes.Buffer
	return New(&buf, verbose), &buf
}

func TestPrintReportPassed(t *testing.T) {
	r, buf := plainReporter(t, false)

	r.PrintReport(engine.Report{HookName: "ruff", Status: engine.StatusPassed})

	line := strings.TrimRight(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(line, "ruff..."))
	assert.True(t, strings.HasSuffix(line, "Passed"))
	assert.Len(t, line, 79)
}

func TestPrintReportFailedShowsOutput(t *testing.T) {
	r, buf := plainReporter(t, false)

	r.PrintReport(engine.Report{
		HookName: "flake8",
		Status:   engine.StatusFailed,
		Stdout:   "a.py:1:1 E501 line too long\n",
		Stderr:   "warning: deprecated flag\n",
	})

	out := buf.String()
	assert.Contains(t, out, "Failed")
	assert.Contains(t, out, "E501 line too long")
	assert.Contains(t, out, "deprecated flag")
}

func TestPrintReportPassedHidesOutputUnlessVerbose(t *testing.T) {
	report := engine.Report{HookName: "ok", Status: engine.StatusPassed, Stdout: "noise\n"}

	r, buf := plainReporter(t, false)
	r.PrintReport(report)
	assert.NotContains(t, buf.String(), "noise")

	rv, bufv := plainReporter(t, true)
	rv.PrintReport(report)
	assert.Contains(t, bufv.String(), "noise")
}

func TestPrintReportErroredShowsNote(t *testing.T) {
	r, buf := plainReporter(t, false)

	r.PrintReport(engine.Report{
		HookName: "mystery",
		Status:   engine.StatusErrored,
		Note:     "hook not in the registry",
	})

	assert.Contains(t, buf.String(), "Errored")
	assert.Contains(t, buf.String(), "hook not in the registry")
}

func TestPrintSummary(t *testing.T) {
	r, buf := plainReporter(t, false)

	summary := &engine.Summary{
		Reports: []engine.Report{
			{HookName: "a", Status: engine.StatusPassed},
			{HookName: "b", Status: engine.StatusFailed},
			{HookName: "c", Status: engine.StatusSkipped},
		},
		Duration: 1234 * time.Millisecond,
	}

	r.PrintSummary(summary)

	out := buf.String()
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped, 0 errored")

	// Lines appear in report order.
	aIdx := strings.Index(out, "a...")
	bIdx := strings.Index(out, "b...")
	cIdx := strings.Index(out, "c...")
	assert.True(t, aIdx < bIdx && bIdx < cIdx)
}
