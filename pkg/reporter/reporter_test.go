package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/unitex/pkg/convert"
	"github.com/yaklabco/unitex/pkg/diff"
	"github.com/yaklabco/unitex/pkg/reporter"
	"github.com/yaklabco/unitex/pkg/runner"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "diff", input: "diff", want: reporter.FormatDiff},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}

	assert.False(t, reporter.Format("").IsValid())
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []reporter.Format{"", reporter.FormatText, reporter.FormatTable, reporter.FormatJSON, reporter.FormatDiff} {
		rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: format})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, rep)
	}

	_, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: "xml"})
	require.Error(t, err)
}

// sampleResult has one converted, one unchanged and one failed file.
func sampleResult(dryRun bool) *runner.Result {
	changed := &convert.FileResult{
		Path:     "paper.tex",
		Modified: true,
		Stats:    convert.Stats{Lines: 2, Concealed: 2},
	}
	if dryRun {
		changed.Diff = diff.Lines("paper.tex", []byte("$\\alpha$\nplain\n"), []byte("$α$\nplain\n"))
	} else {
		changed.Written = true
		changed.BackupCreated = true
	}

	result := &runner.Result{
		Files: []runner.FileOutcome{
			{Path: "paper.tex", Result: changed},
			{Path: "notes.tex", Result: &convert.FileResult{Path: "notes.tex", Stats: convert.Stats{Lines: 1}}},
			{Path: "locked.tex", Error: errors.New("permission denied")},
		},
		Stats: runner.Stats{
			FilesDiscovered: 3,
			FilesProcessed:  2,
			FilesModified:   1,
			FilesErrored:    1,
			Conversion:      convert.Stats{Lines: 3, Concealed: 2},
		},
	}
	if !dryRun {
		result.Stats.FilesWritten = 1
		result.Stats.BackupsCreated = 1
	}
	return result
}

func report(t *testing.T, opts reporter.Options, result *runner.Result) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	opts.Writer = &buf
	opts.Color = "never"

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	n, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	return buf.String(), n
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatText, ShowSummary: true}, sampleResult(false))

	assert.Equal(t, 1, n)
	assert.Equal(t,
		"paper.tex (converted (backup created))\n"+
			"  locked.tex  error  permission denied\n"+
			"1 of 3 files converted, 2 glyphs, 1 backup, 1 failed\n",
		out)
}

func TestTextReporterVerbose(t *testing.T) {
	t.Parallel()

	out, _ := report(t, reporter.Options{Format: reporter.FormatText, Verbose: true}, sampleResult(false))
	assert.Contains(t, out, "notes.tex (unchanged)\n")
}

func TestTextReporterDryRun(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatText, DryRun: true, ShowSummary: true}, sampleResult(true))

	assert.Equal(t, 1, n)
	assert.Contains(t, out, "diff --git a/paper.tex b/paper.tex\n--- a/paper.tex\n+++ b/paper.tex\n@@ -1,2 +1,2 @@\n-$\\alpha$\n+$α$\n plain\n")
	assert.Contains(t, out, "locked.tex: error: permission denied\n")
	assert.True(t, strings.HasSuffix(out, "1 of 3 files would change, 2 glyphs, 1 failed\n"), out)
	assert.NotContains(t, out, "rewritten")
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatDiff, ShowSummary: true}, sampleResult(true))

	assert.Equal(t, 1, n)
	assert.True(t, strings.HasPrefix(out, "diff --git a/paper.tex b/paper.tex\n"))
	assert.True(t, strings.HasSuffix(out, "1 file changed, 1 line rewritten\n"), out)

	out, n = report(t, reporter.Options{Format: reporter.FormatDiff}, nil)
	assert.Empty(t, out)
	assert.Zero(t, n)
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatTable, ShowSummary: true, DryRun: true}, sampleResult(true))

	assert.Equal(t, 1, n)
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "paper.tex")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, " 2 files checked | 1 changed | 1 failed\n")
	assert.Contains(t, out, "Run without --dry-run to write the changes")

	out, _ = report(t, reporter.Options{Format: reporter.FormatTable, ShowSummary: true}, &runner.Result{})
	assert.Equal(t, "No files to convert.\n", out)
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatJSON}, sampleResult(false))
	assert.Equal(t, 1, n)

	var got reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Files, 3)
	assert.Equal(t, reporter.JSONFileResult{
		Path: "paper.tex", Status: "changed", Lines: 2, Concealed: 2, Backup: true,
	}, got.Files[0])
	assert.Equal(t, "unchanged", got.Files[1].Status)
	assert.Equal(t, "failed", got.Files[2].Status)
	assert.Equal(t, "permission denied", got.Files[2].Error)
	assert.Equal(t, reporter.JSONSummary{
		FilesChecked: 2, FilesChanged: 1, FilesWritten: 1, FilesErrored: 1,
		BackupsCreated: 1, Lines: 3, Concealed: 2,
	}, got.Summary)
}

func TestJSONReporterDryRunCompact(t *testing.T) {
	t.Parallel()

	out, _ := report(t, reporter.Options{Format: reporter.FormatJSON, DryRun: true, Compact: true}, sampleResult(true))

	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, `"dryRun":true`)
	assert.Contains(t, out, `"diff":"--- a/paper.tex\n+++ b/paper.tex\n@@ -1,2 +1,2 @@\n-$\\alpha$\n+$α$\n plain\n"`)
}

func TestTerminalWidth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, reporter.TerminalWidth(&bytes.Buffer{}))
}
