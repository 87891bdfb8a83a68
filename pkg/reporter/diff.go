package reporter

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yaklabco/unitex/internal/ui/pretty"
	"github.com/yaklabco/unitex/pkg/diff"
	"github.com/yaklabco/unitex/pkg/runner"
)

// DiffReporter formats dry-run results as unified diffs in git style.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return newDiffReporter(opts, pretty.IsColorEnabled(opts.Color, opts.Writer))
}

func newDiffReporter(opts Options, colorEnabled bool) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	var filesWithDiffs, changedLines int

	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.out, "%s: %s\n",
				r.styles.FilePath.Render(displayPath(file.Path, r.opts.WorkingDir)),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}

		if file.Result == nil || file.Result.Diff == nil {
			continue
		}

		filesWithDiffs++
		changedLines += file.Result.Diff.Changed
		r.writeDiff(file.Result.Diff)
	}

	if filesWithDiffs > 0 && r.opts.ShowSummary {
		r.writeSummary(filesWithDiffs, changedLines)
	}

	return filesWithDiffs, nil
}

// writeDiff outputs a single file's diff with formatting.
func (r *DiffReporter) writeDiff(d *diff.Diff) {
	path := displayPath(d.Path, r.opts.WorkingDir)

	header := fmt.Sprintf("diff --git a/%s b/%s", path, path)
	fmt.Fprintln(r.out, r.styles.DiffHeader.Render(header))
	fmt.Fprintln(r.out, r.styles.DiffRemove.Render("--- a/"+path))
	fmt.Fprintln(r.out, r.styles.DiffAdd.Render("+++ b/"+path))

	for _, h := range d.Hunks {
		fmt.Fprintln(r.out, r.styles.DiffHunk.Render(
			fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.Start, h.Count, h.Start, h.Count)))
		for _, l := range h.Lines {
			r.writeDiffLine(l)
		}
	}

	fmt.Fprintln(r.out)
}

// writeDiffLine formats a single diff line with color.
func (r *DiffReporter) writeDiffLine(l diff.Line) {
	var styled string

	switch l.Kind {
	case diff.Add:
		styled = r.styles.DiffAdd.Render("+" + l.Text)
	case diff.Remove:
		styled = r.styles.DiffRemove.Render("-" + l.Text)
	default:
		styled = r.styles.DiffContext.Render(" " + l.Text)
	}

	fmt.Fprintln(r.out, styled)
}

// writeSummary writes a summary line at the end.
func (r *DiffReporter) writeSummary(files, lines int) {
	fileWord := "files"
	if files == 1 {
		fileWord = "file"
	}
	lineWord := "lines"
	if lines == 1 {
		lineWord = "line"
	}

	fmt.Fprintf(r.out, "%d %s changed, %s\n", files, fileWord,
		r.styles.DiffAdd.Render(fmt.Sprintf("%d %s rewritten", lines, lineWord)))
}

// displayPath makes path relative to workDir when that does not climb more
// than two levels.
func displayPath(path, workDir string) string {
	if workDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return path
	}
	if strings.Count(rel, "..") > 2 {
		return path
	}
	return filepath.ToSlash(rel)
}
