package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/unitex/internal/ui/pretty"
	"github.com/yaklabco/unitex/pkg/runner"
)

// TextReporter lists changed and failed files, one per line. In a dry run it
// prints the diff of every changed file instead.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	diff   *DiffReporter
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	bw := bufio.NewWriterSize(opts.Writer, bufWriterSize)

	diffOpts := opts
	diffOpts.Writer = bw
	diffOpts.ShowSummary = false

	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		diff:   newDiffReporter(diffOpts, colorEnabled),
		bw:     bw,
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	if r.opts.DryRun {
		if _, err := r.diff.Report(ctx, result); err != nil {
			return 0, err
		}
	} else {
		r.reportFiles(result)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.DryRun))
	}

	return countChanged(result), nil
}

func (r *TextReporter) reportFiles(result *runner.Result) {
	for _, file := range result.Files {
		path := displayPath(file.Path, r.opts.WorkingDir)

		switch {
		case file.Error != nil:
			fmt.Fprint(r.bw, r.styles.FormatFileError(path, file.Error))
		case file.Result == nil:
		case file.Result.Modified || file.Result.Skipped || r.opts.Verbose:
			fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, file.Result.Summary()))
		}
	}
}
