// Package reporter writes the outcome of an in-place run.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/unitex/pkg/runner"
)

// Reporter formats and writes run results.
type Reporter interface {
	// Report writes formatted output for the given result. It returns the
	// number of files changed, or that would change in a dry run.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// countChanged returns the number of files whose content changed.
func countChanged(result *runner.Result) int {
	if result == nil {
		return 0
	}
	return result.Stats.FilesModified
}
