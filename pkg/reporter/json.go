package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/unitex/internal/ui/pretty"
	"github.com/yaklabco/unitex/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	DryRun  bool             `json:"dryRun"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	Lines      int    `json:"lines"`
	RawLines   int    `json:"rawLines,omitempty"`
	Concealed  int    `json:"concealed,omitempty"`
	Restored   int    `json:"restored,omitempty"`
	Backup     bool   `json:"backup,omitempty"`
	Diff       string `json:"diff,omitempty"`
	SkipReason string `json:"skipReason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked   int `json:"filesChecked"`
	FilesChanged   int `json:"filesChanged"`
	FilesWritten   int `json:"filesWritten"`
	FilesSkipped   int `json:"filesSkipped"`
	FilesErrored   int `json:"filesErrored"`
	BackupsCreated int `json:"backupsCreated"`
	Lines          int `json:"lines"`
	Concealed      int `json:"concealed"`
	Restored       int `json:"restored"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	encoder.SetEscapeHTML(false)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesChanged, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		DryRun:  r.opts.DryRun,
		Files:   make([]JSONFileResult, 0),
	}

	if result == nil {
		return output
	}

	for _, file := range result.Files {
		row := JSONFileResult{
			Path:   displayPath(file.Path, r.opts.WorkingDir),
			Status: statusOf(file),
		}

		if file.Error != nil {
			row.Error = file.Error.Error()
		}

		if fr := file.Result; fr != nil {
			row.Lines = fr.Stats.Lines
			row.RawLines = fr.Stats.RawLines
			row.Concealed = fr.Stats.Concealed
			row.Restored = fr.Stats.Restored
			row.Backup = fr.BackupCreated
			row.SkipReason = fr.SkipReason
			row.Diff = fr.Diff.String()
		}

		output.Files = append(output.Files, row)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesChecked:   stats.FilesProcessed,
		FilesChanged:   stats.FilesModified,
		FilesWritten:   stats.FilesWritten,
		FilesSkipped:   stats.FilesSkipped,
		FilesErrored:   stats.FilesErrored,
		BackupsCreated: stats.BackupsCreated,
		Lines:          stats.Conversion.Lines,
		Concealed:      stats.Conversion.Concealed,
		Restored:       stats.Conversion.Restored,
	}

	return output
}

func statusOf(file runner.FileOutcome) string {
	return pretty.OutcomeToTableRow(file).Status
}
