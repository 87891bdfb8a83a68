package runner

import (
	"errors"
	"fmt"

	"github.com/yaklabco/unitex/pkg/convert"
)

// FileOutcome is the result of converting one file.
type FileOutcome struct {
	// Path is the file that was processed.
	Path string

	// Result is nil when Error is set.
	Result *convert.FileResult

	// Error is set if the file could not be converted.
	Error error
}

// Stats aggregates a run.
type Stats struct {
	// FilesDiscovered is the number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files converted without error.
	FilesProcessed int

	// FilesModified is the number of files whose content changed.
	FilesModified int

	// FilesWritten is the number of files replaced on disk.
	FilesWritten int

	// FilesSkipped is the number of files left alone after a concurrent change.
	FilesSkipped int

	// FilesErrored is the number of files that failed.
	FilesErrored int

	// BackupsCreated is the number of backups written.
	BackupsCreated int

	// Conversion sums the per-file conversion statistics.
	Conversion convert.Stats
}

// Result is the outcome of a run, with files in discovery order.
type Result struct {
	Files  []FileOutcome
	Stats  Stats
	Errors []error
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || len(r.Errors) > 0
}

// Err joins every error of the run, or returns nil.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	errs := make([]error, 0, len(r.Errors)+r.Stats.FilesErrored)
	errs = append(errs, r.Errors...)
	for _, f := range r.Files {
		if f.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Error))
		}
	}
	return errors.Join(errs...)
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	fr := outcome.Result
	r.Stats.FilesProcessed++
	r.Stats.Conversion.Add(fr.Stats)
	if fr.Modified {
		r.Stats.FilesModified++
	}
	if fr.Written {
		r.Stats.FilesWritten++
	}
	if fr.Skipped {
		r.Stats.FilesSkipped++
	}
	if fr.BackupCreated {
		r.Stats.BackupsCreated++
	}
}
