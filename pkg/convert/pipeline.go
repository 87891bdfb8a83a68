package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/unitex/pkg/diff"
	"github.com/yaklabco/unitex/pkg/fsutil"
)

// ErrWriteFailure indicates the converted content could not be written back.
var ErrWriteFailure = errors.New("write failure")

// FileResult is the outcome of converting one file in place.
type FileResult struct {
	// Path is the file path that was processed.
	Path string

	// Stats summarizes the conversion.
	Stats Stats

	// Modified is true if conversion changed the content.
	Modified bool

	// Diff is the unified diff in dry-run mode, nil otherwise.
	Diff *diff.Diff

	// Skipped is true if the file was left alone, see SkipReason.
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// BackupCreated is true if a backup was written for this file.
	BackupCreated bool

	// Written is true if the file was replaced on disk.
	Written bool
}

// Summary returns a short description of the outcome.
func (r *FileResult) Summary() string {
	switch {
	case r.Skipped:
		return "skipped: " + r.SkipReason
	case r.Written && r.BackupCreated:
		return "converted (backup created)"
	case r.Written:
		return "converted"
	case r.Modified:
		return "changes pending"
	default:
		return "unchanged"
	}
}

// PipelineOptions controls in-place conversion.
type PipelineOptions struct {
	// DryRun computes diffs without writing files.
	DryRun bool

	// Backup configures backups taken before a file is replaced.
	Backup fsutil.BackupConfig
}

// DefaultPipelineOptions returns options that write files and keep backups.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{Backup: fsutil.DefaultBackupConfig()}
}

// Pipeline converts files in place.
type Pipeline struct {
	Converter *Converter
}

// NewPipeline returns a Pipeline using conv.
func NewPipeline(conv *Converter) *Pipeline {
	return &Pipeline{Converter: conv}
}

// ProcessFile converts one file in place:
//  1. Read the file and remember its state.
//  2. Convert the content in memory.
//  3. In dry-run mode, return the diff.
//  4. Skip the file if it changed on disk in the meantime.
//  5. Create a backup if enabled.
//  6. Replace the file atomically, keeping its permissions.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts PipelineOptions) (*FileResult, error) {
	result := &FileResult{Path: path}

	original, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	converted, stats, err := p.Converter.ConvertBytes(ctx, original)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	result.Stats = stats

	if bytes.Equal(original, converted) {
		return result, nil
	}
	result.Modified = true

	if opts.DryRun {
		result.Diff = diff.Lines(path, original, converted)
		return result, nil
	}

	changed, err := fsutil.Changed(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if changed {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	if opts.Backup.Active() {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	if err := fsutil.WriteAtomic(ctx, path, converted, info.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	return result, nil
}
