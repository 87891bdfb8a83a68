// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field names for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldLine       = "line"
	FieldWorkingDir = "working_dir"
	FieldModified   = "modified"
	FieldSkipReason = "skip_reason"

	// Configuration fields.
	FieldConfig  = "config"
	FieldMode    = "mode"
	FieldInPlace = "in_place"
	FieldDryRun  = "dry_run"
	FieldJobs    = "jobs"

	// Rule fields.
	FieldRules  = "rules"
	FieldSource = "source"
	FieldGlyph  = "glyph"

	// Statistics fields.
	FieldLines           = "lines"
	FieldRawLines        = "raw_lines"
	FieldRestored        = "restored"
	FieldConcealed       = "concealed"
	FieldFilesDiscovered = "files_discovered"
	FieldFilesModified   = "files_modified"
	FieldFilesSkipped    = "files_skipped"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
