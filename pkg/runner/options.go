// Package runner converts many files: in place on a worker pool, or streamed
// one after another to a single writer.
package runner

import "github.com/yaklabco/unitex/pkg/convert"

// StdinPath names standard input in a list of stream inputs.
const StdinPath = "-"

// Options controls in-place conversion of many files.
type Options struct {
	// Paths are the files or directories to convert. Empty means the
	// working directory.
	Paths []string

	// WorkingDir is the base for relative Paths. Empty means the process
	// working directory.
	WorkingDir string

	// Extensions selects the files found in directories, lowercase with a
	// leading dot. Files named explicitly are converted whatever their
	// extension. Empty means DefaultExtensions.
	Extensions []string

	// ExcludeGlobs skips matching files and directories.
	ExcludeGlobs []string

	// FollowSymlinks makes discovery descend into symlinked directories.
	FollowSymlinks bool

	// Jobs bounds the number of concurrent workers. Zero or less means
	// runtime.NumCPU().
	Jobs int

	// Pipeline controls how each file is written back.
	Pipeline convert.PipelineOptions
}

// DefaultExtensions returns the extensions of TeX sources.
func DefaultExtensions() []string {
	return []string{".tex", ".ltx", ".sty", ".cls"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
