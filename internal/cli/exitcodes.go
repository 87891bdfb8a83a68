package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/unitex/internal/configloader"
	"github.com/yaklabco/unitex/pkg/convert"
	"github.com/yaklabco/unitex/pkg/fsutil"
	"github.com/yaklabco/unitex/pkg/rules"
)

// Exit codes for unitex, following sysexits.h.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates a configuration or rules file error.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates a file I/O error.
	ExitIOError = 74
)

// UsageError marks an error in how the command was invoked.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var ruleErr *rules.Error
	var validationErr *configloader.ValidationError
	var pathErr *fs.PathError

	switch {
	case errors.As(err, &usageErr):
		return ExitInvalidUsage
	case errors.As(err, &ruleErr),
		errors.As(err, &validationErr),
		errors.Is(err, configloader.ErrNoRules),
		errors.Is(err, convert.ErrNoForwardIndex):
		return ExitConfigError
	case errors.As(err, &pathErr),
		errors.Is(err, ErrFilesFailed),
		errors.Is(err, convert.ErrWriteFailure),
		errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
