// Package main is the entry point for the unitex CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/unitex/internal/cli"
	"github.com/yaklabco/unitex/internal/logging"
	"github.com/yaklabco/unitex/internal/ui/pretty"
	"github.com/yaklabco/unitex/pkg/rules"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.Execute()
	if err == nil {
		return cli.ExitSuccess
	}

	// A malformed rule is shown the way rules --check shows it.
	var ruleErr *rules.Error
	switch {
	case errors.Is(err, cli.ErrFilesFailed):
		// Failed files are already in the report.
	case errors.As(err, &ruleErr):
		styles := pretty.NewStyles(pretty.IsColorEnabled("auto", os.Stderr))
		fmt.Fprint(os.Stderr, styles.FormatRuleError(ruleErr))
	default:
		logging.Default().Error("command failed", logging.FieldError, err)
	}

	return cli.ExitCode(err)
}
