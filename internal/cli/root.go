// Package cli provides the Cobra command structure for unitex.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/unitex/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root unitex command with all subcommands. The
// root command itself converts files.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	flags := &convertFlags{}

	rootCmd := &cobra.Command{
		Use:   "unitex [flags] [files...]",
		Short: "Conceal TeX math as Unicode and restore it again",
		Long: `unitex rewrites TeX control sequences such as \alpha, \mathbb{R} or x_{12}
as the Unicode characters they stand for (α, ℝ, x₁₂), and restores Unicode
back to TeX with --reverse. The mapping comes from tab-separated rules files.

Files are converted to stdout in order; "-" or no file reads stdin. With
--in-place every file, or every TeX source below a directory, is rewritten
atomically with a backup kept next to it.`,
		Example: `  unitex paper.tex > paper.utex.tex     Conceal to stdout
  unitex -r paper.utex.tex              Restore TeX
  unitex -u my.tsv -f extra.tsv a.tex   Use custom rules files
  unitex -i chapters/                   Convert every .tex file in place
  unitex -i --dry-run .                 Show what would change`,
		Version: info.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	addConvertFlags(rootCmd, flags)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
