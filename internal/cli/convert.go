package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/unitex/internal/configloader"
	"github.com/yaklabco/unitex/internal/logging"
	"github.com/yaklabco/unitex/pkg/config"
	"github.com/yaklabco/unitex/pkg/convert"
	"github.com/yaklabco/unitex/pkg/fsutil"
	"github.com/yaklabco/unitex/pkg/reporter"
	"github.com/yaklabco/unitex/pkg/rules"
	"github.com/yaklabco/unitex/pkg/runner"
)

// ErrFilesFailed is returned when an in-place run could not convert every file.
var ErrFilesFailed = errors.New("some files could not be converted")

type convertFlags struct {
	rules        []string
	addRules     []string
	extensions   []string
	ignore       []string
	format       string
	verbose      bool
	lineBuffered bool
}

func addConvertFlags(cmd *cobra.Command, flags *convertFlags) {
	f := cmd.Flags()
	f.BoolP("reverse", "r", false, "restore Unicode glyphs to TeX")
	f.StringArrayVarP(&flags.rules, "rules", "u", nil, "rules file replacing the default ones (repeatable)")
	f.StringArrayVarP(&flags.addRules, "add-rules", "f", nil, "additional rules file (repeatable)")
	f.BoolP("in-place", "i", false, "rewrite files in place instead of writing to stdout")
	f.Bool("dry-run", false, "with --in-place, show the changes without writing them")
	f.Int("jobs", 0, "number of files converted concurrently in place (0 = auto)")
	f.Bool("no-backups", false, "with --in-place, do not keep backups")
	f.StringSliceVar(&flags.extensions, "ext", nil, "extensions converted below directories (default .tex,.ltx,.sty,.cls)")
	f.StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of files to skip")
	f.StringVar(&flags.format, "format", "text", "in-place report format: text, table, json, diff")
	f.BoolVarP(&flags.verbose, "verbose", "V", false, "list unchanged files in the in-place report")
	f.BoolVar(&flags.lineBuffered, "line-buffered", false, "flush stdout after every line (default when stdout is a terminal)")
}

// cliConfig collects the flags that were set into a config layer.
func cliConfig(cmd *cobra.Command, flags *convertFlags) (*config.Config, error) {
	cfg := &config.Config{
		ExtraRules: flags.addRules,
		Extensions: normalizeExtensions(flags.extensions),
	}

	fs := cmd.Flags()
	if fs.Changed("rules") {
		cfg.Rules = flags.rules
	}
	if fs.Changed("ignore") {
		cfg.Ignore = flags.ignore
	}
	if fs.Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}

	var err error
	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"reverse", &cfg.Reverse},
		{"in-place", &cfg.InPlace},
		{"dry-run", &cfg.DryRun},
		{"no-backups", &cfg.NoBackups},
	}
	for _, b := range boolFlags {
		if *b.dst, err = fs.GetBool(b.name); err != nil {
			return nil, fmt.Errorf("get %s flag: %w", b.name, err)
		}
	}
	if cfg.Jobs, err = fs.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("get jobs flag: %w", err)
	}

	return cfg, nil
}

// normalizeExtensions lowercases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	if exts == nil {
		return nil
	}
	return lo.Map(exts, func(ext string, _ int) string {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	})
}

// loadConfig resolves the configuration for a command, with cli as the
// highest-precedence layer.
func loadConfig(cmd *cobra.Command, cli *config.Config) (*configloader.LoadResult, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cli,
	})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	return loadResult, nil
}

// loadRuleSet resolves, parses and compiles the rules files of cfg.
func loadRuleSet(cfg *config.Config, logger *log.Logger) (*rules.Set, error) {
	paths, err := configloader.RulePaths(cfg, nil)
	if err != nil {
		return nil, err
	}

	logger.Debug("loading rules", logging.FieldPaths, paths, logging.FieldMode, modeOf(cfg))

	set, err := rules.LoadFiles(paths, rules.Options{InverseOnly: cfg.Reverse})
	if err != nil {
		return nil, err
	}

	for _, w := range set.Warnings {
		logger.Debug(w.Msg, logging.FieldPath, w.File, logging.FieldLine, w.Line)
	}
	logger.Debug("rules compiled", logging.FieldRules, len(set.Rules))

	return set, nil
}

func modeOf(cfg *config.Config) convert.Mode {
	if cfg.Reverse {
		return convert.Reverse
	}
	return convert.Forward
}

func runConvert(cmd *cobra.Command, args []string, flags *convertFlags) error {
	logger := logging.Default()
	ctx := logging.WithLogger(commandContext(cmd), logger)

	cli, err := cliConfig(cmd, flags)
	if err != nil {
		return err
	}

	loadResult, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}
	cfg := loadResult.Config

	set, err := loadRuleSet(cfg, logger)
	if err != nil {
		return err
	}

	lineBuffered := flags.lineBuffered || isTerminal(cmd.OutOrStdout())
	conv, err := convert.New(set, convert.Options{
		Mode:         modeOf(cfg),
		LineBuffered: lineBuffered && !cfg.InPlace,
	})
	if err != nil {
		return fmt.Errorf("create converter: %w", err)
	}

	if !cfg.InPlace {
		stats, err := runner.Stream(ctx, conv, args, cmd.InOrStdin(), cmd.OutOrStdout())
		logger.Debug("stream finished",
			logging.FieldLines, stats.Lines,
			logging.FieldRawLines, stats.RawLines,
			logging.FieldConcealed, stats.Concealed,
			logging.FieldRestored, stats.Restored,
		)
		return err
	}

	return runInPlace(ctx, cmd, args, cfg, conv)
}

func runInPlace(ctx context.Context, cmd *cobra.Command, args []string, cfg *config.Config, conv *convert.Converter) error {
	logger := logging.Default()

	for _, arg := range args {
		if arg == runner.StdinPath {
			return &UsageError{Err: errors.New("--in-place cannot convert standard input")}
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return &UsageError{Err: err}
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode,
		ShowSummary: true,
		DryRun:      cfg.DryRun,
		Verbose:     verbose(cmd),
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	pipeOpts := convert.DefaultPipelineOptions()
	pipeOpts.DryRun = cfg.DryRun
	pipeOpts.Backup.Enabled = cfg.BackupsActive()
	if cfg.Backups.Mode != "" {
		pipeOpts.Backup.Mode = fsutil.BackupMode(cfg.Backups.Mode)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   cfg.Extensions,
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
		Pipeline:     pipeOpts,
	}

	logger.Debug("starting in-place run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
		logging.FieldDryRun, cfg.DryRun,
	)

	result, err := runner.New(convert.NewPipeline(conv)).Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("in-place run: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	logger.Debug("in-place run finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesModified, result.Stats.FilesModified,
		logging.FieldFilesSkipped, result.Stats.FilesSkipped,
	)

	if result.HasErrors() {
		return errors.Join(ErrFilesFailed, result.Err())
	}
	return nil
}

func verbose(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("verbose")
	return err == nil && v
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
