package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/unitex/internal/configloader"
	"github.com/yaklabco/unitex/internal/logging"
	"github.com/yaklabco/unitex/pkg/config"
)

const (
	// configFilePermissions is the file mode for written files (world-readable).
	configFilePermissions = 0o644

	// configDirPermissions is the file mode for a created config directory.
	configDirPermissions = 0o755
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force      bool
	output     string
	withConfig bool
	dir        string
	full       bool
	format     string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Install the starter rules file",
		Long: `Write the built-in starter rules to the user rules file, which unitex reads
when no rules files are configured. With --with-config a project
configuration file is written as well.

Examples:
  unitex init                         Write ~/.config/unitex/rules.tsv
  unitex init -o my.tsv               Write the starter rules to my.tsv
  unitex init --with-config           Also create .unitex.yml here
  unitex init --with-config --full    Document every setting in .unitex.yml`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite existing files")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "rules file path (default: user config directory)")
	cmd.Flags().BoolVar(&flags.withConfig, "with-config", false, "also write a project configuration file")
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "directory for the project configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "write every setting with its default")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "configuration format: yaml or json")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	if flags.format != "yaml" && flags.format != "json" {
		return &UsageError{Err: fmt.Errorf("invalid format %q: must be yaml or json", flags.format)}
	}

	rulesPath := flags.output
	if rulesPath == "" {
		dir, err := configloader.UserConfigDir(nil)
		if err != nil {
			return err
		}
		rulesPath = filepath.Join(dir, config.RulesFileName)
	}

	if err := writeNewFile(rulesPath, config.DefaultRules, flags.force); err != nil {
		return err
	}
	logger.Info("created rules file", logging.FieldPath, rulesPath)

	if !flags.withConfig {
		logger.Info("run 'unitex rules' to list the rules in use")
		return nil
	}

	name := ".unitex.yml"
	if flags.format == "json" {
		name = ".unitex.json"
	}
	configPath := filepath.Join(flags.dir, name)

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := writeNewFile(configPath, content, flags.force); err != nil {
		return err
	}
	logger.Info("created configuration file", logging.FieldPath, configPath)

	return nil
}

// writeNewFile writes content to path, creating parent directories. An
// existing file is only replaced when force is set.
func writeNewFile(path string, content []byte, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return &UsageError{Err: fmt.Errorf("file %q already exists; use --force to overwrite", path)}
		}
		logging.Default().Warn("overwriting existing file", logging.FieldPath, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirPermissions); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
