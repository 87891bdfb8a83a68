// Package configloader resolves the configuration of a run: it discovers
// config files, layers them with environment variables and flags, validates
// the result and resolves the rule files to load.
package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/yaklabco/unitex/pkg/config"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// WorkingDir is where the project config search starts. Empty means the
	// process working directory.
	WorkingDir string

	// ExplicitPath is a config file given with --config.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// Getenv reads environment variables. Nil means os.Getenv.
	Getenv func(string) string

	// CLIConfig holds the values of command-line flags that were set.
	CLIConfig *config.Config
}

func (o LoadOptions) getenv() func(string) string {
	if o.Getenv != nil {
		return o.Getenv
	}
	return os.Getenv
}

// LoadResult is the resolved configuration and where it came from.
type LoadResult struct {
	Config *config.Config
	Paths  *ConfigPaths

	// LoadedFrom lists the config files applied, in order.
	LoadedFrom []string

	// Warnings are non-fatal findings.
	Warnings []string
}

// Load resolves the configuration. Precedence, highest first:
//  1. command-line flags (opts.CLIConfig)
//  2. environment variables (UNITEX_*)
//  3. the explicit config file (--config)
//  4. the project config (.unitex.yml, searched upward)
//  5. the user config ($XDG_CONFIG_HOME/unitex/config.yaml)
//  6. the system config (/etc/unitex/config.yaml)
//  7. defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	getenv := opts.getenv()

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir, getenv)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	layers := []struct {
		path string
		skip bool
	}{
		{paths.System, opts.IgnoreSystemConfig},
		{paths.User, opts.IgnoreUserConfig},
		{paths.Project, opts.IgnoreProjectConfig},
		{paths.Explicit, false},
	}
	for _, layer := range layers {
		if layer.path == "" || layer.skip {
			continue
		}
		cfg, err = applyConfigFile(cfg, layer.path)
		if err != nil {
			return nil, err
		}
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg, getenv); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// applyConfigFile layers the config file at path over cfg. Rule paths in the
// file are resolved against its directory.
func applyConfigFile(cfg *config.Config, path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	layer := cfg.Clone()
	layer.Rules, layer.ExtraRules = nil, nil
	if err := layer.MergeYAML(content); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if validation := ValidateWithFile(layer, path); !validation.Valid() {
		return nil, &validation.Errors[0]
	}

	dir := filepath.Dir(path)
	if layer.Rules == nil {
		layer.Rules = cfg.Rules
	} else {
		layer.Rules = resolveAgainst(dir, layer.Rules)
	}
	layer.ExtraRules = append(slices.Clone(cfg.ExtraRules), resolveAgainst(dir, layer.ExtraRules)...)

	return layer, nil
}

func resolveAgainst(dir string, paths []string) []string {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			resolved[i] = p
		} else {
			resolved[i] = filepath.Join(dir, p)
		}
	}
	return resolved
}
