package configloader

import "github.com/yaklabco/unitex/pkg/config"

// merge applies the settings of override on top of base and returns the
// result. Config files are layered with config.Config.MergeYAML instead; merge
// serves layers built in code, such as command-line flags, where only set
// values are meaningful:
//   - scalars and true booleans in override win
//   - Rules and Ignore in override replace those of base when non-nil
//   - ExtraRules accumulate
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Reverse {
		result.Reverse = true
	}
	if override.InPlace {
		result.InPlace = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}

	if override.Rules != nil {
		result.Rules = override.Rules
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	result.ExtraRules = append(result.ExtraRules, override.ExtraRules...)

	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
