// Package config defines the configuration types of unitex and their YAML
// form. It holds data only; discovery and merging live in configloader.
package config

// BackupMode names where backups of converted files go.
type BackupMode string

const (
	BackupModeSidecar BackupMode = "sidecar"
	BackupModeNone    BackupMode = "none"
)

// IsValid reports whether the backup mode is known.
func (m BackupMode) IsValid() bool {
	switch m {
	case BackupModeSidecar, BackupModeNone:
		return true
	default:
		return false
	}
}

// BackupsConfig controls backups taken before a file is converted in place.
type BackupsConfig struct {
	Enabled bool       `mapstructure:"enabled" yaml:"enabled"`
	Mode    BackupMode `mapstructure:"mode" yaml:"mode"`
}

// OutputFormat selects how the outcome of an in-place run is printed.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatDiff  OutputFormat = "diff"
)

// IsValid reports whether the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON, FormatDiff:
		return true
	}
	return false
}

// Config is the root configuration of unitex.
type Config struct {
	// Reverse restores glyphs to TeX instead of concealing TeX as glyphs.
	Reverse bool `mapstructure:"reverse" yaml:"reverse"`

	// Rules replaces the default rule files. Relative paths are resolved
	// against the directory of the config file that sets them.
	Rules []string `mapstructure:"rules" yaml:"rules,omitempty"`

	// ExtraRules are appended to the rule files in use.
	ExtraRules []string `mapstructure:"extra_rules" yaml:"extra_rules,omitempty"`

	// Extensions selects the files converted when a directory is given.
	Extensions []string `mapstructure:"extensions" yaml:"extensions,omitempty"`

	// Ignore contains glob patterns of files to skip.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// Backups configures backups in in-place mode.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// CLI-level options, never read from or written to config files.

	// InPlace converts files in place instead of writing to stdout.
	InPlace bool `mapstructure:"-" yaml:"-"`

	// DryRun shows the changes in-place mode would make.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Jobs bounds the number of files converted concurrently.
	Jobs int `mapstructure:"-" yaml:"-"`

	// NoBackups disables backups.
	NoBackups bool `mapstructure:"-" yaml:"-"`

	// Format selects the report printed after an in-place run.
	Format OutputFormat `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    BackupModeSidecar,
		},
		Format: FormatText,
		Jobs:   0, // 0 means runtime.NumCPU()
	}
}

// BackupsActive reports whether in-place conversion keeps backups.
func (c *Config) BackupsActive() bool {
	return c.Backups.Enabled && !c.NoBackups && c.Backups.Mode != BackupModeNone
}
