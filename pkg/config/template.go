package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultRules is the starter rule file written by "unitex init".
//
//go:embed rules.tsv
var DefaultRules []byte

// RulesFileName is the name of the rule file in the user config directory.
const RulesFileName = "rules.tsv"

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default instead of a commented
	// minimal file.
	Full bool

	// Format is "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return generateFullTemplate()
	}
	return generateMinimalTemplate(), nil
}

func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Restore glyphs to TeX instead of concealing TeX as glyphs
# reverse: false

# Rule files replacing the default one, relative to this file
# rules:
#   - rules.tsv

# Rule files appended to the ones in use
# extra_rules:
#   - project.tsv

# Extensions converted when a directory is given
# extensions: [".tex", ".ltx", ".sty", ".cls"]

# File patterns to skip (glob patterns)
# ignore:
#   - "build/**"

# Backups taken by --in-place: mode is sidecar or none
# backups:
#   enabled: true
#   mode: sidecar
`)

	return buf.Bytes()
}

func generateFullTemplate() ([]byte, error) {
	cfg := NewConfig()
	cfg.Extensions = []string{".tex", ".ltx", ".sty", ".cls"}
	cfg.Ignore = []string{"build/**", ".git/**"}

	header := DefaultTemplateHeader() + "\n#\n# Every setting is listed with its default value."
	out, err := cfg.ToYAMLWithHeader(header)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

func templateToJSON() ([]byte, error) {
	cfg := map[string]any{
		"reverse":    false,
		"extensions": []string{".tex", ".ltx", ".sty", ".cls"},
		"ignore":     []string{"build/**"},
		"backups": map[string]any{
			"enabled": true,
			"mode":    string(BackupModeSidecar),
		},
	}

	out, err := json.MarshalIndent(cfg, "", strings.Repeat(" ", YAMLIndent))
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(out, '\n'), nil
}

// DefaultTemplateHeader returns the header of generated config files.
func DefaultTemplateHeader() string {
	return `# unitex configuration
# See: https://github.com/yaklabco/unitex`
}
