package configloader

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/unitex/pkg/config"
)

// envVarPrefix prefixes every unitex environment variable.
const envVarPrefix = "UNITEX_"

// RulesFileEnv names a rule file used when no rule files are configured.
const RulesFileEnv = envVarPrefix + "RULES_FILE"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeList
	envTypePathList
)

type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names, without the prefix, to
// config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"REVERSE":         {"reverse", envTypeBool, "Restore glyphs to TeX: true or false"},
	"RULES":           {"rules", envTypePathList, "Rule files replacing the defaults, separated like PATH"},
	"EXTRA_RULES":     {"extra_rules", envTypePathList, "Rule files appended to the ones in use, separated like PATH"},
	"JOBS":            {"jobs", envTypeInt, "Number of files converted concurrently (0 = auto)"},
	"BACKUPS_ENABLED": {"backups.enabled", envTypeBool, "Keep backups in in-place mode: true or false"},
	"BACKUPS_MODE":    {"backups.mode", envTypeString, "Backup mode: sidecar or none"},
	"IGNORE":          {"ignore", envTypeList, "Comma-separated list of ignore patterns"},
	"NO_BACKUPS":      {"no_backups", envTypeBool, "Disable backups: true or false"},
}

// LoadFromEnv applies UNITEX_* overrides to cfg. getenv defaults to
// os.Getenv.
func LoadFromEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	for _, suffix := range slices.Sorted(maps.Keys(envMappings)) {
		envVar := envVarPrefix + suffix
		value := getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, envMappings[suffix], value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeList:
		return setListField(cfg, mapping.field, splitList(value, ","))
	case envTypePathList:
		return setListField(cfg, mapping.field, splitList(value, string(filepath.ListSeparator)))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// splitList splits value on sep, dropping blank elements.
func splitList(value, sep string) []string {
	parts := lo.Map(strings.Split(value, sep), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Compact(parts)
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "backups.mode":
		cfg.Backups.Mode = config.BackupMode(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "reverse":
		cfg.Reverse = value
	case "backups.enabled":
		cfg.Backups.Enabled = value
	case "no_backups":
		cfg.NoBackups = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setListField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "rules":
		cfg.Rules = value
	case "extra_rules":
		cfg.ExtraRules = append(cfg.ExtraRules, value...)
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown list field: %s", field)
	}
	return nil
}

// ListEnvVars returns every supported environment variable with a short
// description.
func ListEnvVars() map[string]string {
	vars := lo.MapEntries(envMappings, func(suffix string, m envMapping) (string, string) {
		return envVarPrefix + suffix, m.help
	})
	vars[RulesFileEnv] = "Rule file used when no rule files are configured"
	return vars
}
