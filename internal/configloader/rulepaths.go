package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/samber/lo"

	"github.com/yaklabco/unitex/pkg/config"
)

// ErrNoRules is returned when no rule file can be found.
var ErrNoRules = errors.New("couldn't find any rules file")

// RulePaths returns the rule files a run loads, in order:
//  1. cfg.Rules, set by --rules or a config file
//  2. otherwise $UNITEX_RULES_FILE when set, if that file exists
//  3. otherwise, with $UNITEX_RULES_FILE unset or empty, rules.tsv in the
//     user config directory, if it exists
//
// cfg.ExtraRules are appended and duplicates removed, keeping the first.
func RulePaths(cfg *config.Config, getenv func(string) string) ([]string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var paths []string
	switch {
	case len(cfg.Rules) > 0:
		paths = slices.Clone(cfg.Rules)
	default:
		if path := defaultRulesFile(getenv); path != "" {
			paths = []string{path}
		}
	}

	paths = lo.Uniq(append(paths, cfg.ExtraRules...))
	if len(paths) == 0 {
		return nil, ErrNoRules
	}
	return paths, nil
}

func defaultRulesFile(getenv func(string) string) string {
	if path := getenv(RulesFileEnv); path != "" {
		if fileExists(path) {
			return path
		}
		return ""
	}

	dir, err := UserConfigDir(getenv)
	if err != nil {
		return ""
	}
	if path := filepath.Join(dir, config.RulesFileName); fileExists(path) {
		return path
	}
	return ""
}
