package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the configuration directories of unitex.
const AppName = "unitex"

// ConfigPaths holds the discovered configuration files. Missing files are
// empty strings.
type ConfigPaths struct {
	// System is the system-wide config, e.g. /etc/unitex/config.yaml.
	System string

	// User is the user config, e.g. ~/.config/unitex/config.yaml.
	User string

	// Project is the nearest project config, e.g. ./.unitex.yml.
	Project string

	// Explicit is the path given with --config.
	Explicit string
}

// projectConfigFiles are the project config names, in order of preference.
// JSON files are read by the YAML decoder.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	".unitex.yml",
	".unitex.yaml",
	"unitex.yml",
	"unitex.yaml",
	".unitex.json",
}

// vcsRootMarkers are directories that end the upward project search.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds the system, user and project configuration files.
func DiscoverPaths(ctx context.Context, workDir string, getenv func(string) string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	paths := &ConfigPaths{
		System: findConfigInDir(systemConfigDir(getenv)),
	}
	if dir, err := UserConfigDir(getenv); err == nil {
		paths.User = findConfigInDir(dir)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths.Project = project

	return paths, nil
}

// UserConfigDir returns $XDG_CONFIG_HOME/unitex, or ~/.config/unitex when
// XDG_CONFIG_HOME is unset.
func UserConfigDir(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	configHome := getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home := getenv("HOME")
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("find home directory: %w", err)
			}
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, AppName), nil
}

func systemConfigDir(getenv func(string) string) string {
	if runtime.GOOS == "windows" {
		programData := getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, AppName)
	}
	return filepath.Join("/etc", AppName)
}

func findConfigInDir(dir string) string {
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig searches upward from startDir for a project config file.
// The search stops at a VCS root, the home directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		homeDir = ""
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}

		for _, name := range projectConfigFiles {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path, nil
			}
		}

		if isVCSRoot(dir) || (homeDir != "" && dir == homeDir) {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
