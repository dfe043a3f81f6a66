// Package paths resolves the default locations container-kit reads and writes.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is the directory name used under the user's config directories.
const AppName = "container-kit"

// RuntimeDataDirName is the application-data directory of Apple's
// containerization service.
const RuntimeDataDirName = "com.apple.container"

// DefaultDataDir returns the container runtime's data root, normally
// ~/Library/Application Support/com.apple.container on macOS.
func DefaultDataDir() string {
	return inUserConfigDir(RuntimeDataDirName)
}

// DefaultDatabasePath returns the registry database location.
func DefaultDatabasePath() string {
	return inUserConfigDir(AppName, AppName+".db")
}

// ConfigDir returns ~/.config/container-kit, or "" without a home directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath returns ~/.config/container-kit/config.yaml.
func DefaultConfigPath() string {
	return joinNonEmpty(ConfigDir(), "config.yaml")
}

// DefaultLogPath returns the debug log location.
func DefaultLogPath() string {
	return joinNonEmpty(ConfigDir(), "debug.log")
}

// DefaultTracesPath returns the JSONL trace export location.
func DefaultTracesPath() string {
	return joinNonEmpty(ConfigDir(), "traces", "traces.jsonl")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func inUserConfigDir(elem ...string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}

func joinNonEmpty(dir string, elem ...string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}
