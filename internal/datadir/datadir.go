// Package datadir provides the default locations of the data and config files.
package datadir

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName names the user config directory.
	AppName = "tasklist"

	// Dir is the directory holding the data file, relative to the working directory.
	Dir = "data"

	// DataFileName is the default data file name (inside Dir).
	DataFileName = "tasks.json"

	// ConfigFileName is the config file name.
	ConfigFileName = "tasklist.toml"

	// LogFileName is the suggested log file name (inside Dir).
	LogFileName = "tasklist.log"
)

// DefaultDataFile is the data file used when nothing else is configured.
var DefaultDataFile = DataPath("")

// DataPath returns the data file path within a work directory.
func DataPath(workDir string) string {
	return joinPath(workDir, DataFileName)
}

// LogPath returns the log file path within a work directory.
func LogPath(workDir string) string {
	return joinPath(workDir, LogFileName)
}

// ProjectConfigCandidates lists project config files in lookup order.
func ProjectConfigCandidates(workDir string) []string {
	names := []string{ConfigFileName, "." + ConfigFileName}
	if workDir == "" || workDir == "." {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(workDir, name))
	}
	return out
}

// UserConfigCandidates lists user config files in lookup order:
// ~/.tasklist/tasklist.toml, then the OS config directory.
func UserConfigCandidates() []string {
	var out []string
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, "."+AppName, ConfigFileName))
	}
	if dir := userConfigDir(); dir != "" {
		out = append(out, filepath.Join(dir, AppName, ConfigFileName))
	}
	return out
}

// userConfigDir returns the OS-specific user config directory, or "".
func userConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

func joinPath(workDir, file string) string {
	if workDir == "." || workDir == "" {
		return filepath.Join(Dir, file)
	}
	return filepath.Join(workDir, Dir, file)
}
