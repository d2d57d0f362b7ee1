package config

import (
	"github.com/nibzard/tasklist/internal/datadir"
	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/task"
)

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Paths
	DataFile string `toml:"data_file"`
	LogFile  string `toml:"log_file"`

	// Tasks
	DefaultPriority int `toml:"default_priority"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	WorkDir string `toml:"-"`

	// Files that were read, in load order.
	Files []string `toml:"-"`

	// Keys present in config files that tasklist does not know.
	UnknownKeys []string `toml:"-"`

	// Sources maps field names to the layer that last set them.
	Sources map[string]Source `toml:"-"`
}

// fields lists the configurable field names for source tracking.
func fields() []string {
	return []string{
		"data_file",
		"log_file",
		"default_priority",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return fields()
}

func setDefaults(cfg *Config) {
	cfg.DataFile = datadir.DefaultDataFile
	cfg.LogFile = ""
	cfg.DefaultPriority = task.DefaultPriority
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
	cfg.Sources = make(map[string]Source, len(fields()))
	for _, f := range fields() {
		cfg.Sources[f] = SourceDefault
	}
}

// LogOptions returns the logger options described by the config.
func (c *Config) LogOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.LogLevel
	opts.Format = c.LogFormat
	opts.Timestamps = c.LogTimestamps
	opts.Caller = c.LogCaller
	return opts
}

// Source returns where the named field came from.
func (c *Config) Source(field string) Source {
	if s, ok := c.Sources[field]; ok {
		return s
	}
	return SourceDefault
}
