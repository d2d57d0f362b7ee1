package config

import (
	"flag"
)

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"data":             "data_file",
	"log-file":         "log_file",
	"default-priority": "default_priority",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"log-timestamps":   "log_timestamps",
	"log-caller":       "log_caller",
}

// parseFlags defines the global flags on fs, parses args, and records the
// flags that were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	// Path flags
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the data file")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append logs to this file")

	// Task defaults
	fs.IntVar(&cfg.DefaultPriority, "default-priority", cfg.DefaultPriority, "Priority for tasks added without one (1-5)")

	// Logging flags
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			cfg.Sources[field] = SourceFlag
		}
	})
	return nil
}
