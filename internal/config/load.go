package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasklist/internal/datadir"
	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/task"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file in the current directory
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return load(wd, datadir.UserConfigCandidates(), fs, args)
}

func load(workDir string, userFiles []string, fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{WorkDir: workDir}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if path := firstExisting(userFiles); path != "" {
		if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if path := firstExisting(datadir.ProjectConfigCandidates(workDir)); path != "" {
		if err := loadConfigFile(cfg, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// loadConfigFile decodes the TOML file over cfg and records which keys it set.
func loadConfigFile(cfg *Config, path string, source Source) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)
	for _, field := range fields() {
		if md.IsDefined(field) {
			cfg.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cfg.UnknownKeys = append(cfg.UnknownKeys, key.String())
	}
	sort.Strings(cfg.UnknownKeys)
	return nil
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.DataFile) == "" {
		cfg.DataFile = datadir.DefaultDataFile
	}
	cfg.DataFile = resolvePath(cfg.WorkDir, cfg.DataFile)
	cfg.LogFile = resolvePath(cfg.WorkDir, cfg.LogFile)

	if cfg.DefaultPriority < task.MinPriority || cfg.DefaultPriority > task.MaxPriority {
		return fmt.Errorf("default_priority must be between %d and %d, got %d",
			task.MinPriority, task.MaxPriority, cfg.DefaultPriority)
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error, fatal", cfg.LogLevel)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", cfg.LogFormat)
	}
	return nil
}
