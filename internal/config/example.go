package config

import (
	"fmt"
	"path/filepath"

	"github.com/nibzard/tasklist/internal/datadir"
	"github.com/nibzard/tasklist/internal/task"
)

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return fmt.Sprintf(`# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags.

# Data file (relative to the working directory, supports ~ expansion)
data_file = %q

# Priority given to tasks added without one (%d-%d)
default_priority = %d

# Logging
log_level = %q      # debug, info, warn, error
log_format = %q     # text, json, logfmt
log_timestamps = false
log_caller = false

# Append logs to a file instead of stderr (the TUI only logs when this is set)
# log_file = %q
`,
		filepath.ToSlash(datadir.DataPath("")),
		task.MinPriority, task.MaxPriority, task.DefaultPriority,
		DefaultLogLevel, DefaultLogFormat,
		filepath.ToSlash(datadir.LogPath("")),
	)
}
