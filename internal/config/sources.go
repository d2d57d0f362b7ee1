package config

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Value returns the display value of the named field.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "log_file":
		return c.LogFile
	case "default_priority":
		return fmt.Sprintf("%d", c.DefaultPriority)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprintf("%t", c.LogTimestamps)
	case "log_caller":
		return fmt.Sprintf("%t", c.LogCaller)
	default:
		return ""
	}
}

// WriteSources prints every field with its value and source.
func (c *Config) WriteSources(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tSOURCE")
	for _, field := range fields() {
		value := c.Value(field)
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", field, value, c.Source(field))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range c.Files {
		if _, err := fmt.Fprintf(w, "loaded %s\n", f); err != nil {
			return err
		}
	}
	for _, k := range c.UnknownKeys {
		if _, err := fmt.Fprintf(w, "unknown key %s\n", k); err != nil {
			return err
		}
	}
	return nil
}
