package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath expands a leading ~ and $VAR references in p and makes the
// result absolute against workDir. An empty p stays empty.
func resolvePath(workDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if home, err := os.UserHomeDir(); err == nil {
		if p == "~" {
			p = home
		} else if rest, ok := strings.CutPrefix(p, "~"+string(filepath.Separator)); ok {
			p = filepath.Join(home, rest)
		} else if rest, ok := strings.CutPrefix(p, "~/"); ok {
			p = filepath.Join(home, rest)
		}
	}
	if !filepath.IsAbs(p) && workDir != "" {
		p = filepath.Join(workDir, p)
	}
	return filepath.Clean(p)
}
