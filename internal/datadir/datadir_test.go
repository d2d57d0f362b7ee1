package datadir

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDataPath(t *testing.T) {
	tests := []struct {
		workDir string
		want    string
	}{
		{"", filepath.Join("data", "tasks.json")},
		{".", filepath.Join("data", "tasks.json")},
		{"/home/me", filepath.Join("/home/me", "data", "tasks.json")},
	}
	for _, tt := range tests {
		if got := DataPath(tt.workDir); got != tt.want {
			t.Errorf("DataPath(%q) = %q, want %q", tt.workDir, got, tt.want)
		}
	}
	if DefaultDataFile != DataPath("") {
		t.Errorf("DefaultDataFile = %q, want %q", DefaultDataFile, DataPath(""))
	}
}

func TestLogPath(t *testing.T) {
	if got := LogPath("/w"); got != filepath.Join("/w", "data", "tasklist.log") {
		t.Errorf("LogPath = %q", got)
	}
}

func TestProjectConfigCandidates(t *testing.T) {
	got := ProjectConfigCandidates("")
	if len(got) != 2 || got[0] != "tasklist.toml" || got[1] != ".tasklist.toml" {
		t.Errorf("ProjectConfigCandidates(\"\") = %v", got)
	}
	got = ProjectConfigCandidates("/w")
	if got[0] != filepath.Join("/w", "tasklist.toml") {
		t.Errorf("ProjectConfigCandidates(/w) = %v", got)
	}
}

func TestUserConfigCandidates(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	got := UserConfigCandidates()
	if len(got) == 0 {
		t.Fatal("no candidates")
	}
	if got[0] != filepath.Join(home, ".tasklist", "tasklist.toml") {
		t.Errorf("first candidate = %q", got[0])
	}
	for _, c := range got {
		if !strings.HasSuffix(c, "tasklist.toml") {
			t.Errorf("candidate %q does not end in tasklist.toml", c)
		}
	}
}
