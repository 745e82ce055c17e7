package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	path := writeConfig(t, "name: social\ndefault_max_hops: 6\nlog_level: debug\n")

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.Name != "social" || opts.DefaultMaxHops != 6 || opts.LogLevel != "debug" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.VisibilityCacheSize != DefaultOptions().VisibilityCacheSize {
		t.Errorf("missing field should keep its default, got %d", opts.VisibilityCacheSize)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "name: x\nmax_hops: 3\n"},
		{"bad level", "log_level: loud\n"},
		{"bad syntax", "name: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadOptions(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
	opts, err := LoadOptions("")
	if err != nil || opts.Name != "default" {
		t.Errorf("empty path should return defaults: %+v, %v", opts, err)
	}
}
