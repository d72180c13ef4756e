package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme.Name != "default" {
		t.Errorf("expected default theme, got %q", p.Theme.Name)
	}
	if p.Defaults.FailFast || p.Defaults.MuteSuccess {
		t.Errorf("expected zero-value defaults, got %+v", p.Defaults)
	}
}

func TestLoad_ParsesThemeAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[theme]
name = "mono"

[defaults]
fail_fast = true
mute_success = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme.Name != "mono" {
		t.Errorf("expected theme mono, got %q", p.Theme.Name)
	}
	if !p.Defaults.FailFast || !p.Defaults.MuteSuccess {
		t.Errorf("expected both defaults true, got %+v", p.Defaults)
	}
}
