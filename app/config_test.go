package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFallsBackToDefaultWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Fatalf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestConfigSaveAndLoadRoundTrips(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Mode = "indexed256"
	cfg.Rotate = 2
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "chafa", "settings.json")); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Mode != "indexed256" || got.Rotate != 2 {
		t.Fatalf("LoadConfig() = %+v, want Mode=indexed256 Rotate=2", got)
	}
}

func TestParseArgsUsesPersistedDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Mode = "fgbg"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	opts, err := ParseArgs([]string{"a.png"}, os.Stderr)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if opts.Mode != "fgbg" {
		t.Fatalf("Mode = %q, want fgbg (from persisted config)", opts.Mode)
	}
}
