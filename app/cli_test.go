package app

import (
	"bytes"
	"testing"

	"github.com/chafago/chafa/canvas"
)

func TestParseArgsDefaultsAndOverrides(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := ParseArgs([]string{"-mode", "indexed256", "-width", "40", "a.png", "b.png"}, &stderr)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if opts.Mode != "indexed256" {
		t.Fatalf("Mode = %q, want indexed256", opts.Mode)
	}
	if opts.Cols != 40 {
		t.Fatalf("Cols = %d, want 40", opts.Cols)
	}
	if len(opts.Paths) != 2 || opts.Paths[0] != "a.png" || opts.Paths[1] != "b.png" {
		t.Fatalf("Paths = %v, want [a.png b.png]", opts.Paths)
	}
	if opts.Symbols != "all" {
		t.Fatalf("Symbols default = %q, want all", opts.Symbols)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := ParseArgs([]string{"-bogus"}, &stderr); err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
}

func TestBuildCanvasConfigAppliesModeAndSymbols(t *testing.T) {
	opts := &Options{Mode: "fgbg-bgfg", Symbols: "block+border", Dither: "ordered", WorkFactor: 2.0, Threads: 1}
	cfg, err := buildCanvasConfig(opts, 80, 24, [3]uint8{1, 2, 3}, [3]uint8{4, 5, 6})
	if err != nil {
		t.Fatalf("buildCanvasConfig: %v", err)
	}
	if cfg.Mode != canvas.ModeFGBGBGFG {
		t.Fatalf("Mode = %v, want ModeFGBGBGFG", cfg.Mode)
	}
	if cfg.Dither != canvas.DitherOrdered {
		t.Fatalf("Dither = %v, want DitherOrdered", cfg.Dither)
	}
	if cfg.WorkFactor != 1.0 {
		t.Fatalf("WorkFactor = %v, want clamped to 1.0", cfg.WorkFactor)
	}
	if cfg.PrimaryMap.Len() == 0 {
		t.Fatal("expected the block+border selector to select at least one glyph")
	}
}

func TestBuildCanvasConfigRejectsUnknownMode(t *testing.T) {
	opts := &Options{Mode: "not-a-mode", Symbols: "all", Dither: "none"}
	if _, err := buildCanvasConfig(opts, 80, 24, [3]uint8{}, [3]uint8{}); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestGridCellBudgetSplitsAcrossColumns(t *testing.T) {
	w, h := gridCellBudget(100, 40, 4, 2)
	if w != 50 {
		t.Fatalf("per-image width = %d, want 50", w)
	}
	if h != 20 {
		t.Fatalf("per-image height = %d, want 20 (2 grid rows of 40/2)", h)
	}
}

func TestGridCellBudgetSingleImageUsesFullSize(t *testing.T) {
	w, h := gridCellBudget(100, 40, 1, 0)
	if w != 100 || h != 40 {
		t.Fatalf("got %d,%d want 100,40", w, h)
	}
}

func TestParseArgsRotateDefaultsToZero(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := ParseArgs([]string{"a.png"}, &stderr)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if opts.Rotate != 0 {
		t.Fatalf("Rotate default = %d, want 0", opts.Rotate)
	}
}

func TestParseArgsRotateOverride(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := ParseArgs([]string{"-rotate", "1", "a.png"}, &stderr)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if opts.Rotate != 1 {
		t.Fatalf("Rotate = %d, want 1", opts.Rotate)
	}
}

func TestDefaultConfigMatchesParseArgsDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Mode != "truecolor" || cfg.Symbols != "all" || cfg.Dither != "none" {
		t.Fatalf("Default() = %+v, want truecolor/all/none", cfg)
	}
	if !cfg.ShowLabels {
		t.Fatal("Default().ShowLabels = false, want true")
	}
}
