// Package app wires canvas, term, media, and grid into the command-line
// tool: flag parsing, terminal detection, single/multi-file rendering, and
// a --watch mode that re-renders as files land in a directory.
package app

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chafago/chafa/canvas"
	"github.com/chafago/chafa/symbol"
)

// Options holds the parsed command line, modeled on the teacher's flat
// Config struct (config/config.go) rather than a framework-driven flag
// library, since the teacher's own CLI wiring in main.go is plain
// os.Args/flag-free argument sniffing — a dependency-free flag.FlagSet
// is the closest idiomatic match.
type Options struct {
	Paths []string
	Watch string // directory to watch; "" disables watch mode

	Cols, Rows int // requested output size in cells; 0 means "ask the terminal"
	GridCols   int // 0 means auto-derive

	Mode       string // truecolor, indexed256, indexed240, indexed16, indexed16-8, indexed8, fgbg, fgbg-bgfg
	Symbols    string // selector expression, default "all"
	Dither     string // none, ordered, diffusion, noise
	WorkFactor float64
	Threads    int
	Rotate     int // clockwise quarter turns to apply before rendering, 0-3

	ForegroundOnly bool
	ShowLabels     bool
}

// ParseArgs parses argv (excluding argv[0]) into Options. Defaults come
// from the persisted settings file (see config.go) the way the
// teacher's editor seeds its own flags from config.Load, so a flag the
// user omits falls back to whatever they last saved rather than a
// fixed built-in value.
func ParseArgs(argv []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("chafa", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg, err := LoadConfig()
	if err != nil {
		cfg = Default()
	}

	opts := &Options{
		Mode:           cfg.Mode,
		Symbols:        cfg.Symbols,
		Dither:         cfg.Dither,
		WorkFactor:     cfg.WorkFactor,
		Threads:        cfg.Threads,
		GridCols:       cfg.GridCols,
		Rotate:         cfg.Rotate,
		ForegroundOnly: cfg.ForegroundOnly,
		ShowLabels:     cfg.ShowLabels,
	}

	fs.StringVar(&opts.Watch, "watch", "", "watch DIRECTORY for new images instead of rendering a fixed file list")
	fs.IntVar(&opts.Cols, "width", 0, "output width in character cells (0: detect from terminal)")
	fs.IntVar(&opts.Rows, "height", 0, "output height in character cells (0: detect from terminal)")
	fs.IntVar(&opts.GridCols, "grid-cols", opts.GridCols, "columns in the image grid (0: auto)")
	fs.StringVar(&opts.Mode, "mode", opts.Mode, "truecolor|indexed256|indexed240|indexed16|indexed16-8|indexed8|fgbg|fgbg-bgfg")
	fs.StringVar(&opts.Symbols, "symbols", opts.Symbols, "symbol selector expression, e.g. \"block+border-bad\"")
	fs.StringVar(&opts.Dither, "dither", opts.Dither, "none|ordered|diffusion|noise")
	fs.Float64Var(&opts.WorkFactor, "work-factor", opts.WorkFactor, "quality/speed tradeoff in [0,1]")
	fs.IntVar(&opts.Threads, "threads", opts.Threads, "worker threads for cell matching (forced to 1 under diffusion dithering)")
	fs.IntVar(&opts.Rotate, "rotate", opts.Rotate, "clockwise quarter turns to apply to each image before rendering (0-3)")
	fs.BoolVar(&opts.ForegroundOnly, "fg-only", opts.ForegroundOnly, "never emit background-color SGR")
	fs.BoolVar(&opts.ShowLabels, "labels", opts.ShowLabels, "print a filename label under each grid image")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	opts.Paths = fs.Args()
	return opts, nil
}

func parseMode(s string) (canvas.Mode, error) {
	switch strings.ToLower(s) {
	case "truecolor":
		return canvas.ModeTruecolor, nil
	case "indexed256":
		return canvas.ModeIndexed256, nil
	case "indexed240":
		return canvas.ModeIndexed240, nil
	case "indexed16":
		return canvas.ModeIndexed16, nil
	case "indexed16-8":
		return canvas.ModeIndexed16_8, nil
	case "indexed8":
		return canvas.ModeIndexed8, nil
	case "fgbg":
		return canvas.ModeFGBG, nil
	case "fgbg-bgfg":
		return canvas.ModeFGBGBGFG, nil
	}
	return 0, fmt.Errorf("app: unknown mode %q", s)
}

func parseDither(s string) (canvas.DitherMode, error) {
	switch strings.ToLower(s) {
	case "none":
		return canvas.DitherNone, nil
	case "ordered":
		return canvas.DitherOrdered, nil
	case "diffusion":
		return canvas.DitherDiffusion, nil
	case "noise":
		return canvas.DitherNoise, nil
	}
	return 0, fmt.Errorf("app: unknown dither mode %q", s)
}

// buildCanvasConfig turns parsed Options plus a known output size in cells
// into a built *canvas.Config ready for canvas.New.
func buildCanvasConfig(opts *Options, cols, rows int, defaultFG, defaultBG [3]uint8) (*canvas.Config, error) {
	mode, err := parseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	dither, err := parseDither(opts.Dither)
	if err != nil {
		return nil, err
	}

	cfg := canvas.NewConfig()
	cfg.Width, cfg.Height = cols, rows
	cfg.Mode = mode
	cfg.Dither = dither
	cfg.WorkFactor = clamp01(opts.WorkFactor)
	cfg.NumThreads = opts.Threads
	cfg.ForegroundOnly = opts.ForegroundOnly
	cfg.DefaultFGRGB = defaultFG
	cfg.DefaultBGRGB = defaultBG

	sm := symbol.New()
	if err := sm.ApplySelectors(opts.Symbols); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	cfg.PrimaryMap = sm

	return cfg.Build(), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
