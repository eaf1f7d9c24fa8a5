package canvas

import (
	"sync"

	"github.com/chafago/chafa/symbol"
)

// Mode selects the color model a Canvas renders into.
type Mode int

const (
	ModeTruecolor Mode = iota
	ModeIndexed256
	ModeIndexed240
	ModeIndexed16
	ModeIndexed16_8
	ModeIndexed8
	ModeFGBG
	ModeFGBGBGFG
)

// ColorExtractor selects how a cell's ink/background colors are derived
// from its source pixel partition.
type ColorExtractor int

const (
	ExtractorAverage ColorExtractor = iota
	ExtractorMedian
)

// DitherMode selects the pre-quantization dithering strategy.
type DitherMode int

const (
	DitherNone DitherMode = iota
	DitherOrdered
	DitherDiffusion
	DitherNoise
)

// PixelMode selects whether cells hold a glyph (symbol mode) or carry
// native per-pixel payloads (sixel/Kitty/iTerm2 back-ends, out of this
// package's scope beyond carrying the setting through).
type PixelMode int

const (
	PixelModeSymbols PixelMode = iota
	PixelModeSixel
	PixelModeKitty
	PixelModeITerm2
)

// Optimizations is a bitmask of serialization shortcuts Print may take.
type Optimizations uint32

const (
	OptReuseAttributes Optimizations = 1 << iota
	OptSkipCells                     // reserved: no implementation defines this yet
	OptRepeatCells
)

// Config is an immutable-after-Build record controlling how a Canvas
// matches and serializes cells. Use NewConfig to get sensible defaults,
// mutate the builder, then Build to obtain a frozen, shareable *Config.
// Config is reference-counted/copy-on-write at the API surface: a caller
// that wants to change a shared Config must Clone it first.
type Config struct {
	mu sync.Mutex // guards built only; fields are immutable post-Build

	Width, Height   int
	CellWidthPx     int
	CellHeightPx    int
	Mode            Mode
	Extractor       ColorExtractor
	Space           ColorSpace
	PrimaryMap      *symbol.SymbolMap
	FillMap         *symbol.SymbolMap
	AlphaThreshold  float64
	FG, BG          RawColor
	DefaultFGRGB    [3]uint8 // resolved RGB the FGBG modes reconstruct against
	DefaultBGRGB    [3]uint8
	WorkFactor      float64
	Preprocessing   bool
	Dither          DitherMode
	DitherGrainSize int
	DitherIntensity float64
	Pixel           PixelMode
	Optimizations   Optimizations
	ForegroundOnly  bool
	NumThreads      int

	built bool
}

// NewConfig returns a builder pre-filled with the spec's defaults: 8x8
// symbol-mode cells, truecolor, AVERAGE extraction, sRGB, work factor 1.0,
// no dithering, REUSE_ATTRIBUTES | REPEAT_CELLS enabled.
func NewConfig() *Config {
	return &Config{
		Width: 80, Height: 24,
		CellWidthPx: 8, CellHeightPx: 8,
		Mode:            ModeTruecolor,
		Extractor:       ExtractorAverage,
		Space:           ColorSpaceSRGB,
		PrimaryMap:      symbol.New(),
		AlphaThreshold:  0.5,
		FG:              RawDefaultFG,
		BG:              RawDefaultBG,
		DefaultFGRGB:    [3]uint8{255, 255, 255},
		DefaultBGRGB:    [3]uint8{0, 0, 0},
		WorkFactor:      1.0,
		Preprocessing:   true,
		DitherGrainSize: 4,
		DitherIntensity: 1.0,
		Optimizations:   OptReuseAttributes | OptRepeatCells,
		NumThreads:      1,
	}
}

// Clone returns an independent, still-unbuilt copy so a caller may mutate
// fields without affecting any Canvas already built from the original.
func (c *Config) Clone() *Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *c
	cp.mu = sync.Mutex{}
	cp.built = false
	if c.PrimaryMap != nil {
		cp.PrimaryMap = c.PrimaryMap.Clone()
	}
	if c.FillMap != nil {
		cp.FillMap = c.FillMap.Clone()
	}
	return &cp
}

// Build freezes the config. A built Config must not have its fields
// mutated directly; Clone it first. Returns the receiver for chaining.
func (c *Config) Build() *Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = true
	return c
}

// allowsRGB reports whether this mode permits arbitrary 24-bit colors
// (truecolor) as opposed to only palette indices or FG/BG markers.
func (m Mode) allowsRGB() bool { return m == ModeTruecolor }

// isFGBGOnly reports whether this mode restricts colors to the default
// FG/BG markers (with FGBGBGFG additionally permitting a per-cell swap).
func (m Mode) isFGBGOnly() bool { return m == ModeFGBG || m == ModeFGBGBGFG }

// paletteSize returns the number of addressable palette indices for
// INDEXED_* modes, or 0 for modes with no index palette.
func (m Mode) paletteSize() int {
	switch m {
	case ModeIndexed256:
		return 256
	case ModeIndexed240:
		return 240
	case ModeIndexed16, ModeIndexed16_8:
		return 16
	case ModeIndexed8:
		return 8
	}
	return 0
}

// paletteBase returns the first valid palette index for INDEXED_240 (which
// reserves 0..15 for ANSI colors already covered by INDEXED_16).
func (m Mode) paletteBase() int {
	if m == ModeIndexed240 {
		return 16
	}
	return 0
}
