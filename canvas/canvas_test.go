package canvas

import (
	"testing"

	"github.com/chafago/chafa/symbol"
)

func solidPixelConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewConfig()
	cfg.Width, cfg.Height = 100, 100
	cfg.CellWidthPx, cfg.CellHeightPx = 8, 8
	cfg.Mode = ModeFGBGBGFG
	cfg.ForegroundOnly = true
	cfg.PrimaryMap.AddByRange(' ', ' ')
	cfg.PrimaryMap.AddByRange('a', 'a')
	cfg.Build()
	return cfg
}

func solidFrame(r, g, b, a uint8) (buf []byte, w, h, stride int) {
	return []byte{r, g, b, a}, 1, 1, 4
}

func TestAllBlackRendersAllSpaces(t *testing.T) {
	cfg := solidPixelConfig(t)
	c := New(cfg)
	buf, w, h, stride := solidFrame(0, 0, 0, 255)
	c.DrawAllPixels(PixelRGBA8, buf, w, h, stride)

	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if ch := c.GetCharAt(x, y); ch != ' ' {
				t.Fatalf("cell (%d,%d): got %q, want space", x, y, ch)
			}
		}
	}
}

func TestAllWhiteRendersAllA(t *testing.T) {
	cfg := solidPixelConfig(t)
	c := New(cfg)
	buf, w, h, stride := solidFrame(255, 255, 255, 255)
	c.DrawAllPixels(PixelRGBA8, buf, w, h, stride)

	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if ch := c.GetCharAt(x, y); ch != 'a' {
				t.Fatalf("cell (%d,%d): got %q, want 'a'", x, y, ch)
			}
		}
	}
}

// TestDrawAllPixelsDeterministic checks the spec's single-thread/multi-
// thread equivalence for non-DIFFUSION dither modes: row partitioning must
// not change which glyph a row of cells resolves to.
func TestDrawAllPixelsDeterministic(t *testing.T) {
	cfg := NewConfig()
	cfg.Width, cfg.Height = 20, 20
	cfg.PrimaryMap.AddByTags(symbol.TagASCII | symbol.TagBlock | symbol.TagSpace)
	cfg.NumThreads = 1
	cfgSerial := cfg.Build()

	cfgParallel := cfg.Clone()
	cfgParallel.NumThreads = 4
	cfgParallel.Build()

	buf := make([]byte, 64*64*4)
	for i := 0; i < 64*64; i++ {
		buf[i*4] = byte(i * 7 % 256)
		buf[i*4+1] = byte(i * 13 % 256)
		buf[i*4+2] = byte(i * 19 % 256)
		buf[i*4+3] = 255
	}

	serial := New(cfgSerial)
	serial.DrawAllPixels(PixelRGBA8, buf, 64, 64, 64*4)

	parallel := New(cfgParallel)
	parallel.DrawAllPixels(PixelRGBA8, buf, 64, 64, 64*4)

	for y := 0; y < serial.Height(); y++ {
		for x := 0; x < serial.Width(); x++ {
			if serial.GetCharAt(x, y) != parallel.GetCharAt(x, y) {
				t.Fatalf("cell (%d,%d): serial %q != parallel %q",
					x, y, serial.GetCharAt(x, y), parallel.GetCharAt(x, y))
			}
		}
	}
}

// TestIndexed240ReservesAnsiRange checks that palette indices for
// INDEXED_240 never land in the 0..15 range reserved for INDEXED_16.
func TestIndexed240ReservesAnsiRange(t *testing.T) {
	cfg := NewConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.Mode = ModeIndexed240
	cfg.PrimaryMap.AddByTags(symbol.TagASCII | symbol.TagBlock)
	cfg.Build()

	buf := make([]byte, 64*64*4)
	for i := range buf {
		buf[i] = byte(i % 256)
	}

	c := New(cfg)
	c.DrawAllPixels(PixelRGBA8, buf, 64, 64, 64*4)

	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			fg, bg := c.GetRawColorsAt(x, y)
			if !fg.IsSpecial() && fg < 16 {
				t.Fatalf("cell (%d,%d): fg index %d falls in reserved ANSI range", x, y, fg)
			}
			if !bg.IsSpecial() && bg < 16 {
				t.Fatalf("cell (%d,%d): bg index %d falls in reserved ANSI range", x, y, bg)
			}
		}
	}
}

// TestPrintReuseAttributesSkipsRedundantSGR checks that two adjacent cells
// sharing the same colors emit only one SGR sequence between them, per
// REUSE_ATTRIBUTES.
func TestPrintReuseAttributesSkipsRedundantSGR(t *testing.T) {
	cfg := NewConfig()
	cfg.Width, cfg.Height = 2, 1
	cfg.Optimizations = OptReuseAttributes
	cfg.Build()

	c := New(cfg)
	c.SetCharAt(0, 0, 'x')
	c.SetCharAt(1, 0, 'y')
	c.SetRawColorsAt(0, 0, PackRGB(10, 20, 30), PackRGB(0, 0, 0))
	c.SetRawColorsAt(1, 0, PackRGB(10, 20, 30), PackRGB(0, 0, 0))
	c.SetColorsAt(0, 0, [3]uint8{10, 20, 30}, [3]uint8{0, 0, 0})
	c.SetColorsAt(1, 0, [3]uint8{10, 20, 30}, [3]uint8{0, 0, 0})

	out := string(c.Print(ANSIWriter{}))
	want := "\x1b[38;2;10;20;30m\x1b[48;2;0;0;0mxy\x1b[0m\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// TestPrintRepeatCellsFallsBackWithoutSupport checks that REPEAT_CELLS with
// an SGRWriter reporting no repeat support falls back to literal repetition
// (ANSIWriter always reports ok=false).
func TestPrintRepeatCellsFallsBackWithoutSupport(t *testing.T) {
	cfg := NewConfig()
	cfg.Width, cfg.Height = 5, 1
	cfg.Optimizations = OptReuseAttributes | OptRepeatCells
	cfg.Build()

	c := New(cfg)
	for x := 0; x < 5; x++ {
		c.SetCharAt(x, 0, 'z')
	}

	out := string(c.Print(ANSIWriter{}))
	want := "\x1b[39m\x1b[49mzzzzz\x1b[0m\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSetCharAtWideGlyphOccupiesTwoCells(t *testing.T) {
	cfg := NewConfig()
	cfg.Width, cfg.Height = 4, 1
	wide := &symbol.Glyph{
		CodePoint: 0x4E2D, // a CJK ideograph code point, used only as a stand-in wide glyph
		Tags:      symbol.TagWide,
		WideCover: symbol.WideCover{symbol.Cover(0), symbol.Cover(0)},
	}
	cfg.PrimaryMap.AddUserGlyph(wide)
	cfg.Build()

	c := New(cfg)
	n := c.SetCharAt(0, 0, wide.CodePoint)
	if n != 2 {
		t.Fatalf("SetCharAt reported %d cells written, want 2", n)
	}
	if ch := c.GetCharAt(0, 0); ch != wide.CodePoint {
		t.Fatalf("cell (0,0): got %q, want %q", ch, wide.CodePoint)
	}
	if ch := c.GetCharAt(1, 0); ch != rightHalfSentinel {
		t.Fatalf("cell (1,0): got %q, want right-half sentinel", ch)
	}
}

func TestGetCharAtOutOfBoundsReturnsZero(t *testing.T) {
	cfg := NewConfig()
	cfg.Width, cfg.Height = 4, 4
	cfg.Build()
	c := New(cfg)
	if ch := c.GetCharAt(-1, 0); ch != 0 {
		t.Fatalf("got %q, want 0", ch)
	}
	if ch := c.GetCharAt(100, 100); ch != 0 {
		t.Fatalf("got %q, want 0", ch)
	}
}
