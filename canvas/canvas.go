// Package canvas matches source pixels against a symbol alphabet to
// produce a grid of terminal cells, and serializes that grid to bytes.
package canvas

import (
	"image"
	"image/color"

	"github.com/chafago/chafa/symbol"
)

// Canvas is the result of matching one frame of pixels against a Config's
// symbol map(s). It owns a snapshot of its Config taken at construction,
// per the spec's copy-on-write lifetime contract — later mutation of the
// Config a Canvas was built from does not affect the Canvas.
type Canvas struct {
	cfg *Config

	width, height int // cells
	cells         []Cell

	pal *palette // non-nil only for INDEXED_* modes
}

// New snapshots cfg (by value, with its symbol maps left shared — symbol
// maps are themselves copy-on-write) and allocates a blank cell grid.
func New(cfg *Config) *Canvas {
	snap := *cfg
	c := &Canvas{
		cfg:    &snap,
		width:  cfg.Width,
		height: cfg.Height,
		cells:  make([]Cell, cfg.Width*cfg.Height),
	}
	for i := range c.cells {
		c.cells[i] = Cell{CodePoint: ' ', FG: cfg.FG, BG: cfg.BG}
	}
	return c
}

// DrawAllPixels runs the full pre-pass and per-cell matching pipeline
// against one frame of source pixels and overwrites the canvas's cells.
// n_threads from the config governs cell-row partitioning; DIFFUSION
// dither forces single-threaded execution regardless, so that output
// remains bit-identical to a serial run per spec §5.
func (c *Canvas) DrawAllPixels(format PixelFormat, buf []byte, width, height, rowstride int) {
	straight := decodeToRGBA(format, buf, width, height, rowstride)

	cw, ch := c.cfg.CellWidthPx, c.cfg.CellHeightPx
	if cw < 1 {
		cw = 8
	}
	if ch < 1 {
		ch = 8
	}
	pixelW, pixelH := c.width*cw, c.height*ch

	src := resample(straight, pixelW, pixelH)
	if c.cfg.Preprocessing && lowColor(c.cfg.Mode) {
		src = preprocessLowColor(src)
	}

	if c.cfg.Mode.paletteSize() > 0 {
		c.pal = derivePalette(src, c.cfg.Mode)
	}

	dither := newDitherState(c.cfg, pixelW, pixelH)

	threads := c.cfg.NumThreads
	if threads < 1 {
		threads = 1
	}
	if c.cfg.Dither == DitherDiffusion {
		threads = 1 // scan-order dependency forces serial execution
	}

	if threads <= 1 {
		c.matchRows(src, 0, c.height, cw, ch, dither)
		return
	}
	c.matchRowsParallel(src, cw, ch, dither, threads)
}

func (c *Canvas) matchRowsParallel(src *image.RGBA, cw, ch int, dither *ditherState, threads int) {
	rowsPerWorker := (c.height + threads - 1) / threads
	done := make(chan struct{}, threads)
	n := 0
	for start := 0; start < c.height; start += rowsPerWorker {
		end := start + rowsPerWorker
		if end > c.height {
			end = c.height
		}
		n++
		go func(s, e int) {
			c.matchRows(src, s, e, cw, ch, dither)
			done <- struct{}{}
		}(start, end)
	}
	for i := 0; i < n; i++ {
		<-done
	}
}

func (c *Canvas) matchRows(src *image.RGBA, rowStart, rowEnd, cw, ch int, dither *ditherState) {
	primary := c.cfg.PrimaryMap.Compile()
	var fill []*symbol.Glyph
	if c.cfg.FillMap != nil {
		fill = c.cfg.FillMap.Compile()
	}

	for cy := rowStart; cy < rowEnd; cy++ {
		for cx := 0; cx < c.width; cx++ {
			t := extractTile(src, cx, cy, cw, ch)
			if dither.mode == DitherDiffusion {
				t = applyPendingError(t, dither, cx*cw, cy*ch)
			}
			if dither.mode == DitherOrdered || dither.mode == DitherNoise {
				for i, p := range t.px {
					px, py := cx*cw+i%cw, cy*ch+i/cw
					u := unpremultiplyColor(p)
					var off [3]float64
					for k := range off {
						if dither.mode == DitherOrdered {
							off[k] = dither.orderedOffset(px, py)
						} else {
							off[k] = dither.noiseOffset(px, py, k)
						}
					}
					u.R, u.G, u.B = addSignedByte(u.R, off[0]), addSignedByte(u.G, off[1]), addSignedByte(u.B, off[2])
					t.px[i] = premultiplyColor(u)
				}
			}

			best, ok := bestMatch(t, primary, c.cfg)
			if ok && fill != nil && shouldTryFill(best, t, c.cfg.WorkFactor) {
				if fb, fok := bestMatch(t, fill, c.cfg); fok && fb.err < best.err {
					best = fb
				}
			}

			cell := c.cellFromMatch(best, ok)
			c.setCell(cx, cy, cell)

			if dither.mode == DitherDiffusion && ok {
				diffuseResidual(t, best, dither, cx*cw, cy*ch, c.cfg.Space)
			}
		}
	}
}

// applyPendingError folds DIFFUSION's accumulated error into the tile's
// straight-alpha samples before matching, returning a corrected copy.
func applyPendingError(t tile, d *ditherState, originX, originY int) tile {
	out := tile{cw: t.cw, ch: t.ch, inkLevel: t.inkLevel, px: append([]color.RGBA(nil), t.px...)}
	for y := 0; y < t.ch; y++ {
		for x := 0; x < t.cw; x++ {
			e := d.pendingError(originX+x, originY+y)
			c := unpremultiplyColor(out.px[y*t.cw+x])
			c.R = addSignedByte(c.R, e[0])
			c.G = addSignedByte(c.G, e[1])
			c.B = addSignedByte(c.B, e[2])
			out.px[y*t.cw+x] = premultiplyColor(c)
		}
	}
	return out
}

func addSignedByte(v uint8, delta float64) uint8 {
	r := float64(v) + delta*255
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func diffuseResidual(t tile, m matchResult, d *ditherState, originX, originY int, space ColorSpace) {
	for y := 0; y < t.ch; y++ {
		for x := 0; x < t.cw; x++ {
			var inked bool
			if m.glyph.IsWide() {
				inked = m.glyph.WideCover.Bit(x, y)
			} else {
				inked = m.glyph.Cover.Bit(x%8, y%8)
			}
			recon := m.bg
			if inked {
				recon = m.fg
			}
			src := unpremultiplyColor(t.px[y*t.cw+x])
			residual := [3]float64{
				(float64(src.R) - float64(recon.R)) / 255,
				(float64(src.G) - float64(recon.G)) / 255,
				(float64(src.B) - float64(recon.B)) / 255,
			}
			d.diffuse(originX+x, originY+y, residual)
		}
	}
}

// shouldTryFill decides whether the primary match is weak enough to
// consult the fill map, per the k * tile-variance threshold of §4.3.2
// step 6 (k shrinks as work_factor grows, since a thorough primary search
// already explored more of the alphabet).
func shouldTryFill(best matchResult, t tile, workFactor float64) bool {
	k := 2.0 - workFactor // in [1.0, 2.0]
	return best.err > k*tileVariance(t)
}

func tileVariance(t tile) float64 {
	var sum, sumSq float64
	n := float64(len(t.px))
	for _, p := range t.px {
		u := unpremultiplyColor(p)
		lum := float64(u.R)*0.299 + float64(u.G)*0.587 + float64(u.B)*0.114
		sum += lum
		sumSq += lum * lum
	}
	mean := sum / n
	return sumSq/n - mean*mean
}

func (c *Canvas) cellFromMatch(m matchResult, ok bool) Cell {
	if !ok {
		return Cell{CodePoint: ' ', FG: c.cfg.FG, BG: c.cfg.BG}
	}
	cell := Cell{CodePoint: m.glyph.CodePoint}
	cell.DisplayFG = [3]uint8{m.fg.R, m.fg.G, m.fg.B}
	cell.DisplayBG = [3]uint8{m.bg.R, m.bg.G, m.bg.B}

	switch {
	case c.cfg.Mode.isFGBGOnly():
		cell.FG, cell.BG = RawDefaultFG, RawDefaultBG
		if m.inverted {
			cell.Inverted = true
			cell.FG, cell.BG = RawDefaultBG, RawDefaultFG
		}
	case c.cfg.Mode.paletteSize() > 0 && c.pal != nil:
		fgIdx, fgRGB := c.pal.nearest(toWorking(m.fg, c.cfg.Space), c.cfg.Space)
		bgIdx, bgRGB := c.pal.nearest(toWorking(m.bg, c.cfg.Space), c.cfg.Space)
		cell.FG, cell.BG = RawColor(fgIdx), RawColor(bgIdx)
		cell.DisplayFG = [3]uint8{fgRGB.R, fgRGB.G, fgRGB.B}
		cell.DisplayBG = [3]uint8{bgRGB.R, bgRGB.G, bgRGB.B}
	default:
		cell.FG = PackRGB(m.fg.R, m.fg.G, m.fg.B)
		cell.BG = PackRGB(m.bg.R, m.bg.G, m.bg.B)
	}

	if c.cfg.ForegroundOnly {
		cell.BG = c.cfg.BG
	}
	return cell
}

func luminanceOf(c color.RGBA) int {
	return int(c.R)*299/1000 + int(c.G)*587/1000 + int(c.B)*114/1000
}

func lowColor(m Mode) bool {
	switch m {
	case ModeIndexed16_8, ModeIndexed8, ModeFGBG, ModeFGBGBGFG:
		return true
	}
	return false
}

// preprocessLowColor boosts saturation and clamps gamut so a small palette
// covers the source distribution better, per spec §4.3.1 step 2.
func preprocessLowColor(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	const boost = 1.3
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := unpremultiplyColor(src.RGBAAt(x, y))
			lum := float64(luminanceOf(c))
			r := clampByte(lum + (float64(c.R)-lum)*boost)
			g := clampByte(lum + (float64(c.G)-lum)*boost)
			bch := clampByte(lum + (float64(c.B)-lum)*boost)
			out.SetRGBA(x, y, premultiplyColor(color.RGBA{R: r, G: g, B: bch, A: c.A}))
		}
	}
	return out
}

func (c *Canvas) index(x, y int) int { return y*c.width + x }

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

func (c *Canvas) setCell(x, y int, cell Cell) {
	if c.inBounds(x, y) {
		c.cells[c.index(x, y)] = cell
	}
}

// GetCharAt returns the code point occupying cell (x, y).
func (c *Canvas) GetCharAt(x, y int) rune {
	if !c.inBounds(x, y) {
		return 0
	}
	return c.cells[c.index(x, y)].CodePoint
}

// SetCharAt writes a glyph directly, looking it up in the primary symbol
// map so wide glyphs are recognized. Returns the number of logical cells
// written (2 for a wide glyph whose right half fits on the grid, else 1).
func (c *Canvas) SetCharAt(x, y int, ch rune) int {
	if !c.inBounds(x, y) {
		return 0
	}
	g, _ := c.cfg.PrimaryMap.GetGlyph(ch)
	c.cells[c.index(x, y)].CodePoint = ch
	if g != nil && g.IsWide() && c.inBounds(x+1, y) {
		c.cells[c.index(x+1, y)] = Cell{CodePoint: rightHalfSentinel, RightHalf: true}
		return 2
	}
	return 1
}

// rightHalfSentinel marks the trailing cell of a wide glyph pair.
const rightHalfSentinel = rune(-1)

// GetColorsAt returns the display-ready (rounded RGB) foreground and
// background of cell (x, y).
func (c *Canvas) GetColorsAt(x, y int) (fg, bg [3]uint8) {
	if !c.inBounds(x, y) {
		return
	}
	cell := c.cells[c.index(x, y)]
	return cell.DisplayFG, cell.DisplayBG
}

// SetColorsAt overwrites cell (x, y)'s display RGB pair directly (the raw
// pair is left untouched; callers mixing this with palette modes are
// responsible for consistency, as in the source library).
func (c *Canvas) SetColorsAt(x, y int, fg, bg [3]uint8) {
	if !c.inBounds(x, y) {
		return
	}
	cell := &c.cells[c.index(x, y)]
	cell.DisplayFG, cell.DisplayBG = fg, bg
}

// GetRawColorsAt returns the raw (palette-index or special-marker) pair.
func (c *Canvas) GetRawColorsAt(x, y int) (fg, bg RawColor) {
	if !c.inBounds(x, y) {
		return RawDefaultFG, RawDefaultBG
	}
	cell := c.cells[c.index(x, y)]
	return cell.FG, cell.BG
}

// SetRawColorsAt overwrites cell (x, y)'s raw color pair directly.
func (c *Canvas) SetRawColorsAt(x, y int, fg, bg RawColor) {
	if !c.inBounds(x, y) {
		return
	}
	cell := &c.cells[c.index(x, y)]
	cell.FG, cell.BG = fg, bg
}

// Width and Height report the canvas's cell dimensions.
func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }
