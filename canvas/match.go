package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/chafago/chafa/symbol"
)

// tile is one cell's extracted source pixels, in premultiplied-alpha form
// (the pre-pass invariant), plus its ink-density ordering statistic.
type tile struct {
	px       []color.RGBA // row-major, cw*ch
	cw, ch   int
	inkLevel int // popcount band center: fraction of tile luminance above median, scaled to [0,64]
}

func extractTile(src *image.RGBA, cx, cy, cw, ch int) tile {
	t := tile{cw: cw, ch: ch, px: make([]color.RGBA, cw*ch)}
	lums := make([]int, cw*ch)
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			c := src.RGBAAt(cx*cw+x, cy*ch+y)
			t.px[y*cw+x] = c
			lums[y*cw+x] = int(c.R)*299/1000 + int(c.G)*587/1000 + int(c.B)*114/1000
		}
	}
	median := medianInt(lums)
	above := 0
	for _, l := range lums {
		if l > median {
			above++
		}
	}
	t.inkLevel = above * 64 / len(lums)
	return t
}

func medianInt(xs []int) int {
	cp := append([]int(nil), xs...)
	// Insertion sort: tiles are at most 16x16, this is never a hot loop
	// relative to the per-glyph matching work it feeds.
	for i := 1; i < len(cp); i++ {
		j := i
		for j > 0 && cp[j] < cp[j-1] {
			cp[j], cp[j-1] = cp[j-1], cp[j]
			j--
		}
	}
	return cp[len(cp)/2]
}

// matchResult is one candidate glyph's evaluated fit against a tile.
type matchResult struct {
	glyph    *symbol.Glyph
	fg, bg   color.RGBA
	err      float64
	hamming  int
	inverted bool // FGBG_BGFG only: true when bg reconstructs better as ink
}

// extractColors splits the tile by g's coverage into inked/uninked
// partitions and returns their representative colors per the config's
// ColorExtractor. Operates directly on premultiplied samples: summing
// premultiplied channels and dividing by summed alpha is exactly an
// alpha-weighted mean, so AVERAGE falls out without an explicit weight
// loop; MEDIAN un-premultiplies first since a per-channel median of
// premultiplied samples is not alpha-weighted in any useful sense.
func extractColors(t tile, cover symbol.Cover, wide *symbol.WideCover, extractor ColorExtractor) (fg, bg color.RGBA) {
	bit := func(x, y int) bool {
		if wide != nil {
			return wide.Bit(x, y)
		}
		return cover.Bit(x%8, y%8)
	}

	switch extractor {
	case ExtractorMedian:
		return medianPartition(t, bit)
	default:
		return averagePartition(t, bit)
	}
}

func averagePartition(t tile, inked func(x, y int) bool) (fg, bg color.RGBA) {
	var fr, fgSum, fb, fa uint64
	var br, bgSum, bb, ba uint64
	var nf, nb uint64
	for y := 0; y < t.ch; y++ {
		for x := 0; x < t.cw; x++ {
			c := t.px[y*t.cw+x]
			if inked(x, y) {
				fr += uint64(c.R)
				fgSum += uint64(c.G)
				fb += uint64(c.B)
				fa += uint64(c.A)
				nf++
			} else {
				br += uint64(c.R)
				bgSum += uint64(c.G)
				bb += uint64(c.B)
				ba += uint64(c.A)
				nb++
			}
		}
	}
	fg = avgPremul(fr, fgSum, fb, fa, nf)
	bg = avgPremul(br, bgSum, bb, ba, nb)
	return fg, bg
}

func avgPremul(r, g, b, a, n uint64) color.RGBA {
	if n == 0 {
		return color.RGBA{}
	}
	if a == 0 {
		return color.RGBA{A: 0}
	}
	return color.RGBA{
		R: uint8(r * 255 / a),
		G: uint8(g * 255 / a),
		B: uint8(b * 255 / a),
		A: uint8(a / n),
	}
}

func medianPartition(t tile, inked func(x, y int) bool) (fg, bg color.RGBA) {
	var fR, fG, fB []int
	var bR, bG, bB []int
	for y := 0; y < t.ch; y++ {
		for x := 0; x < t.cw; x++ {
			c := unpremultiplyColor(t.px[y*t.cw+x])
			if inked(x, y) {
				fR = append(fR, int(c.R))
				fG = append(fG, int(c.G))
				fB = append(fB, int(c.B))
			} else {
				bR = append(bR, int(c.R))
				bG = append(bG, int(c.G))
				bB = append(bB, int(c.B))
			}
		}
	}
	fg = medianColor(fR, fG, fB)
	bg = medianColor(bR, bG, bB)
	return fg, bg
}

func medianColor(r, g, b []int) color.RGBA {
	if len(r) == 0 {
		return color.RGBA{}
	}
	return color.RGBA{R: uint8(medianInt(r)), G: uint8(medianInt(g)), B: uint8(medianInt(b)), A: 255}
}

// evalCandidate scores one glyph against the tile.
//
// FGBG and FGBG_BGFG never average colors out of the tile: the terminal
// only has its two resolved default colors to paint with (no SGR is even
// emitted for a plain FGBG cell), so the glyph is chosen the way classic
// ASCII-art renderers choose one — by how closely the glyph's own ink
// density matches the tile's mean luminance, not by per-pixel color
// reconstruction error. FGBG_BGFG additionally considers painting the
// glyph's ink as background-color and its background as foreground-color
// (the complement density, 1 - density) and keeps whichever orientation's
// density is closer to the tile's luminance. That inverted orientation is
// only considered when ForegroundOnly is off, since it paints with the
// background color.
func evalCandidate(t tile, g *symbol.Glyph, cfg *Config, tileCover symbol.Cover) matchResult {
	var wide *symbol.WideCover
	if g.IsWide() {
		wc := g.WideCover
		wide = &wc
	}

	if cfg.Mode.isFGBGOnly() {
		return evalDensityMatch(t, g, cfg, tileCover)
	}

	fg, bg := extractColors(t, g.Cover, wide, cfg.Extractor)
	return evalFixedColors(t, g, wide, cfg.Space, fg, bg, tileCover)
}

// evalDensityMatch implements the FGBG/FGBG_BGFG branch described above.
func evalDensityMatch(t tile, g *symbol.Glyph, cfg *Config, tileCover symbol.Cover) matchResult {
	fgFixed := color.RGBA{R: cfg.DefaultFGRGB[0], G: cfg.DefaultFGRGB[1], B: cfg.DefaultFGRGB[2], A: 255}
	bgFixed := color.RGBA{R: cfg.DefaultBGRGB[0], G: cfg.DefaultBGRGB[1], B: cfg.DefaultBGRGB[2], A: 255}

	cells := 64.0
	if g.IsWide() {
		cells = 128.0
	}
	density := float64(popcountOf(g)) / cells
	target := tileMeanLuminance(t)

	hamming := g.Cover.HammingDistance(tileCover)
	normalScore := math.Abs(density - target)
	invertedScore := math.Abs((1 - density) - target)

	if cfg.Mode == ModeFGBGBGFG && !cfg.ForegroundOnly && invertedScore < normalScore {
		return matchResult{glyph: g, fg: bgFixed, bg: fgFixed, err: invertedScore, hamming: hamming, inverted: true}
	}
	return matchResult{glyph: g, fg: fgFixed, bg: bgFixed, err: normalScore, hamming: hamming}
}

// tileMeanLuminance returns the tile's average perceptual luminance,
// scaled to [0, 1].
func tileMeanLuminance(t tile) float64 {
	var sum float64
	for _, p := range t.px {
		u := unpremultiplyColor(p)
		sum += float64(luminanceOf(u))
	}
	return sum / float64(len(t.px)) / 255
}

func evalFixedColors(t tile, g *symbol.Glyph, wide *symbol.WideCover, space ColorSpace, fg, bg color.RGBA, tileCover symbol.Cover) matchResult {
	var total float64
	for y := 0; y < t.ch; y++ {
		for x := 0; x < t.cw; x++ {
			var inked bool
			if wide != nil {
				inked = wide.Bit(x, y)
			} else {
				inked = g.Cover.Bit(x % 8, y % 8)
			}
			recon := bg
			if inked {
				recon = fg
			}
			src := unpremultiplyColor(t.px[y*t.cw+x])
			total += distance2(toWorking(src, space), toWorking(recon, space))
		}
	}

	hamming := g.Cover.HammingDistance(tileCover)
	return matchResult{glyph: g, fg: fg, bg: bg, err: total, hamming: hamming}
}

// bestMatch scans the compiled symbol map (pruned by workFactor) and
// returns the lowest-error candidate, breaking ties per spec §4.3.2 step 5.
func bestMatch(t tile, compiled []*symbol.Glyph, cfg *Config) (matchResult, bool) {
	if len(compiled) == 0 {
		return matchResult{}, false
	}
	tileCover := quantizeTileCover(t)
	candidates := pruneCandidates(compiled, t.inkLevel, cfg.WorkFactor)

	var best matchResult
	found := false
	for _, g := range candidates {
		r := evalCandidate(t, g, cfg, tileCover)
		if !found || better(r, best) {
			best = r
			found = true
		}
	}
	return best, found
}

// better reports whether a should replace b as the current best match.
func better(a, b matchResult) bool {
	if a.err != b.err {
		return a.err < b.err
	}
	if a.hamming != b.hamming {
		return a.hamming < b.hamming
	}
	return a.glyph.CodePoint < b.glyph.CodePoint
}

// quantizeTileCover converts a tile into its own 8x8 coverage mask by
// thresholding luminance at the tile median, for Hamming tie-breaking.
func quantizeTileCover(t tile) symbol.Cover {
	var c symbol.Cover
	lums := make([]int, len(t.px))
	for i, p := range t.px {
		u := unpremultiplyColor(p)
		lums[i] = int(u.R)*299/1000 + int(u.G)*587/1000 + int(u.B)*114/1000
	}
	median := medianInt(lums)
	for y := 0; y < t.ch && y < 8; y++ {
		for x := 0; x < t.cw && x < 8; x++ {
			if lums[y*t.cw+x] > median {
				c = c.WithBit(x, y, true)
			}
		}
	}
	return c
}

// pruneCandidates narrows the compiled, popcount-sorted glyph list to a
// band centered on the tile's own ink density, widening as workFactor
// grows; at workFactor >= 1.0 every glyph is evaluated.
func pruneCandidates(compiled []*symbol.Glyph, inkLevel int, workFactor float64) []*symbol.Glyph {
	if workFactor >= 1.0 || len(compiled) <= 8 {
		return compiled
	}
	if workFactor < 0 {
		workFactor = 0
	}
	// Locate the insertion point for inkLevel in the popcount-sorted list.
	lo, hi := 0, len(compiled)
	for lo < hi {
		mid := (lo + hi) / 2
		if popcountOf(compiled[mid]) < inkLevel {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	center := lo
	band := int(float64(len(compiled))*workFactor) + 4
	start := center - band/2
	end := center + band/2
	if start < 0 {
		start = 0
	}
	if end > len(compiled) {
		end = len(compiled)
	}
	if start >= end {
		return compiled
	}
	return compiled[start:end]
}

// popcountOf returns the candidate's ink pixel count (wide glyphs counted
// over their full 16x8 cover), used by pruneCandidates' binary search.
func popcountOf(g *symbol.Glyph) int {
	if g.IsWide() {
		return g.WideCover.Popcount()
	}
	return g.Cover.Popcount()
}
