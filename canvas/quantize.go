package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/soniakeys/quant/median"
)

// palette holds the fixed RGB set a Canvas quantizes into for INDEXED_*
// modes; entries below base are reserved (e.g. INDEXED_240's 0..15 ANSI
// slots) and never produced by derivePalette.
type palette struct {
	entries []color.RGBA
	base    int
}

// derivePalette builds the working palette for an INDEXED_* mode by median-
// cut quantizing the whole resampled frame once, up front — the same
// algorithm and library the teacher uses per sixel frame in encodeSixel,
// here run once per canvas instead of once per output band.
func derivePalette(img image.Image, mode Mode) *palette {
	size := mode.paletteSize()
	base := mode.paletteBase()
	usable := size - base
	if usable < 2 {
		usable = 2
	}

	q := median.Quantizer(usable)
	paletted := q.Paletted(img)

	p := &palette{base: base}
	for _, c := range paletted.Palette {
		r, g, b, _ := c.RGBA()
		p.entries = append(p.entries, color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255})
	}
	return p
}

// nearest returns the palette index (including base offset) and rounded
// RGB closest to target in the given color space.
func (p *palette) nearest(target workingColor, space ColorSpace) (index int, rgb color.RGBA) {
	best := -1
	bestDist := math.MaxFloat64
	for i, c := range p.entries {
		d := distance2(toWorking(c, space), target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return p.base, color.RGBA{A: 255}
	}
	return p.base + best, p.entries[best]
}
