package symbol

import "math/bits"

// Cover is an 8x8 glyph coverage bitmap: bit (y*8+x) is 1 iff the glyph
// inks pixel (x,y) of its cell.
type Cover uint64

// Bit reports whether pixel (x,y) is inked.
func (c Cover) Bit(x, y int) bool {
	if x < 0 || x >= 8 || y < 0 || y >= 8 {
		return false
	}
	return c&(1<<uint(y*8+x)) != 0
}

// WithBit returns c with pixel (x,y) set to value.
func (c Cover) WithBit(x, y int, value bool) Cover {
	if x < 0 || x >= 8 || y < 0 || y >= 8 {
		return c
	}
	bit := Cover(1) << uint(y*8+x)
	if value {
		return c | bit
	}
	return c &^ bit
}

// Popcount returns the number of inked pixels.
func (c Cover) Popcount() int {
	return bits.OnesCount64(uint64(c))
}

// HammingDistance returns the number of differing bits between two covers.
func (c Cover) HammingDistance(other Cover) int {
	return bits.OnesCount64(uint64(c ^ other))
}

// WideCover is the 16x8 coverage of a double-width (East Asian Wide) glyph,
// stored as its left-half and right-half 8x8 covers.
type WideCover [2]Cover

// Bit reports whether pixel (x,y) of the 16-wide cell is inked.
func (w WideCover) Bit(x, y int) bool {
	if x < 8 {
		return w[0].Bit(x, y)
	}
	return w[1].Bit(x-8, y)
}

func (w WideCover) Popcount() int {
	return w[0].Popcount() + w[1].Popcount()
}

// Glyph is one entry of the symbol alphabet: a code point, its coverage
// bitmap(s), and a bitmask of category tags.
type Glyph struct {
	CodePoint rune
	Cover     Cover     // valid always; for wide glyphs this is the left half
	WideCover WideCover // valid only when Tags&TagWide != 0
	Tags      Tag
}

// IsWide reports whether this glyph occupies two terminal cells.
func (g *Glyph) IsWide() bool { return g.Tags&TagWide != 0 }

// popcount returns the number of inked pixels used for ordering: over the
// full 16x8 cover for wide glyphs, the 8x8 cover otherwise.
func (g *Glyph) popcount() int {
	if g.IsWide() {
		return g.WideCover.Popcount()
	}
	return g.Cover.Popcount()
}
