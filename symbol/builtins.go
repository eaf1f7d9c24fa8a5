package symbol

import (
	"math"

	"github.com/chafago/chafa/internal/util"
	"github.com/mattn/go-runewidth"
)

// widthTag classifies cp the same way the canvas matching engine must treat
// it when laying out cells: exactly one of NARROW, WIDE or AMBIGUOUS.
func widthTag(cp rune) Tag {
	if runewidth.IsAmbiguousWidth(cp) {
		return TagAmbiguous
	}
	if runewidth.RuneWidth(cp) >= 2 {
		return TagWide
	}
	return TagNarrow
}

// rect inks pixels x in [x0,x1), y in [y0,y1) of an otherwise blank Cover.
func rect(x0, x1, y0, y1 int) Cover {
	var c Cover
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c = c.WithBit(x, y, true)
		}
	}
	return c
}

// quadrant builds one of the 16 quadrant-block glyphs from the four 4x4
// corners of the cell.
func quadrant(tl, tr, bl, br bool) Cover {
	var c Cover
	if tl {
		c |= rect(0, 4, 0, 4)
	}
	if tr {
		c |= rect(4, 8, 0, 4)
	}
	if bl {
		c |= rect(0, 4, 4, 8)
	}
	if br {
		c |= rect(4, 8, 4, 8)
	}
	return c
}

// shade inks the density/64 pixels with the lowest Bayer rank, producing an
// evenly-spread stipple pattern for a given ink density out of 64.
func shade(density int) Cover {
	var c Cover
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if util.BayerRank(x, y) < density {
				c = c.WithBit(x, y, true)
			}
		}
	}
	return c
}

func hline(y, x0, x1 int) Cover { return rect(x0, x1, y, y+1) }
func vline(x, y0, y1 int) Cover { return rect(x, x+1, y0, y1) }

// diskCover inks pixels within radius of the cell center (3.5, 3.5), used
// for the round geometric glyphs. When innerRadius > 0 only the ring
// between the two radii is inked (a hollow circle).
func diskCover(radius, innerRadius float64) Cover {
	var c Cover
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			dx, dy := float64(x)-3.5, float64(y)-3.5
			d := math.Hypot(dx, dy)
			if d <= radius && d >= innerRadius {
				c = c.WithBit(x, y, true)
			}
		}
	}
	return c
}

func triangleUpCover() Cover {
	var c Cover
	for y := 0; y < 8; y++ {
		halfWidth := float64(y) * (4.0 / 7.0)
		x0 := int(3.5 - halfWidth + 0.5)
		x1 := int(3.5+halfWidth+0.5) + 1
		c |= rect(x0, x1, y, y+1)
	}
	return c
}

func diamondCover() Cover {
	var c Cover
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if math.Abs(float64(x)-3.5)+math.Abs(float64(y)-3.5) <= 4.3 {
				c = c.WithBit(x, y, true)
			}
		}
	}
	return c
}

// brailleCover converts an 8-dot Unicode braille pattern byte (bit i ==
// dot i+1) into the 8x8 cover of its 2-column x 4-row dot grid.
func brailleCover(pattern byte) Cover {
	dotCell := [8][2]int{
		{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {0, 3}, {1, 3},
	}
	var c Cover
	for dot := 0; dot < 8; dot++ {
		if pattern&(1<<uint(dot)) == 0 {
			continue
		}
		col, row := dotCell[dot][0], dotCell[dot][1]
		c |= rect(col*4, col*4+4, row*2, row*2+2)
	}
	return c
}

// sextantCover converts a 6-dot legacy-computing sextant pattern (bit order
// TL, TR, ML, MR, BL, BR) into its 8x8 cover, splitting the cell into a
// 2-column x 3-row dot grid (row heights 3, 2, 3).
func sextantCover(pattern byte) Cover {
	rows := [3][2]int{{0, 3}, {3, 5}, {5, 8}}
	cellIdx := [6][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}, {1, 2}}
	var c Cover
	for dot := 0; dot < 6; dot++ {
		if pattern&(1<<uint(dot)) == 0 {
			continue
		}
		col, row := cellIdx[dot][0], cellIdx[dot][1]
		y0, y1 := rows[row][0], rows[row][1]
		c |= rect(col*4, col*4+4, y0, y1)
	}
	return c
}

// builtinGlyphs returns the default alphabet: ASCII density ramp, the full
// Unicode block-elements range, box-drawing borders, a small set of
// geometric shapes, all 256 braille dot patterns, and an approximate
// sextant set. Coverage is derived geometrically from each code point's
// defined shape rather than traced from a reference bitmap; bitmap-exact
// parity with any prior implementation is explicitly out of scope.
func builtinGlyphs() []*Glyph {
	var gs []*Glyph
	add := func(cp rune, cover Cover, tags Tag) {
		gs = append(gs, &Glyph{CodePoint: cp, Cover: cover, Tags: tags | widthTag(cp)})
	}

	// ASCII density ramp.
	ramp := []struct {
		ch      rune
		density int
	}{
		{' ', 0}, {'.', 6}, {':', 12}, {'-', 18}, {'=', 26},
		{'+', 34}, {'*', 42}, {'#', 50}, {'%', 58}, {'@', 64},
	}
	for _, r := range ramp {
		tags := TagASCII
		if r.ch == ' ' {
			tags = TagSpace
		} else if r.density >= 64 {
			tags |= TagSolid
		} else {
			tags |= TagStipple
		}
		add(r.ch, shade(r.density), tags)
	}
	// A handful of alnum glyphs beyond the density ramp, for ASCII-only
	// symbol selections — coverage approximated by density alone, which
	// is all the matching engine's popcount pre-filter looks at.
	for i, ch := range []rune("0123456789") {
		add(ch, shade(20+i*4), TagASCII|TagDigit)
	}
	for i, ch := range []rune("abcdefghijklmnopqrstuvwxyz") {
		add(ch, shade(15+(i%10)*5), TagASCII|TagAlpha)
	}

	// Block elements U+2580-U+259F.
	add(0x2580, rect(0, 8, 0, 4), TagBlock|TagHHalf)
	eighthsLower := []rune{0x2581, 0x2582, 0x2583, 0x2584, 0x2585, 0x2586, 0x2587, 0x2588}
	for i, cp := range eighthsLower {
		fromY := 8 - (i + 1)
		tags := TagBlock
		if i == 3 {
			tags |= TagHHalf
		}
		if i == 7 {
			tags |= TagSolid
		}
		add(cp, rect(0, 8, fromY, 8), tags)
	}
	eighthsLeft := []rune{0x2589, 0x258A, 0x258B, 0x258C, 0x258D, 0x258E, 0x258F}
	for i, cp := range eighthsLeft {
		toX := 8 - i
		tags := TagBlock
		if i == 3 {
			tags |= TagVHalf
		}
		add(cp, rect(0, toX, 0, 8), tags)
	}
	add(0x2590, rect(4, 8, 0, 8), TagBlock|TagVHalf)
	add(0x2591, shade(16), TagStipple)
	add(0x2592, shade(32), TagStipple)
	add(0x2593, shade(48), TagStipple)
	add(0x2594, rect(0, 8, 0, 1), TagBlock)
	add(0x2595, rect(7, 8, 0, 8), TagBlock)

	quads := []struct {
		cp                 rune
		tl, tr, bl, br     bool
	}{
		{0x2596, false, false, true, false},
		{0x2597, false, false, false, true},
		{0x2598, true, false, false, false},
		{0x2599, true, false, true, true},
		{0x259A, true, false, false, true},
		{0x259B, true, true, true, false},
		{0x259C, true, true, false, true},
		{0x259D, false, true, false, false},
		{0x259E, false, true, true, false},
		{0x259F, false, true, true, true},
	}
	for _, q := range quads {
		add(q.cp, quadrant(q.tl, q.tr, q.bl, q.br), TagQuad)
	}

	// Box-drawing borders (light set).
	mid := 3
	borders := []struct {
		cp    rune
		cover Cover
	}{
		{0x2500, hline(mid, 0, 8)},
		{0x2502, vline(mid, 0, 8)},
		{0x250C, hline(mid, mid, 8) | vline(mid, mid, 8)},
		{0x2510, hline(mid, 0, mid+2) | vline(mid, mid, 8)},
		{0x2514, hline(mid, mid, 8) | vline(mid, 0, mid+2)},
		{0x2518, hline(mid, 0, mid+2) | vline(mid, 0, mid+2)},
		{0x251C, vline(mid, 0, 8) | hline(mid, mid, 8)},
		{0x2524, vline(mid, 0, 8) | hline(mid, 0, mid+2)},
		{0x252C, hline(mid, 0, 8) | vline(mid, mid, 8)},
		{0x2534, hline(mid, 0, 8) | vline(mid, 0, mid+2)},
		{0x253C, hline(mid, 0, 8) | vline(mid, 0, 8)},
	}
	for _, b := range borders {
		add(b.cp, b.cover, TagBorder)
	}

	// Geometric shapes.
	add(0x25A0, rect(1, 7, 1, 7), TagGeometric)
	add(0x25CB, diskCover(3.6, 2.6), TagGeometric)
	add(0x25CF, diskCover(3.6, 0), TagGeometric)
	add(0x25B2, triangleUpCover(), TagGeometric)
	add(0x25C6, diamondCover(), TagGeometric)

	// Braille: all 256 dot patterns, U+2800-U+28FF.
	for pattern := 0; pattern < 256; pattern++ {
		add(rune(0x2800+pattern), brailleCover(byte(pattern)), TagBraille|TagDot)
	}

	// Sextants: approximate sequential assignment over U+1FB00 upward for
	// the 62 non-blank, non-full 6-dot patterns (mask 0 is already SPACE,
	// mask 63 is already the U+2588 full block).
	cp := rune(0x1FB00)
	for mask := 1; mask < 63; mask++ {
		add(cp, sextantCover(byte(mask)), TagSextant|TagLegacy)
		cp++
	}

	return gs
}
