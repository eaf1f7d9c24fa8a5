package util

import (
	"image"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// HAlign is a horizontal alignment choice for padded text, used by the
// grid package's label rendering.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// DisplayWidth returns s's width in terminal cells, summing each
// grapheme cluster's width rather than each rune's — a multi-rune emoji
// or combining-mark sequence occupies the width of its base character,
// not one cell per code point. Grounded on the same "count display cells,
// not runes" discipline as the teacher's TabBar.tabWidthAt, generalized
// from a plain rune count to grapheme-cluster-aware width via uniseg.
func DisplayWidth(s string) int {
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Runes()
		w := runewidth.RuneWidth(cluster[0])
		if w == 0 && len(cluster) > 0 {
			w = 1 // control/format characters still occupy a column when isolated
		}
		width += w
	}
	return width
}

// Ellipsize truncates s to fit within maxWidth display cells, appending a
// single "…" when truncation occurs, breaking only on grapheme cluster
// boundaries so a truncated label never splits a combining sequence.
// Strings already within maxWidth are returned unchanged.
func Ellipsize(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if DisplayWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	budget := maxWidth - 1 // reserve one cell for the ellipsis
	var b strings.Builder
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Runes()
		w := runewidth.RuneWidth(cluster[0])
		if width+w > budget {
			break
		}
		b.WriteString(g.Str())
		width += w
	}
	b.WriteRune('…')
	return b.String()
}

// Pad returns s padded with spaces to exactly width display cells per
// align, left-justifying (and silently leaving an overlong s alone, since
// callers are expected to Ellipsize first) by default.
func Pad(s string, width int, align HAlign) string {
	w := DisplayWidth(s)
	if w >= width {
		return s
	}
	gap := width - w
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		right := gap - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// Rotate90 returns a copy of img rotated clockwise in 90-degree steps
// (quarterTurns taken mod 4; 0 returns an unrotated copy), for the app
// package's --rotate flag before the image reaches
// canvas.Canvas.DrawAllPixels.
// Grounded on the teacher's resizeImage in ui/imageview.go: same
// destination-buffer-walks-source-by-index shape, generalized from a
// scale transform to a coordinate-swapping rotation.
func Rotate90(img *image.RGBA, quarterTurns int) *image.RGBA {
	turns := ((quarterTurns % 4) + 4) % 4
	if turns == 0 {
		out := image.NewRGBA(img.Bounds())
		copy(out.Pix, img.Pix)
		return out
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var out *image.RGBA
	if turns == 2 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcOff := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			px := img.Pix[srcOff : srcOff+4 : srcOff+4]
			var dx, dy int
			switch turns {
			case 1: // 90 clockwise
				dx, dy = h-1-y, x
			case 2: // 180
				dx, dy = w-1-x, h-1-y
			case 3: // 270 clockwise (90 counterclockwise)
				dx, dy = y, w-1-x
			}
			dstOff := out.PixOffset(dx, dy)
			copy(out.Pix[dstOff:dstOff+4], px)
		}
	}
	return out
}
