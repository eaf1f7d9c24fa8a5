package canvas

import (
	"image"
	"image/color"
)

// PixelFormat names one of the memory layouts draw_all_pixels accepts, in
// ascending channel order as it appears in memory (so RGBA8 stores R at the
// lowest address of each 4-byte pixel).
type PixelFormat int

const (
	PixelRGBA8 PixelFormat = iota
	PixelBGRA8
	PixelARGB8
	PixelABGR8
	PixelRGB8
	PixelBGR8
	PixelRGBA8Premul
	PixelBGRA8Premul
	PixelARGB8Premul
	PixelABGR8Premul
)

// channelsPerPixel reports the byte stride of one pixel in this format.
func (f PixelFormat) channelsPerPixel() int {
	switch f {
	case PixelRGB8, PixelBGR8:
		return 3
	default:
		return 4
	}
}

// isPremultiplied reports whether pixels are already alpha-premultiplied.
func (f PixelFormat) isPremultiplied() bool {
	switch f {
	case PixelRGBA8Premul, PixelBGRA8Premul, PixelARGB8Premul, PixelABGR8Premul:
		return true
	default:
		return false
	}
}

// channelOrder returns the byte offsets of R, G, B and A (A is -1 when the
// format carries no alpha channel, meaning fully opaque).
func (f PixelFormat) channelOrder() (r, g, b, a int) {
	switch f {
	case PixelRGBA8, PixelRGBA8Premul:
		return 0, 1, 2, 3
	case PixelBGRA8, PixelBGRA8Premul:
		return 2, 1, 0, 3
	case PixelARGB8, PixelARGB8Premul:
		return 1, 2, 3, 0
	case PixelABGR8, PixelABGR8Premul:
		return 3, 2, 1, 0
	case PixelRGB8:
		return 0, 1, 2, -1
	case PixelBGR8:
		return 2, 1, 0, -1
	}
	return 0, 1, 2, 3
}

// decodeToRGBA reads a caller-owned pixel buffer in the given format into a
// straight-alpha (unassociated), linear-order *image.RGBA, un-premultiplying
// as necessary. This is the first step of the pre-pass: all subsequent
// resampling and matching works against one canonical in-memory layout.
func decodeToRGBA(format PixelFormat, buf []byte, width, height, rowstride int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	stride := format.channelsPerPixel()
	ri, gi, bi, ai := format.channelOrder()
	premul := format.isPremultiplied()

	for y := 0; y < height; y++ {
		rowOff := y * rowstride
		for x := 0; x < width; x++ {
			pOff := rowOff + x*stride
			if pOff+stride > len(buf) {
				continue
			}
			px := buf[pOff : pOff+stride]

			var r, g, b, a uint8
			if ai >= 0 {
				a = px[ai]
			} else {
				a = 255
			}
			r, g, b = px[ri], px[gi], px[bi]

			if premul && a != 0 && a != 255 {
				r = unpremultiplyChannel(r, a)
				g = unpremultiplyChannel(g, a)
				b = unpremultiplyChannel(b, a)
			}

			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return out
}

func unpremultiplyChannel(c, a uint8) uint8 {
	v := (uint32(c) * 255) / uint32(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
