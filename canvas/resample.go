package canvas

import (
	"image"
	"image/color"
)

// resample scales src to exactly dstW x dstH, premultiplying alpha on the
// way out (the working space for everything downstream requires
// premultiplied samples per spec §4.3.1 step 1). It chooses a separable
// box-averaging filter when shrinking and a softened (catmull-rom-like)
// cubic filter when enlarging, mirroring the teacher's resizeImage but
// replacing its nearest-neighbor sampling with filters appropriate to each
// direction, as the spec requires.
func resample(src *image.RGBA, dstW, dstH int) *image.RGBA {
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW < 1 || srcH < 1 || dstW < 1 || dstH < 1 {
		return image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	}
	if srcW == dstW && srcH == dstH {
		return premultiplyImage(src)
	}

	// Resample horizontally then vertically (separable filter).
	horiz := image.NewRGBA(image.Rect(0, 0, dstW, srcH))
	for y := 0; y < srcH; y++ {
		for x := 0; x < dstW; x++ {
			horiz.SetRGBA(x, y, resampleAxis(src, bounds, x, y, srcW, dstW, true))
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for x := 0; x < dstW; x++ {
		for y := 0; y < dstH; y++ {
			out.SetRGBA(x, y, resampleAxis(horiz, horiz.Bounds(), x, y, srcH, dstH, false))
		}
	}
	return premultiplyImage(out)
}

// resampleAxis resamples one output sample along one axis, choosing box
// averaging when shrinking (dst < src) and cubic interpolation otherwise.
func resampleAxis(img *image.RGBA, bounds image.Rectangle, x, y, srcLen, dstLen int, horizontal bool) color.RGBA {
	if dstLen < srcLen {
		return boxAverage(img, bounds, x, y, srcLen, dstLen, horizontal)
	}
	return cubicSample(img, bounds, x, y, srcLen, dstLen, horizontal)
}

func boxAverage(img *image.RGBA, bounds image.Rectangle, x, y, srcLen, dstLen int, horizontal bool) color.RGBA {
	lo := x * srcLen / dstLen
	hi := (x + 1) * srcLen / dstLen
	if hi <= lo {
		hi = lo + 1
	}
	var rs, gs, bs, as uint32
	var n uint32
	for i := lo; i < hi && i < srcLen; i++ {
		var c color.RGBA
		if horizontal {
			c = img.RGBAAt(bounds.Min.X+i, bounds.Min.Y+y)
		} else {
			c = img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+i)
		}
		rs += uint32(c.R)
		gs += uint32(c.G)
		bs += uint32(c.B)
		as += uint32(c.A)
		n++
	}
	if n == 0 {
		n = 1
	}
	return color.RGBA{R: uint8(rs / n), G: uint8(gs / n), B: uint8(bs / n), A: uint8(as / n)}
}

// cubicSample performs Catmull-Rom cubic interpolation along one axis,
// clamping channel results into [0,255].
func cubicSample(img *image.RGBA, bounds image.Rectangle, x, y, srcLen, dstLen int, horizontal bool) color.RGBA {
	srcPos := (float64(x)+0.5)*float64(srcLen)/float64(dstLen) - 0.5
	base := int(srcPos)
	frac := srcPos - float64(base)

	at := func(i int) color.RGBA {
		if i < 0 {
			i = 0
		}
		if i >= srcLen {
			i = srcLen - 1
		}
		if horizontal {
			return img.RGBAAt(bounds.Min.X+i, bounds.Min.Y+y)
		}
		return img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+i)
	}

	p0, p1, p2, p3 := at(base-1), at(base), at(base+1), at(base+2)
	r := catmullRom(float64(p0.R), float64(p1.R), float64(p2.R), float64(p3.R), frac)
	g := catmullRom(float64(p0.G), float64(p1.G), float64(p2.G), float64(p3.G), frac)
	b := catmullRom(float64(p0.B), float64(p1.B), float64(p2.B), float64(p3.B), frac)
	a := catmullRom(float64(p0.A), float64(p1.A), float64(p2.A), float64(p3.A), frac)
	return color.RGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampByte(a)}
}

func catmullRom(p0, p1, p2, p3, t float64) float64 {
	a0 := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	a1 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	a2 := -0.5*p0 + 0.5*p2
	a3 := p1
	return ((a0*t+a1)*t+a2)*t + a3
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// premultiplyImage converts a straight-alpha RGBA buffer into premultiplied
// form in place on a copy, as required before any compositing/matching math.
func premultiplyImage(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			out.SetRGBA(x, y, premultiplyColor(c))
		}
	}
	return out
}

func premultiplyColor(c color.RGBA) color.RGBA {
	if c.A == 255 {
		return c
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: c.A,
	}
}

// unpremultiplyColor is the inverse of premultiplyColor, used when reading
// a premultiplied sample back into the straight-alpha working color type.
func unpremultiplyColor(c color.RGBA) color.RGBA {
	if c.A == 0 || c.A == 255 {
		return c
	}
	return color.RGBA{
		R: unpremultiplyChannel(c.R, c.A),
		G: unpremultiplyChannel(c.G, c.A),
		B: unpremultiplyChannel(c.B, c.A),
		A: c.A,
	}
}
