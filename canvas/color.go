package canvas

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RawColor is a cell's color in whatever representation its CanvasMode
// allows: a 24-bit RGB triple, an 8-bit palette index, or one of the two
// reserved markers.
type RawColor int32

const (
	// RawDefaultFG and RawDefaultBG select the terminal's own idea of the
	// foreground/background color rather than an explicit RGB or index.
	RawDefaultFG RawColor = -1
	RawDefaultBG RawColor = -2
	RawTransparent RawColor = -3
)

// PackRGB folds an 24-bit truecolor triple into a RawColor in [0, 1<<24).
func PackRGB(r, g, b uint8) RawColor {
	return RawColor(int32(r)<<16 | int32(g)<<8 | int32(b))
}

// UnpackRGB reverses PackRGB. Only valid when c >= 0.
func (c RawColor) UnpackRGB() (r, g, b uint8) {
	v := int32(c)
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// IsSpecial reports whether c is one of the three reserved markers rather
// than a packed RGB/index value.
func (c RawColor) IsSpecial() bool { return c < 0 }

// ColorSpace selects the perceptual space distance comparisons are made in.
type ColorSpace int

const (
	ColorSpaceSRGB ColorSpace = iota
	ColorSpaceDIN99D
)

// workingColor is a pre-pass pixel in the space distance comparisons use:
// linear sRGB or DIN99d, always with straight (unassociated) alpha.
type workingColor struct {
	X, Y, Z float64 // channel meaning depends on the active ColorSpace
	A       float64 // 0..1
}

// toWorking converts a straight-alpha sRGB pixel into the working space.
func toWorking(c color.RGBA, space ColorSpace) workingColor {
	a := float64(c.A) / 255
	switch space {
	case ColorSpaceDIN99D:
		cf := colorful.Color{
			R: srgbToLinear(c.R),
			G: srgbToLinear(c.G),
			B: srgbToLinear(c.B),
		}
		l, a99, b99 := din99d(cf)
		return workingColor{X: l, Y: a99, Z: b99, A: a}
	default:
		return workingColor{
			X: srgbToLinear(c.R),
			Y: srgbToLinear(c.G),
			Z: srgbToLinear(c.B),
			A: a,
		}
	}
}

// fromWorking is the inverse of toWorking, rounding back to a straight-alpha
// sRGB pixel.
func fromWorking(w workingColor, space ColorSpace) color.RGBA {
	a := uint8(clamp01(w.A) * 255)
	switch space {
	case ColorSpaceDIN99D:
		// din99dInverse hands back a colorful.Color already in sRGB-gamma
		// form (the convention colorful.Lab's constructor returns), so it
		// only needs clamping and an 8-bit scale, not another gamma pass.
		cf := din99dInverse(w.X, w.Y, w.Z)
		r := uint8(clamp01(cf.R)*255 + 0.5)
		g := uint8(clamp01(cf.G)*255 + 0.5)
		b := uint8(clamp01(cf.B)*255 + 0.5)
		return color.RGBA{R: r, G: g, B: b, A: a}
	default:
		return color.RGBA{
			R: linearToSRGB(w.X),
			G: linearToSRGB(w.Y),
			B: linearToSRGB(w.Z),
			A: a,
		}
	}
}

// distance2 returns squared Euclidean distance in the working space,
// weighted by a fixed penalty when alpha (transparency) disagrees.
func distance2(a, b workingColor) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	da := a.A - b.A
	const alphaPenalty = 4.0 // fixed weight per spec §4.3.2 step 3
	return dx*dx + dy*dy + dz*dz + alphaPenalty*da*da
}

func srgbToLinear(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) uint8 {
	v = clamp01(v)
	var c float64
	if v <= 0.0031308 {
		c = v * 12.92
	} else {
		c = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return uint8(clamp01(c)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// din99d converts a linear-light colorful.Color (itself built from linear
// channels, so colorful's own sRGB gamma must be bypassed) into DIN99d
// L99/a99/b99 by way of CIELAB, using the standard DIN99d recalibration
// constants (kE=1, kCH=1).
func din99d(linear colorful.Color) (l99, a99, b99 float64) {
	// go-colorful's Lab() assumes sRGB-gamma input, so re-gamma-encode the
	// already-linear channel before handing it to Lab — the round trip
	// cancels out and leaves a correct linear-to-Lab conversion.
	srgb := colorful.Color{
		R: linearToSRGBFloat(linear.R),
		G: linearToSRGBFloat(linear.G),
		B: linearToSRGBFloat(linear.B),
	}
	l, a, b := srgb.Lab()

	const kE, kCH = 1.0, 1.0
	l99 = 105.51 * math.Log(1+0.0158*l) / kE
	c := math.Hypot(a, b)
	g := 0.0
	if c > 0 {
		g = 100 * math.Log(1+0.045*c) / (0.045 * kCH)
	}
	h := math.Atan2(b, a) + 16.0*math.Pi/180
	a99 = g * math.Cos(h)
	b99 = g * math.Sin(h)
	return l99, a99, b99
}

func din99dInverse(l99, a99, b99 float64) colorful.Color {
	const kE, kCH = 1.0, 1.0
	l := (math.Exp(l99*kE/105.51) - 1) / 0.0158
	g := math.Hypot(a99, b99)
	h := math.Atan2(b99, a99) - 16.0*math.Pi/180
	c := (math.Exp(g*0.045*kCH/100) - 1) / 0.045
	a := c * math.Cos(h)
	b := c * math.Sin(h)
	return colorful.Lab(l, a, b)
}

func linearToSRGBFloat(v float64) float64 {
	v = clamp01(v)
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}
