package canvas

import "github.com/chafago/chafa/internal/util"

// ditherState holds the per-canvas working state for whichever dither mode
// is active. Ordered and noise modes are stateless lookups; diffusion
// carries an accumulated-error buffer across cells.
type ditherState struct {
	mode      DitherMode
	grain     [][]int // Bayer matrix, ORDERED only
	intensity float64

	// errBuf holds the pending Floyd-Steinberg correction for not-yet-
	// matched cell-pixels, indexed [y][x] in working-space channel units.
	errBuf [][][3]float64
	width  int
	height int
}

func newDitherState(cfg *Config, pixelW, pixelH int) *ditherState {
	d := &ditherState{mode: cfg.Dither, intensity: cfg.DitherIntensity}
	switch cfg.Dither {
	case DitherOrdered:
		d.grain = util.BayerMatrix(cfg.DitherGrainSize)
	case DitherDiffusion:
		d.width, d.height = pixelW, pixelH
		d.errBuf = make([][][3]float64, pixelH)
		for y := range d.errBuf {
			d.errBuf[y] = make([][3]float64, pixelW)
		}
	}
	return d
}

// orderedOffset returns the signed per-channel bias (in working-space
// units, roughly [-0.5, 0.5] scaled by intensity) ORDERED dithering adds
// to pixel (x, y) before matching.
func (d *ditherState) orderedOffset(x, y int) float64 {
	n := len(d.grain)
	if n == 0 {
		return 0
	}
	rank := d.grain[y%n][x%n]
	span := n * n
	return (float64(rank)/float64(span) - 0.5) * d.intensity * 0.1
}

// noiseOffset reads the precomputed blue-noise texture (computed once per
// process, per spec §4.3.1 step 4) for pixel (x,y) and channel ch.
func (d *ditherState) noiseOffset(x, y, ch int) float64 {
	return (blueNoise64[(y%64)*64+(x%64)][ch] - 0.5) * d.intensity * 0.1
}

// pendingError returns the accumulated diffusion correction for pixel
// (x,y), or the zero vector outside DIFFUSION mode or out of bounds.
func (d *ditherState) pendingError(x, y int) [3]float64 {
	if d.mode != DitherDiffusion || y < 0 || y >= d.height || x < 0 || x >= d.width {
		return [3]float64{}
	}
	return d.errBuf[y][x]
}

// diffuse distributes residual (source - reconstruction, per channel) from
// pixel (x,y) into its not-yet-matched Floyd-Steinberg neighbors. Scan
// order is strictly left-to-right, top-to-bottom (no serpentine), matching
// the spec's explicit, deliberate simplification.
func (d *ditherState) diffuse(x, y int, residual [3]float64) {
	if d.mode != DitherDiffusion {
		return
	}
	d.add(x+1, y, residual, 7.0/16)
	d.add(x-1, y+1, residual, 3.0/16)
	d.add(x, y+1, residual, 5.0/16)
	d.add(x+1, y+1, residual, 1.0/16)
}

func (d *ditherState) add(x, y int, residual [3]float64, weight float64) {
	if y < 0 || y >= d.height || x < 0 || x >= d.width {
		return
	}
	for ch := 0; ch < 3; ch++ {
		d.errBuf[y][x][ch] += residual[ch] * weight
	}
}

// blueNoise64 is a 64x64x3 deterministic pseudo-blue-noise texture,
// generated once at package init from a Bayer-derived offset pattern (no
// random source is involved) — the spec requires only that it be precomputed once per
// process and scaled by intensity/grain, not that it match any reference
// generator bit-for-bit.
var blueNoise64 = generateBlueNoise()

func generateBlueNoise() [][3]float64 {
	tex := make([][3]float64, 64*64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			base := util.BayerRank(x, y)
			for ch := 0; ch < 3; ch++ {
				// Offset each channel's phase so the three channels don't
				// share identical noise, without needing real randomness.
				shifted := util.BayerRank((x+ch*3)%8, (y+ch*5)%8)
				tex[y*64+x][ch] = float64(base+shifted) / 128.0
			}
		}
	}
	return tex
}
