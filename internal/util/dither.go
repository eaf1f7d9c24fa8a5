// Package util holds small process-private helpers shared across chafa-go's
// packages: ordered-dither matrices, text ellipsis, rotation, padded output.
package util

// bayer8 is the standard 8x8 ordered-dither threshold matrix. Values are
// ranks in [0,64): a pixel at (x,y) should be inked before any pixel whose
// rank is higher, producing the classic Bayer dither pattern. It is shared
// by canvas's ORDERED dither mode and by symbol's built-in shade/density
// glyph generation, so both draw from the same well-understood pattern.
var bayer8 = [8][8]int{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// Bayer8 returns the 8x8 ordered-dither threshold matrix.
func Bayer8() [8][8]int { return bayer8 }

// BayerRank returns the dither rank in [0,64) for cell-local pixel (x,y),
// wrapping for matrices smaller than 8x8 (x, y taken modulo 8).
func BayerRank(x, y int) int {
	return bayer8[((y%8)+8)%8][((x%8)+8)%8]
}

// BayerMatrix returns an n x n (n a power of two, 1 <= n <= 8) ordered-dither
// matrix derived from the 8x8 table by subsampling, used when a config
// requests a smaller dither grain size than 8.
func BayerMatrix(n int) [][]int {
	if n <= 0 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	step := 8 / n
	if step < 1 {
		step = 1
	}
	m := make([][]int, n)
	for y := 0; y < n; y++ {
		m[y] = make([]int, n)
		for x := 0; x < n; x++ {
			m[y][x] = bayer8[(y*step)%8][(x*step)%8]
		}
	}
	return m
}
