package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRecognizesPNG(t *testing.T) {
	data := encodePNG(t, 4, 3)
	img, format, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "png" {
		t.Fatalf("format = %q, want png", format)
	}
	b := img.Bounds()
	if b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds = %v, want 4x3", b)
	}
}

func TestDecodeReportsUnsupportedFormats(t *testing.T) {
	cases := map[string][]byte{
		"qoi":  append([]byte("qoif"), make([]byte, 12)...),
		"jxl":  {0xff, 0x0a, 0, 0, 0, 0, 0, 0, 0, 0},
		"heif": append(append([]byte{0, 0, 0, 24}, []byte("ftypheic")...), make([]byte, 8)...),
		"avif": append(append([]byte{0, 0, 0, 24}, []byte("ftypavif")...), make([]byte, 8)...),
		"xwd":  {0, 0, 0, 7, 0, 0, 0, 0},
		"svg":  []byte("<?xml version=\"1.0\"?><svg></svg>"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(data))
			if err != ErrUnsupportedFormat {
				t.Fatalf("Decode(%s) err = %v, want ErrUnsupportedFormat", name, err)
			}
		})
	}
}

func TestToRGBAConvertsNonRGBASource(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(0, 0, color.Gray{Y: 200})
	src.SetGray(1, 1, color.Gray{Y: 50})

	pix, w, h, stride := ToRGBA(src)
	if w != 2 || h != 2 {
		t.Fatalf("size = %dx%d, want 2x2", w, h)
	}
	if stride != 8 {
		t.Fatalf("stride = %d, want 8 (2px * 4 bytes)", stride)
	}
	if pix[0] != 200 || pix[1] != 200 || pix[2] != 200 || pix[3] != 255 {
		t.Fatalf("pixel(0,0) = %v, want opaque gray 200", pix[0:4])
	}
}
