// Package media loads image files into the raw RGBA buffers canvas.Canvas
// consumes: a bounded ordered decode pipeline, a registry of pluggable
// format decoders, and a persisted placement-id counter for the Kitty/
// iTerm2 backends.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned by Decode for magic bytes chafa-go
// recognizes but has no registered decoder for (AVIF, HEIF, JXL, QOI, SVG,
// XWD) — no pack example imports a library for any of these.
var ErrUnsupportedFormat = errors.New("media: unsupported image format")

// Decode reads an image from r, dispatching to whichever registered
// image.Image decoder recognizes its magic bytes (spec §9's "dynamic
// dispatch... variant over back-end states plus a dispatch table"),
// grounded on the teacher's `image.Decode` call in
// `ui/imageview.go NewImageView`. Formats chafa-go recognizes but cannot
// decode return ErrUnsupportedFormat rather than the stdlib's generic
// "unknown format" error, so callers can distinguish "not an image" from
// "an image type we deliberately don't support".
func Decode(r io.Reader) (image.Image, string, error) {
	var head [16]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("media: decode: %w", err)
	}
	h := head[:n]

	if looksLikeSVG(h) {
		return nil, "svg", ErrUnsupportedFormat
	}
	if format := sniffUnsupported(h); format != "" {
		return nil, format, ErrUnsupportedFormat
	}

	full := io.MultiReader(bytes.NewReader(h), r)
	img, format, derr := image.Decode(full)
	if derr != nil {
		return nil, format, fmt.Errorf("media: decode: %w", derr)
	}
	return img, format, nil
}

func looksLikeSVG(head []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(head, "\x00\t\n\r "), []byte("<?xml")) ||
		bytes.HasPrefix(bytes.TrimLeft(head, "\x00\t\n\r "), []byte("<svg"))
}

func sniffUnsupported(head []byte) string {
	if len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")) {
		brand := string(head[8:12])
		switch brand {
		case "avif", "avis":
			return "avif"
		case "heic", "heix", "hevc", "mif1", "msf1":
			return "heif"
		}
	}
	if len(head) >= 2 && head[0] == 0xff && head[1] == 0x0a {
		return "jxl"
	}
	if len(head) >= 12 && bytes.Equal(head[4:8], []byte("JXL ")) {
		return "jxl"
	}
	if len(head) >= 4 && bytes.Equal(head[:4], []byte("qoif")) {
		return "qoi"
	}
	if len(head) >= 4 && head[0] == 0 && head[1] == 0 && head[2] == 0 && head[3] == 7 {
		return "xwd"
	}
	return ""
}

// ToRGBA converts any decoded image.Image into the straight-alpha RGBA
// buffer layout canvas.Canvas.DrawAllPixels(canvas.PixelRGBA8, ...) expects,
// returning (pixels, width, height, rowstride).
func ToRGBA(img image.Image) (pix []byte, width, height, rowstride int) {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		b := nrgba.Bounds()
		return nrgba.Pix, b.Dx(), b.Dy(), nrgba.Stride
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out.Pix, out.Rect.Dx(), out.Rect.Dy(), out.Stride
}
