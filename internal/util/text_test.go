package util

import (
	"image"
	"testing"
)

func TestDisplayWidthCountsGraphemeClustersNotRunes(t *testing.T) {
	if w := DisplayWidth("abc"); w != 3 {
		t.Fatalf("DisplayWidth(abc) = %d, want 3", w)
	}
	// "e" + combining acute accent is one grapheme cluster, one display cell.
	if w := DisplayWidth("é"); w != 1 {
		t.Fatalf("DisplayWidth(e + combining acute) = %d, want 1", w)
	}
}

func TestEllipsizeLeavesShortStringsAlone(t *testing.T) {
	if got := Ellipsize("hi", 10); got != "hi" {
		t.Fatalf("Ellipsize = %q, want unchanged", got)
	}
}

func TestEllipsizeTruncatesAndAppendsEllipsis(t *testing.T) {
	got := Ellipsize("screenshot-final-v2.png", 10)
	if DisplayWidth(got) != 10 {
		t.Fatalf("Ellipsize result width = %d, want 10 (got %q)", DisplayWidth(got), got)
	}
	if got[len(got)-len("…"):] != "…" {
		t.Fatalf("Ellipsize result %q does not end in an ellipsis", got)
	}
}

func TestEllipsizeWidthOneReturnsBareEllipsis(t *testing.T) {
	if got := Ellipsize("anything", 1); got != "…" {
		t.Fatalf("Ellipsize(_, 1) = %q, want \"…\"", got)
	}
}

func TestPadAppliesAlignment(t *testing.T) {
	if got := Pad("ab", 5, AlignLeft); got != "ab   " {
		t.Fatalf("Pad left = %q", got)
	}
	if got := Pad("ab", 5, AlignRight); got != "   ab" {
		t.Fatalf("Pad right = %q", got)
	}
	if got := Pad("ab", 6, AlignCenter); got != "  ab  " {
		t.Fatalf("Pad center = %q", got)
	}
}

func TestPadLeavesOverlongStringsAlone(t *testing.T) {
	if got := Pad("toolong", 3, AlignLeft); got != "toolong" {
		t.Fatalf("Pad = %q, want unchanged", got)
	}
}

func solidRGBA(w, h int, r, g, b, a byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

func TestRotate90ZeroTurnsCopiesUnchanged(t *testing.T) {
	src := solidRGBA(3, 2, 10, 20, 30, 255)
	out := Rotate90(src, 0)
	if out.Rect.Dx() != 3 || out.Rect.Dy() != 2 {
		t.Fatalf("dims = %dx%d, want 3x2", out.Rect.Dx(), out.Rect.Dy())
	}
	if out == src {
		t.Fatal("Rotate90(0) must return a copy, not the same image")
	}
}

func TestRotate90SwapsDimensionsForQuarterTurns(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for _, turns := range []int{1, 3} {
		out := Rotate90(src, turns)
		if out.Rect.Dx() != 2 || out.Rect.Dy() != 4 {
			t.Fatalf("turns=%d dims = %dx%d, want 2x4", turns, out.Rect.Dx(), out.Rect.Dy())
		}
	}
}

func TestRotate90PreservesPixelAtKnownCorner(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	// mark the top-left pixel distinctly
	src.Set(0, 0, colorMarker{})
	out := Rotate90(src, 1) // 90 clockwise: top-left -> top-right
	off := out.PixOffset(out.Bounds().Dx()-1, 0)
	if out.Pix[off] != 200 {
		t.Fatalf("rotated top-left marker landed at R=%d, want 200", out.Pix[off])
	}
}

type colorMarker struct{}

func (colorMarker) RGBA() (r, g, b, a uint32) { return 200 << 8, 0, 0, 0xffff }
