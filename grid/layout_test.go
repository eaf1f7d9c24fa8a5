package grid

import (
	"strings"
	"testing"

	"github.com/chafago/chafa/canvas"
	"github.com/chafago/chafa/symbol"
)

func smallCanvas(t *testing.T, w, h int, fill uint8) *canvas.Canvas {
	t.Helper()
	sm := symbol.New()
	if err := sm.ApplySelectors("all"); err != nil {
		t.Fatalf("ApplySelectors: %v", err)
	}
	cfg := canvas.NewConfig()
	cfg.Width, cfg.Height = w, h
	cfg.PrimaryMap = sm
	cfg.Build()

	c := canvas.New(cfg)
	pix := make([]byte, w*8*h*8*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = fill, fill, fill, 255
	}
	c.DrawAllPixels(canvas.PixelRGBA8, pix, w*8, h*8, w*8*4)
	return c
}

func TestAutoColsPrefersWiderThanTallGrids(t *testing.T) {
	cols := AutoCols(9, 0.5)
	if cols < 3 {
		t.Fatalf("AutoCols(9, 0.5) = %d, want at least 3 (cell aspect widens the grid)", cols)
	}
}

func TestAutoColsHandlesDegenerateInputs(t *testing.T) {
	if got := AutoCols(0, 0.5); got != 0 {
		t.Fatalf("AutoCols(0, ...) = %d, want 0", got)
	}
	if got := AutoCols(1, 0.5); got != 1 {
		t.Fatalf("AutoCols(1, ...) = %d, want 1", got)
	}
}

func TestRenderPacksItemsIntoRequestedColumns(t *testing.T) {
	items := []Item{
		{Canvas: smallCanvas(t, 2, 2, 0), Label: "a.png"},
		{Canvas: smallCanvas(t, 2, 2, 255), Label: "b.png"},
		{Canvas: smallCanvas(t, 2, 2, 128), Label: "c.png"},
	}
	layout := &Layout{Cols: 2, ShowLabels: true}
	out := layout.Render(items, canvas.ANSIWriter{})

	lines := strings.Split(string(out), "\n")
	// 2 rows of canvas content (2-cell-tall canvases) + 1 label line for the
	// first grid row of 2 images, then a blank separator, then the same for
	// the trailing single-image row.
	if len(lines) < 6 {
		t.Fatalf("expected at least 6 lines of output, got %d:\n%s", len(lines), out)
	}
}

func TestRenderPadsShorterCanvasesInSameRow(t *testing.T) {
	items := []Item{
		{Canvas: smallCanvas(t, 2, 3, 0)},
		{Canvas: smallCanvas(t, 2, 1, 255)},
	}
	layout := &Layout{Cols: 2}
	out := layout.Render(items, canvas.ANSIWriter{})
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rendered rows (tallest canvas height), got %d:\n%q", len(lines), lines)
	}
}
