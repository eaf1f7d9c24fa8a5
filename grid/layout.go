// Package grid packs several rendered canvases into one multi-image
// terminal layout: a row-major grid of cells, each holding one canvas and
// an optional label, auto-sized from the canvas count and cell aspect
// ratio when the caller doesn't pin a column count (spec §4.8).
package grid

import (
	"bytes"
	"math"

	"github.com/chafago/chafa/canvas"
	"github.com/chafago/chafa/internal/util"
)

// Item is one member of a grid: its rendered canvas and the label printed
// beneath it (commonly the source file's base name).
type Item struct {
	Canvas *canvas.Canvas
	Label  string
}

// Layout describes how a set of Items is packed and printed.
type Layout struct {
	Cols       int // 0 means auto-derive from len(items) and CellAspect
	CellAspect float64 // cell width/height in pixels, for auto column count; 0.5 if unset
	ShowLabels bool
	Align      util.HAlign
}

// AutoCols derives a near-square column count for n items, the same way
// chafa-go's reference tooling lays out thumbnail contact sheets: start
// from ceil(sqrt(n)) cells-wide and widen by the cell aspect ratio, since
// terminal cells are taller than they are wide, so a visually "square"
// grid of images needs more columns than rows.
func AutoCols(n int, cellAspect float64) int {
	if n <= 0 {
		return 0
	}
	if cellAspect <= 0 {
		cellAspect = 0.5
	}
	cols := int(math.Ceil(math.Sqrt(float64(n) / cellAspect)))
	if cols < 1 {
		cols = 1
	}
	if cols > n {
		cols = n
	}
	return cols
}

// Render lays items out left-to-right, top-to-bottom, printing rowHeight
// rows of canvas content per grid row (images of differing height within
// the same grid row are padded with blank cells up to the tallest), an
// optional ellipsized/aligned label line beneath each row, and a blank
// line between grid rows.
func (l *Layout) Render(items []Item, w canvas.SGRWriter) []byte {
	if len(items) == 0 {
		return nil
	}
	cols := l.Cols
	if cols <= 0 {
		cols = AutoCols(len(items), l.CellAspect)
	}

	var buf bytes.Buffer
	for start := 0; start < len(items); start += cols {
		end := start + cols
		if end > len(items) {
			end = len(items)
		}
		row := items[start:end]
		l.renderRow(&buf, row, w)
		if end < len(items) {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func (l *Layout) renderRow(buf *bytes.Buffer, row []Item, w canvas.SGRWriter) {
	rowHeight := 0
	for _, it := range row {
		if h := it.Canvas.Height(); h > rowHeight {
			rowHeight = h
		}
	}

	for y := 0; y < rowHeight; y++ {
		for i, it := range row {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if y < it.Canvas.Height() {
				buf.Write(it.Canvas.PrintRow(w, y))
			} else {
				buf.WriteString(blank(it.Canvas.Width()))
			}
		}
		buf.WriteByte('\n')
	}

	if l.ShowLabels {
		for i, it := range row {
			if i > 0 {
				buf.WriteByte(' ')
			}
			label := util.Ellipsize(it.Label, it.Canvas.Width())
			buf.WriteString(util.Pad(label, it.Canvas.Width(), l.Align))
		}
		buf.WriteByte('\n')
	}
}

func blank(width int) string {
	b := make([]byte, width)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
