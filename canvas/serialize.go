package canvas

import "bytes"

// SGRWriter is the narrow seam between a Canvas and whatever terminal
// sequence database knows how to emit SGR for the caller's terminal. The
// term package's TermInfo satisfies this by wrapping its TermSeqDb.
type SGRWriter interface {
	// TrueColor emits the SGR(s) needed to set foreground/background to
	// the given 24-bit colors.
	TrueColor(fg, bg [3]uint8) []byte
	// Indexed emits the SGR(s) needed to select the given palette indices.
	Indexed(fg, bg int) []byte
	// Default emits the SGR(s) resetting foreground/background to the
	// terminal's own defaults.
	Default() []byte
	// Inverse toggles reverse-video.
	Inverse(on bool) []byte
	// Reset emits a full SGR reset.
	Reset() []byte
	// RepeatPrevious emits the terminal's "repeat previous character N
	// times" sequence, if it has one and n clears the break-even length;
	// ok is false otherwise and the caller must fall back to literal runs.
	RepeatPrevious(n int) (seq []byte, ok bool)
}

// sgrState tracks what's currently active, so REUSE_ATTRIBUTES can skip
// redundant SGR emission the same way the teacher's processSGR tracks
// curStyle to avoid reapplying attributes that are already set — just
// running in the opposite direction (emitting instead of parsing).
type sgrState struct {
	set      bool
	fg, bg   RawColor
	inverted bool
}

func (s *sgrState) matches(fg, bg RawColor, inverted bool) bool {
	return s.set && s.fg == fg && s.bg == bg && s.inverted == inverted
}

// Print serializes the whole canvas, one row per line, terminated with a
// trailing newline after every row including the last.
func (c *Canvas) Print(w SGRWriter) []byte {
	return c.print(w, true)
}

// PrintRow serializes a single row (no leading/trailing newline), for
// callers composing several canvases side by side row-by-row, such as a
// multi-image grid.
func (c *Canvas) PrintRow(w SGRWriter, y int) []byte {
	var buf bytes.Buffer
	reuse := c.cfg.Optimizations&OptReuseAttributes != 0
	repeat := c.cfg.Optimizations&OptRepeatCells != 0
	state := &sgrState{}
	x := 0
	for x < c.width {
		cell := c.cells[c.index(x, y)]
		if cell.RightHalf {
			x++
			continue
		}
		run := 1
		if repeat {
			for x+run < c.width && c.cells[c.index(x+run, y)] == cell {
				run++
			}
		}
		c.emitCell(&buf, w, state, cell, reuse)
		const minRepeatRun = 4
		if repeat && run >= minRepeatRun {
			if seq, ok := w.RepeatPrevious(run - 1); ok {
				buf.Write(seq)
				x += run
				continue
			}
		}
		for i := 1; i < run; i++ {
			c.emitCell(&buf, w, state, cell, reuse)
		}
		x += run
	}
	if state.set {
		buf.Write(w.Reset())
	}
	return buf.Bytes()
}

// PrintRows serializes the canvas without trailing row newlines, for a
// caller that positions each row itself via absolute cursor movement.
func (c *Canvas) PrintRows(w SGRWriter) []byte {
	return c.print(w, false)
}

func (c *Canvas) print(w SGRWriter, newlineAfterRow bool) []byte {
	var buf bytes.Buffer
	reuse := c.cfg.Optimizations&OptReuseAttributes != 0
	repeat := c.cfg.Optimizations&OptRepeatCells != 0

	for y := 0; y < c.height; y++ {
		state := &sgrState{}
		x := 0
		for x < c.width {
			cell := c.cells[c.index(x, y)]
			if cell.RightHalf {
				x++
				continue
			}

			run := 1
			if repeat {
				for x+run < c.width && c.cells[c.index(x+run, y)] == cell {
					run++
				}
			}

			c.emitCell(&buf, w, state, cell, reuse)

			const minRepeatRun = 4
			if repeat && run >= minRepeatRun {
				if seq, ok := w.RepeatPrevious(run - 1); ok {
					buf.Write(seq)
					x += run
					continue
				}
			}
			// Fall back to literal repetition (run==1 takes this path too).
			for i := 1; i < run; i++ {
				c.emitCell(&buf, w, state, cell, reuse)
			}
			x += run
		}
		if state.set {
			buf.Write(w.Reset())
		}
		if newlineAfterRow {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func (c *Canvas) emitCell(buf *bytes.Buffer, w SGRWriter, state *sgrState, cell Cell, reuse bool) {
	needsChange := !reuse || !state.matches(cell.FG, cell.BG, cell.Inverted)
	if needsChange {
		c.emitSGRForCell(buf, w, cell)
		state.set = true
		state.fg, state.bg, state.inverted = cell.FG, cell.BG, cell.Inverted
	}
	if cell.CodePoint > 0 {
		buf.WriteRune(cell.CodePoint)
	}
}

func (c *Canvas) emitSGRForCell(buf *bytes.Buffer, w SGRWriter, cell Cell) {
	switch {
	case cell.FG == RawDefaultFG && cell.BG == RawDefaultBG:
		buf.Write(w.Default())
	case c.cfg.Mode.paletteSize() > 0 && !cell.FG.IsSpecial() && !cell.BG.IsSpecial():
		buf.Write(w.Indexed(int(cell.FG), int(cell.BG)))
	default:
		buf.Write(w.TrueColor(cell.DisplayFG, cell.DisplayBG))
	}
	if cell.Inverted {
		buf.Write(w.Inverse(true))
	}
}
