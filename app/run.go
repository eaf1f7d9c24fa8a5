package app

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/chafago/chafa/canvas"
	"github.com/chafago/chafa/grid"
	"github.com/chafago/chafa/internal/util"
	"github.com/chafago/chafa/media"
	"github.com/chafago/chafa/term"
)

// Run is the CLI entry point: parse argv, detect the terminal, and either
// render a fixed file list, a single file, or drive --watch mode.
// Grounded on the teacher's main.go (stat the first argument, dispatch,
// report errors via fmt.Fprintf(os.Stderr, ...) + non-zero exit rather
// than panicking).
func Run(argv []string, stdout io.Writer, stderr io.Writer) int {
	opts, err := ParseArgs(argv, stderr)
	if err != nil {
		return 2 // flag.ContinueOnError already printed usage
	}

	t := term.New(os.Stdin, os.Stdout, envMap(os.Environ()))
	defer t.Close()
	t.SyncProbe(150)

	cols, rows := opts.Cols, opts.Rows
	if cols == 0 || rows == 0 {
		if w, h, ok := t.GetSizeCells(); ok {
			if cols == 0 {
				cols = w
			}
			if rows == 0 {
				rows = h
			}
		} else {
			if cols == 0 {
				cols = 80
			}
			if rows == 0 {
				rows = 24
			}
		}
	}

	defaultFG, defaultBG, ok := t.DefaultColors()
	if !ok {
		defaultFG = [3]uint8{255, 255, 255}
		defaultBG = [3]uint8{0, 0, 0}
	}

	if opts.Watch != "" {
		return runWatch(t, opts, cols, rows, defaultFG, defaultBG, stdout, stderr)
	}
	if len(opts.Paths) == 0 {
		fmt.Fprintln(stderr, "error: no input files given (see -watch to render a directory live)")
		return 1
	}
	return runFixed(t, opts, cols, rows, defaultFG, defaultBG, stdout, stderr)
}

// runFixed renders opts.Paths through a bounded MediaPipeline into one
// canvas per image, then lays the results out with grid.Layout.
func runFixed(t *term.Term, opts *Options, cols, rows int, defaultFG, defaultBG [3]uint8, stdout, stderr io.Writer) int {
	cellCols := opts.GridCols
	perImageCols, perImageRows := gridCellBudget(cols, rows, len(opts.Paths), cellCols)

	queue := media.NewPathQueue(opts.Paths)
	pipeline := media.NewMediaPipeline(queue, max1(opts.Threads))

	var items []grid.Item
	for {
		res, ok := pipeline.Pop()
		if !ok {
			break
		}
		if res.Err != nil {
			fmt.Fprintf(stderr, "warning: %s: %v\n", res.Path, res.Err)
			continue
		}
		cfg, err := buildCanvasConfig(opts, perImageCols, perImageRows, defaultFG, defaultBG)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		c := canvas.New(cfg)
		pix, w, h, stride := media.ToRGBA(res.Image)
		if opts.Rotate%4 != 0 {
			rotated := util.Rotate90(&image.RGBA{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, w, h)}, opts.Rotate)
			pix, w, h, stride = rotated.Pix, rotated.Rect.Dx(), rotated.Rect.Dy(), rotated.Stride
		}
		c.DrawAllPixels(canvas.PixelRGBA8, pix, w, h, stride)
		items = append(items, grid.Item{Canvas: c, Label: res.Path})
	}

	layout := &grid.Layout{Cols: opts.GridCols, ShowLabels: opts.ShowLabels}
	out := layout.Render(items, t.Info)
	stdout.Write(out)
	return 0
}

// gridCellBudget splits the terminal's (cols, rows) budget evenly across
// however many columns the grid will use, so a multi-image render fits in
// one screen rather than each image claiming the full terminal size.
func gridCellBudget(cols, rows, n, gridCols int) (perW, perH int) {
	if n <= 1 {
		return cols, rows
	}
	if gridCols <= 0 {
		gridCols = grid.AutoCols(n, 0.5)
	}
	if gridCols < 1 {
		gridCols = 1
	}
	perW = cols / gridCols
	if perW < 1 {
		perW = 1
	}
	gridRows := (n + gridCols - 1) / gridCols
	perH = rows / gridRows
	if perH < 1 {
		perH = 1
	}
	return perW, perH
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return m
}
