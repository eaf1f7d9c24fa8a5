package app

import (
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chafago/chafa/canvas"
	"github.com/chafago/chafa/internal/util"
	"github.com/chafago/chafa/media"
	"github.com/chafago/chafa/term"
)

// watchDebounce matches the teacher's file-watch debounce window
// (editor/editor.go setupFileWatcher), long enough to let a slow multi-
// write save settle before the new file is read.
const watchDebounce = 150 * time.Millisecond

// runWatch renders whatever images already exist in opts.Watch, then
// blocks rendering each new one as fsnotify reports it, until SIGINT/
// SIGTERM. Each image is rendered at the terminal's full size (a grid
// layout makes no sense for a stream of one-at-a-time arrivals).
func runWatch(t *term.Term, opts *Options, cols, rows int, defaultFG, defaultBG [3]uint8, stdout, stderr io.Writer) int {
	queue, err := media.NewWatchQueue(opts.Watch, watchDebounce)
	if err != nil {
		fmt.Fprintf(stderr, "error: watch %s: %v\n", opts.Watch, err)
		return 1
	}
	defer queue.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	results := make(chan struct {
		path string
		ok   bool
	})
	go func() {
		for {
			p, ok := queue.Pop()
			results <- struct {
				path string
				ok   bool
			}{p, ok}
			if !ok {
				return
			}
		}
	}()

	for {
		select {
		case <-sig:
			return 0
		case r := <-results:
			if !r.ok {
				return 0
			}
			renderOne(t, opts, r.path, cols, rows, defaultFG, defaultBG, stdout, stderr)
		}
	}
}

func renderOne(t *term.Term, opts *Options, path string, cols, rows int, defaultFG, defaultBG [3]uint8, stdout, stderr io.Writer) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "warning: %s: %v\n", path, err)
		return
	}
	defer f.Close()

	img, _, err := media.Decode(f)
	if err != nil {
		fmt.Fprintf(stderr, "warning: %s: %v\n", path, err)
		return
	}

	cfg, err := buildCanvasConfig(opts, cols, rows, defaultFG, defaultBG)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return
	}
	c := canvas.New(cfg)
	pix, w, h, stride := media.ToRGBA(img)
	if opts.Rotate%4 != 0 {
		rotated := util.Rotate90(&image.RGBA{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, w, h)}, opts.Rotate)
		pix, w, h, stride = rotated.Pix, rotated.Rect.Dx(), rotated.Rect.Dy(), rotated.Stride
	}
	c.DrawAllPixels(canvas.PixelRGBA8, pix, w, h, stride)

	stdout.Write(c.Print(t.Info))
}
