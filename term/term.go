package term

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// Term composes a detected/supplied TermInfo with a pair of stream
// workers and an event parser into the single handle the rest of the
// module talks to, modeled on the teacher's Terminal type (ui/terminal.go)
// but generalized from "owns a PTY and a screen buffer" to "owns the
// process's own stdin/stdout and a typed event stream" (spec §4.4/§4.6).
type Term struct {
	mu sync.Mutex

	Info   *TermInfo
	reader *StreamReader
	writer *StreamWriter
	parser *EventParser

	inFD  int
	outFD int

	sizeCellsW, sizeCellsH int
	sizePxW, sizePxH       int
	sizeKnown              bool

	sixelConfirmed bool
	events         []Event

	DefaultFG, DefaultBG [3]uint8
	haveDefaultFG        bool
	haveDefaultBG        bool
}

// Option configures New.
type Option func(*Term)

// WithTermInfo overrides autodetection.
func WithTermInfo(ti *TermInfo) Option {
	return func(t *Term) { t.Info = ti }
}

// New builds a Term around in/out file descriptors, detecting the
// terminal from the environment unless WithTermInfo was given.
func New(in, out *os.File, env map[string]string, opts ...Option) *Term {
	t := &Term{
		reader: NewStreamReader(in),
		writer: NewStreamWriter(out),
		inFD:   int(in.Fd()),
		outFD:  int(out.Fd()),
	}
	for _, o := range opts {
		o(t)
	}
	if t.Info == nil {
		t.Info = NewTermDb().Detect(env)
	}
	t.parser = NewEventParser(t.Info.Seqs)
	return t
}

// Write enqueues raw bytes to be sent to the terminal.
func (t *Term) Write(data []byte) { t.writer.Write(data) }

// PrintSeq emits id with args through the writer.
func (t *Term) PrintSeq(id SeqID, args ...int) {
	if out := t.Info.Emit(id, args...); out != nil {
		t.writer.Write(out)
	}
}

// Flush blocks until everything written so far has reached the fd.
func (t *Term) Flush() { t.writer.Flush() }

// Close shuts down both stream workers.
func (t *Term) Close() {
	t.writer.Close()
	t.reader.Close()
}

// pumpLocked pulls any bytes currently buffered in the reader into the event
// parser and appends the results to t.events. Caller holds t.mu.
func (t *Term) pumpLocked() {
	for {
		data, ok := t.reader.Read(4096)
		if !ok {
			return
		}
		if data == nil {
			return // EOF, nothing left
		}
		t.events = append(t.events, t.parser.Feed(data)...)
	}
}

// ReadEvent waits up to timeout for the next event, returning ok=false on
// timeout. A zero timeout polls without blocking.
func (t *Term) ReadEvent(timeout time.Duration) (Event, bool) {
	deadline := time.Now().Add(timeout)
	for {
		t.mu.Lock()
		t.pumpLocked()
		if len(t.events) > 0 {
			ev := t.events[0]
			t.events = t.events[1:]
			t.mu.Unlock()
			return ev, true
		}
		eof := t.reader.EOF()
		t.mu.Unlock()
		if eof {
			return Event{Kind: EventEOF}, true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Event{}, false
		}
		wait := remaining
		if wait > 20*time.Millisecond {
			wait = 20 * time.Millisecond
		}
		t.reader.Wait(wait)
	}
}

// SyncProbe puts the terminal into raw mode, issues the spec-mandated
// query sequence in order, and blocks (up to timeoutMS) collecting
// replies until the Primary Device Attributes reply arrives or the
// timeout elapses. Replies observed along the way update t's cached
// size/default-color/sixel state. Returns false if DA never arrived
// (callers should proceed with whatever was gathered; a silent terminal
// is not an error, per spec §4.4).
func (t *Term) SyncProbe(timeoutMS int) bool {
	var oldState *xterm.State
	if st, err := xterm.MakeRaw(t.inFD); err == nil {
		oldState = st
		defer xterm.Restore(t.inFD, oldState)
	}

	t.PrintSeq(SeqQueryDefaultFG)
	t.PrintSeq(SeqQueryDefaultBG)
	t.PrintSeq(SeqQueryTextAreaSizeCells)
	t.PrintSeq(SeqQueryTextAreaSizePx)
	t.PrintSeq(SeqQueryCellSizePx)
	t.PrintSeq(SeqQueryDA)
	t.Flush()

	deadline := time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	for time.Now().Before(deadline) {
		remaining := time.Until(deadline)
		ev, ok := t.ReadEvent(remaining)
		if !ok {
			continue
		}
		switch ev.Kind {
		case EventEOF:
			return false
		case EventSeq:
			if t.applyProbeReply(ev) {
				return true
			}
		}
	}
	return false
}

// applyProbeReply folds one probe-related reply into cached Term state;
// returns true if ev was the terminating DA reply.
func (t *Term) applyProbeReply(ev Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Seq {
	case SeqDefaultFGReply:
		if len(ev.Args) == 3 {
			t.DefaultFG = [3]uint8{uint8(ev.Args[0]), uint8(ev.Args[1]), uint8(ev.Args[2])}
			t.haveDefaultFG = true
		}
	case SeqDefaultBGReply:
		if len(ev.Args) == 3 {
			t.DefaultBG = [3]uint8{uint8(ev.Args[0]), uint8(ev.Args[1]), uint8(ev.Args[2])}
			t.haveDefaultBG = true
		}
	case SeqCellSizePxReply:
		if len(ev.Args) == 2 && ev.Args[0] > 0 && ev.Args[1] > 0 {
			t.sizePxW, t.sizePxH = ev.Args[1], ev.Args[0]
		}
	case SeqDAReply:
		if len(ev.Args) >= 1 && ev.Args[0] == 4 {
			t.sixelConfirmed = true
			info := *t.Info
			info.PixelModes = make(map[string]bool, len(t.Info.PixelModes)+1)
			for k, v := range t.Info.PixelModes {
				info.PixelModes[k] = v
			}
			info.PixelModes["sixel"] = true
			t.Info = &info
		}
		return true
	}
	return false
}

// GetSizeCells returns the terminal's text-area size in character cells,
// probing the kernel's TIOCGWINSZ ioctl on first use and caching the
// result until NotifySizeChanged is called.
func (t *Term) GetSizeCells() (w, h int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sizeKnown {
		t.probeWinsizeLocked()
	}
	return t.sizeCellsW, t.sizeCellsH, t.sizeKnown
}

// GetSizePx returns the terminal's text-area size in pixels, if a
// SyncProbe reply or ioctl has supplied it.
func (t *Term) GetSizePx() (w, h int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sizePxW == 0 {
		t.probeWinsizeLocked()
	}
	return t.sizePxW, t.sizePxH, t.sizePxW > 0 && t.sizePxH > 0
}

// probeWinsizeLocked fills cell and pixel sizes via TIOCGWINSZ. Caller
// holds t.mu.
func (t *Term) probeWinsizeLocked() {
	ws, err := unix.IoctlGetWinsize(t.outFD, unix.TIOCGWINSZ)
	if err != nil {
		return
	}
	t.sizeCellsW, t.sizeCellsH = int(ws.Col), int(ws.Row)
	if ws.Xpixel > 0 && ws.Ypixel > 0 {
		t.sizePxW, t.sizePxH = int(ws.Xpixel), int(ws.Ypixel)
	}
	t.sizeKnown = true
}

// NotifySizeChanged discards cached size state (call from a SIGWINCH
// handler); the next GetSizeCells/GetSizePx call re-probes.
func (t *Term) NotifySizeChanged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sizeKnown = false
	t.sizePxW, t.sizePxH = 0, 0
}

// DefaultColors returns the terminal's resolved default foreground/
// background, as reported by a prior SyncProbe, for seeding
// canvas.Config.DefaultFGRGB/DefaultBGRGB. ok is false until both replies
// have been observed.
func (t *Term) DefaultColors() (fg, bg [3]uint8, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.DefaultFG, t.DefaultBG, t.haveDefaultFG && t.haveDefaultBG
}
