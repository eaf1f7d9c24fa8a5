package term

import (
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
)

func TestTermInfoSGREmission(t *testing.T) {
	ti := baseTruecolor("test")
	got := ti.TrueColor([3]uint8{10, 20, 30}, [3]uint8{1, 2, 3})
	want := "\x1b[38;2;10;20;30m\x1b[48;2;1;2;3m"
	if string(got) != want {
		t.Fatalf("TrueColor = %q, want %q", got, want)
	}

	got = ti.Indexed(196, 16)
	want = "\x1b[38;5;196m\x1b[48;5;16m"
	if string(got) != want {
		t.Fatalf("Indexed = %q, want %q", got, want)
	}

	if got, want := string(ti.Default()), "\x1b[39m\x1b[49m"; got != want {
		t.Fatalf("Default = %q, want %q", got, want)
	}
	if got, want := string(ti.Inverse(true)), "\x1b[7m"; got != want {
		t.Fatalf("Inverse(true) = %q, want %q", got, want)
	}
	if got, want := string(ti.Inverse(false)), "\x1b[27m"; got != want {
		t.Fatalf("Inverse(false) = %q, want %q", got, want)
	}
	if got, want := string(ti.Reset()), "\x1b[0m"; got != want {
		t.Fatalf("Reset = %q, want %q", got, want)
	}
}

func TestTermInfoRepeatPreviousGatedByCanvasMode(t *testing.T) {
	ti := baseTruecolor("rep-capable")
	out, ok := ti.RepeatPrevious(5)
	if !ok || string(out) != "\x1b[5b" {
		t.Fatalf("RepeatPrevious(5) = %q, %v; want \"\\x1b[5b\", true", out, ok)
	}

	noRep := buildIndexed256("dumb")()
	if _, ok := noRep.RepeatPrevious(5); ok {
		t.Fatal("RepeatPrevious should be refused when CanvasModes[\"rep\"] is unset")
	}
}

func TestChainWrapsScreenPassthrough(t *testing.T) {
	outer := buildPassthrough(PassthroughScreen)()
	inner := baseTruecolor("xterm")
	chained := Chain(outer, inner)

	out := chained.Emit(SeqResetAttrs)
	want := "\x1bP\x1b[0m\x1b\\"
	if string(out) != want {
		t.Fatalf("chained Emit = %q, want %q", out, want)
	}
}

func TestChainWrapsTmuxPassthroughDoublingEscapes(t *testing.T) {
	outer := buildPassthrough(PassthroughTmux)()
	inner := baseTruecolor("xterm")
	chained := Chain(outer, inner)

	out := chained.Emit(SeqDefaultFG)
	want := "\x1bPtmux;\x1b\x1b[39m\x1b\\"
	if string(out) != want {
		t.Fatalf("chained tmux Emit = %q, want %q", out, want)
	}
}

func TestTermDbDetectPrefersKittyOverGenericTruecolor(t *testing.T) {
	db := NewTermDb()
	env := map[string]string{
		"TERM_PROGRAM": "kitty",
		"COLORTERM":    "truecolor",
	}
	ti := db.Detect(env)
	if ti.Name != "kitty" {
		t.Fatalf("Detect = %q, want kitty", ti.Name)
	}
	if !ti.PixelModes["kitty"] {
		t.Fatal("kitty profile should carry PixelModes[\"kitty\"]")
	}
}

func TestTermDbDetectFallsBackWithoutMatch(t *testing.T) {
	db := NewTermDb()
	ti := db.Detect(map[string]string{"TERM": "dumb"})
	if ti.Name != "fallback" {
		t.Fatalf("Detect = %q, want fallback", ti.Name)
	}
	if ti.CanvasModes["indexed256"] {
		t.Fatal("fallback profile should not claim indexed256")
	}
}

func TestTermDbDetectWrapsTmuxPassthrough(t *testing.T) {
	db := NewTermDb()
	ti := db.Detect(map[string]string{"TERM": "screen-256color", "TMUX": "/tmp/tmux-1000/default,1234,0"})
	if ti.Passthrough != PassthroughTmux {
		t.Fatalf("Passthrough = %v, want PassthroughTmux", ti.Passthrough)
	}
}

func TestEventParserRecognizesSimpleCSI(t *testing.T) {
	p := NewEventParser(NewSeqDb())
	events := p.Feed([]byte("\x1b[39m"))
	if len(events) != 1 || events[0].Kind != EventSeq || events[0].Seq != SeqDefaultFG {
		t.Fatalf("events = %+v, want single SeqDefaultFG", events)
	}
}

func TestEventParserPlainBytesBecomeUnichars(t *testing.T) {
	p := NewEventParser(NewSeqDb())
	events := p.Feed([]byte("ab"))
	if len(events) != 2 || events[0].Ch != 'a' || events[1].Ch != 'b' {
		t.Fatalf("events = %+v, want 'a','b'", events)
	}
}

func TestEventParserOSCReplySplitAcrossFeedCalls(t *testing.T) {
	p := NewEventParser(NewSeqDb())
	full := "\x1b]10;rgb:ff/80/00\x1b\\"
	// Split exactly between the ESC and the '\' that complete the ST, the
	// one case a naive single-call lookahead would drop.
	splitAt := len(full) - 1
	first := p.Feed([]byte(full[:splitAt]))
	if len(first) != 0 {
		t.Fatalf("unexpected events before terminator completed: %+v", first)
	}
	second := p.Feed([]byte(full[splitAt:]))
	if len(second) != 1 || second[0].Kind != EventSeq || second[0].Seq != SeqDefaultFGReply {
		t.Fatalf("events = %+v, want single SeqDefaultFGReply", second)
	}
	args := second[0].Args
	if len(args) != 3 || args[0] != 0xff || args[1] != 0x80 || args[2] != 0x00 {
		t.Fatalf("args = %v, want [255 128 0]", args)
	}
}

func TestEventParserUnrecognizedSequenceBecomesUnichars(t *testing.T) {
	p := NewEventParser(NewSeqDb())
	events := p.Feed([]byte("\x1b[999zz"))
	// '9','9','9' are parameter bytes, 'z' is a CSI final byte (0x40-0x7e):
	// the first 'z' terminates the CSI dispatch, the trailing 'z' is plain.
	// No template matches "\x1b[999z", so per spec it must come back as the
	// byte-for-byte Unichar stream it actually is, not a summarized event.
	want := "\x1b[999zz"
	if len(events) != len(want) {
		t.Fatalf("events = %+v, want %d unichars for %q", events, len(want), want)
	}
	for i, r := range want {
		if events[i].Kind != EventUnichar || events[i].Ch != r {
			t.Fatalf("events[%d] = %+v, want Unichar %q", i, events[i], r)
		}
	}
}

func TestStreamReaderWriterRoundTrip(t *testing.T) {
	r, w := io.Pipe()
	sr := NewStreamReader(r)
	defer sr.Close()

	go func() {
		io.WriteString(w, "hello")
		w.Close()
	}()

	var got []byte
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 5 && time.Now().Before(deadline) {
		data, ok := sr.Read(64)
		if ok && data != nil {
			got = append(got, data...)
		} else if !ok {
			sr.Wait(50 * time.Millisecond)
		} else {
			break // EOF with nothing more buffered
		}
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestStreamWriterFlushDrainsBeforeReturning(t *testing.T) {
	r, w := io.Pipe()
	sw := NewStreamWriter(w)
	defer sw.Close()

	readDone := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := r.Read(buf)
		readDone <- buf[:n]
	}()

	sw.Write([]byte("flushed"))
	sw.Flush()

	select {
	case got := <-readDone:
		if string(got) != "flushed" {
			t.Fatalf("got %q, want %q", got, "flushed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flushed write to reach the pipe")
	}
}

// TestSyncProbeTimesOutWithoutReply exercises SyncProbe against a real PTY
// whose slave end never answers the queries: SyncProbe must give up close
// to its requested timeout rather than hanging, per the scenario where a
// terminal that doesn't understand DA queries must not wedge startup.
func TestSyncProbeTimesOutWithoutReply(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable in this environment: %v", err)
	}

	// Drain anything SyncProbe writes so its Flush doesn't block forever,
	// but never answer: this tty has no shell reading/responding to it.
	go io.Copy(io.Discard, ptmx)

	term := New(tty, tty, map[string]string{"TERM": "xterm-256color"})

	start := time.Now()
	ok := term.SyncProbe(100)
	elapsed := time.Since(start)

	// Close the master end first: that's what unblocks the reader worker's
	// pending blocking Read on the slave fd (an io.Reader has no cancel
	// primitive of its own), so Term.Close below can return.
	ptmx.Close()
	term.Close()
	tty.Close()

	if ok {
		t.Fatal("SyncProbe reported success with no terminal responding")
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("SyncProbe returned after %v, before its 100ms timeout elapsed", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("SyncProbe took %v, far past its 100ms timeout", elapsed)
	}
}

func TestGetSizeCellsProbesWinsize(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable in this environment: %v", err)
	}

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 40, Cols: 100}); err != nil {
		t.Skipf("Setsize unsupported: %v", err)
	}

	term := New(tty, tty, map[string]string{"TERM": "xterm-256color"})

	w, h, ok := term.GetSizeCells()

	ptmx.Close()
	term.Close()
	tty.Close()

	if !ok {
		t.Fatal("GetSizeCells reported not ok")
	}
	if w != 100 || h != 40 {
		t.Fatalf("GetSizeCells = (%d,%d), want (100,40)", w, h)
	}
}
