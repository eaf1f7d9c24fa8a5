package canvas

import "fmt"

// ANSIWriter is a conservative, terminal-agnostic SGRWriter: plain ANSI
// escape sequences with no "repeat previous character" support. It is the
// fallback a caller can reach for without having detected a specific
// terminal via the term package's TermInfo, mirroring TermDb's own
// "falls back to a conservative default" behavior when detection fails.
type ANSIWriter struct{}

func (ANSIWriter) TrueColor(fg, bg [3]uint8) []byte {
	return []byte(fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm",
		fg[0], fg[1], fg[2], bg[0], bg[1], bg[2]))
}

func (ANSIWriter) Indexed(fg, bg int) []byte {
	return []byte(fmt.Sprintf("\x1b[38;5;%dm\x1b[48;5;%dm", fg, bg))
}

func (ANSIWriter) Default() []byte {
	return []byte("\x1b[39m\x1b[49m")
}

func (ANSIWriter) Inverse(on bool) []byte {
	if on {
		return []byte("\x1b[7m")
	}
	return []byte("\x1b[27m")
}

func (ANSIWriter) Reset() []byte {
	return []byte("\x1b[0m")
}

// RepeatPrevious always reports ok=false: plain ANSI has no ECMA-48 REP
// sequence guarantee across terminals, so the caller always falls back to
// literal repetition with this writer.
func (ANSIWriter) RepeatPrevious(n int) ([]byte, bool) {
	return nil, false
}
