package term

// PassthroughType selects how sequences must be wrapped to reach the real
// terminal through a multiplexer.
type PassthroughType int

const (
	PassthroughNone PassthroughType = iota
	PassthroughScreen
	PassthroughTmux
)

// TermInfo is one terminal's capability profile: its sequence templates,
// which canvas pixel modes it supports, and which symbol tags are known
// to render cleanly on it. TermInfo is immutable once returned from
// TermDb and safe to share across goroutines, per spec §5.
type TermInfo struct {
	Name           string
	Seqs           *TermSeqDb
	CanvasModes    map[string]bool // e.g. "truecolor", "indexed256", "fgbg"
	PixelModes     map[string]bool // e.g. "sixel", "kitty", "iterm2"
	Passthrough    PassthroughType
	SafeSymbolTags uint32
	next           *TermInfo // chained fallback for sequences this TermInfo doesn't define
}

// Emit renders id with args, falling back to the chained TermInfo (set by
// Chain) if this profile doesn't define the sequence itself.
func (ti *TermInfo) Emit(id SeqID, args ...int) []byte {
	for t := ti; t != nil; t = t.next {
		if t.Seqs == nil {
			continue
		}
		if out, ok := t.Seqs.Emit(id, args...); ok {
			return wrapPassthrough(ti, out)
		}
	}
	return nil
}

// wrapPassthrough applies outer's passthrough wrapping (spec §6.2) to a
// sequence destined for an inner terminal multiplexed through it.
func wrapPassthrough(outer *TermInfo, inner []byte) []byte {
	switch outer.Passthrough {
	case PassthroughScreen:
		out := append([]byte("\x1bP"), inner...)
		out = append(out, "\x1b\\"...)
		return out
	case PassthroughTmux:
		doubled := make([]byte, 0, len(inner)*2)
		for _, b := range inner {
			doubled = append(doubled, b)
			if b == 0x1b {
				doubled = append(doubled, b)
			}
		}
		out := append([]byte("\x1bPtmux;"), doubled...)
		out = append(out, "\x1b\\"...)
		return out
	default:
		return inner
	}
}

// Chain composes outer and inner so that inner's sequences are wrapped by
// outer's passthrough, per spec §4.4's chain() and §6.2. The returned
// TermInfo's own Seqs is inner's (a screen/tmux session still needs the
// real terminal's capabilities), with outer kept only for its
// Passthrough/wrapPassthrough behavior.
func Chain(outer, inner *TermInfo) *TermInfo {
	chained := &TermInfo{
		Name:           inner.Name + "+" + outer.Name,
		Seqs:           inner.Seqs,
		CanvasModes:    inner.CanvasModes,
		PixelModes:     inner.PixelModes,
		Passthrough:    outer.Passthrough,
		SafeSymbolTags: inner.SafeSymbolTags,
		next:           inner.next,
	}
	return chained
}

// --- canvas.SGRWriter implementation -------------------------------------
//
// TermInfo satisfies canvas.SGRWriter directly (see canvas/serialize.go):
// the canvas package only needs these six methods and must not import
// term, so no adapter type is needed here.

// TrueColor implements canvas.SGRWriter.
func (ti *TermInfo) TrueColor(fg, bg [3]uint8) []byte {
	var out []byte
	out = append(out, ti.Emit(SeqSetFGDirect, int(fg[0]), int(fg[1]), int(fg[2]))...)
	out = append(out, ti.Emit(SeqSetBGDirect, int(bg[0]), int(bg[1]), int(bg[2]))...)
	return out
}

// Indexed implements canvas.SGRWriter.
func (ti *TermInfo) Indexed(fg, bg int) []byte {
	var out []byte
	out = append(out, ti.Emit(SeqSet256FG, fg)...)
	out = append(out, ti.Emit(SeqSet256BG, bg)...)
	return out
}

// Default implements canvas.SGRWriter.
func (ti *TermInfo) Default() []byte {
	var out []byte
	out = append(out, ti.Emit(SeqDefaultFG)...)
	out = append(out, ti.Emit(SeqDefaultBG)...)
	return out
}

// Inverse implements canvas.SGRWriter.
func (ti *TermInfo) Inverse(on bool) []byte {
	if on {
		return ti.Emit(SeqInverseOn)
	}
	return ti.Emit(SeqInverseOff)
}

// Reset implements canvas.SGRWriter.
func (ti *TermInfo) Reset() []byte {
	return ti.Emit(SeqResetAttrs)
}

// RepeatPrevious implements canvas.SGRWriter. Only a handful of real
// terminals implement ECMA-48 REP reliably enough to trust for runs this
// short; restrict it to terminals TermDb has explicitly marked safe.
func (ti *TermInfo) RepeatPrevious(n int) ([]byte, bool) {
	if !ti.CanvasModes["rep"] || n < 1 {
		return nil, false
	}
	out, ok := ti.Seqs.Emit(SeqRepeatChar, n)
	return out, ok
}
