// Package term knows how to emit and parse the control sequences a
// terminal understands, detect which terminal the process is attached to,
// stream bytes to/from it on worker goroutines, and compose those pieces
// into a single Term handle.
package term

import (
	"bytes"
	"fmt"
	"strconv"
)

// SeqID names one control sequence template in a TermSeqDb.
type SeqID int

const (
	SeqSetFGDirect SeqID = iota
	SeqSetBGDirect
	SeqSet256FG
	SeqSet256BG
	SeqSet16FG
	SeqSet16BG
	SeqResetAttrs
	SeqDefaultFG
	SeqDefaultBG
	SeqInverseOn
	SeqInverseOff
	SeqCursorUp
	SeqCursorToPos
	SeqQueryDA
	SeqDAReply
	SeqQueryDefaultFG
	SeqQueryDefaultBG
	SeqDefaultFGReply
	SeqDefaultBGReply
	SeqQueryCellSizePx
	SeqCellSizePxReply
	SeqQueryTextAreaSizeCells
	SeqQueryTextAreaSizePx
	SeqBeginSixel
	SeqEndSixel
	SeqRepeatChar
)

// argKind describes how one %k placeholder in a template is rendered or
// parsed.
type argKind int

const (
	argDecimal argKind = iota // base-10 integer, any number of digits
	argHex                    // base-16 integer (lowercase or uppercase), e.g. OSC color components
)

// seqTemplate is one named sequence: a sequence of literal byte runs and
// argument placeholders, plus how many arguments it takes.
type seqTemplate struct {
	parts   []string // literal text, with "%1".."%23" as placeholders
	nargs   int
	argKind argKind
}

// TermSeqDb holds the named sequence templates for one terminal profile.
// The zero value has no sequences; NewSeqDb returns the builtin ECMA-48 /
// xterm set every terminal in TermDb's table starts from.
type TermSeqDb struct {
	templates map[SeqID]seqTemplate
}

// NewSeqDb returns the baseline xterm-compatible sequence set (spec §6.1).
// Every entry is built through splitTemplate — the same %d-splitting path
// Set uses — so a builtin template's parts are never a single unsplit
// literal string; Emit/ParseSeq only ever see one placeholder per part.
func NewSeqDb() *TermSeqDb {
	return &TermSeqDb{templates: map[SeqID]seqTemplate{
		SeqSetFGDirect:            splitTemplate("\x1b[38;2;%d;%d;%dm", 3, argDecimal),
		SeqSetBGDirect:            splitTemplate("\x1b[48;2;%d;%d;%dm", 3, argDecimal),
		SeqSet256FG:               splitTemplate("\x1b[38;5;%dm", 1, argDecimal),
		SeqSet256BG:               splitTemplate("\x1b[48;5;%dm", 1, argDecimal),
		SeqSet16FG:                splitTemplate("\x1b[%dm", 1, argDecimal),
		SeqSet16BG:                splitTemplate("\x1b[%dm", 1, argDecimal),
		SeqResetAttrs:             splitTemplate("\x1b[0m", 0, argDecimal),
		SeqDefaultFG:              splitTemplate("\x1b[39m", 0, argDecimal),
		SeqDefaultBG:              splitTemplate("\x1b[49m", 0, argDecimal),
		SeqInverseOn:              splitTemplate("\x1b[7m", 0, argDecimal),
		SeqInverseOff:             splitTemplate("\x1b[27m", 0, argDecimal),
		SeqCursorUp:               splitTemplate("\x1b[%dA", 1, argDecimal),
		SeqCursorToPos:            splitTemplate("\x1b[%d;%dH", 2, argDecimal),
		SeqQueryDA:                splitTemplate("\x1b[c", 0, argDecimal),
		SeqDAReply:                splitTemplate("\x1b[?%dc", 1, argDecimal),
		SeqQueryDefaultFG:         splitTemplate("\x1b]10;?\x07", 0, argDecimal),
		SeqQueryDefaultBG:         splitTemplate("\x1b]11;?\x07", 0, argDecimal),
		SeqDefaultFGReply:         splitTemplate("\x1b]10;rgb:%d/%d/%d\x07", 3, argHex),
		SeqDefaultBGReply:         splitTemplate("\x1b]11;rgb:%d/%d/%d\x07", 3, argHex),
		SeqQueryCellSizePx:        splitTemplate("\x1b[16t", 0, argDecimal),
		SeqCellSizePxReply:        splitTemplate("\x1b[6;%d;%dt", 2, argDecimal),
		SeqQueryTextAreaSizeCells: splitTemplate("\x1b[18t", 0, argDecimal),
		SeqQueryTextAreaSizePx:    splitTemplate("\x1b[14t", 0, argDecimal),
		SeqBeginSixel:             splitTemplate("\x1bPq", 0, argDecimal),
		SeqEndSixel:               splitTemplate("\x1b\\", 0, argDecimal),
		SeqRepeatChar:             splitTemplate("\x1b[%db", 1, argDecimal),
	}}
}

// Clone returns an independent copy, for a TermInfo that wants to override
// a handful of sequences without mutating the shared default.
func (db *TermSeqDb) Clone() *TermSeqDb {
	cp := &TermSeqDb{templates: make(map[SeqID]seqTemplate, len(db.templates))}
	for id, t := range db.templates {
		cp.templates[id] = t
	}
	return cp
}

// Set overrides or adds a template, given as a printf-style string using
// %d for each argument in order (converted internally to one placeholder
// part per argument).
func (db *TermSeqDb) Set(id SeqID, raw string, nargs int) {
	db.templates[id] = splitTemplate(raw, nargs, argDecimal)
}

// splitTemplate turns a printf-style string using %d for each argument
// (in order) into a seqTemplate whose parts alternate literal runs and
// single-placeholder runs ("%1", "%2", ...) — the form Emit/ParseSeq
// require, since they treat each parts element as atomically either a
// whole placeholder or a whole literal, never a mix of both.
func splitTemplate(raw string, nargs int, kind argKind) seqTemplate {
	var parts []string
	var buf bytes.Buffer
	argN := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '%' && i+1 < len(raw) && raw[i+1] == 'd' {
			parts = append(parts, buf.String())
			argN++
			parts = append(parts, fmt.Sprintf("%%%d", argN))
			buf.Reset()
			i++
			continue
		}
		buf.WriteByte(raw[i])
	}
	parts = append(parts, buf.String())
	return seqTemplate{parts: parts, nargs: nargs, argKind: kind}
}

// Emit substitutes args into id's template, in the order %1, %2, ... Returns
// ok=false if id is not defined in this db.
func (db *TermSeqDb) Emit(id SeqID, args ...int) (out []byte, ok bool) {
	t, found := db.templates[id]
	if !found {
		return nil, false
	}
	if len(args) != t.nargs {
		return nil, false
	}
	var buf bytes.Buffer
	for _, part := range t.parts {
		if n, isPlaceholder := placeholderIndex(part); isPlaceholder {
			if t.argKind == argHex {
				fmt.Fprintf(&buf, "%02x", args[n-1])
			} else {
				buf.WriteString(strconv.Itoa(args[n-1]))
			}
		} else {
			buf.WriteString(part)
		}
	}
	return buf.Bytes(), true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func placeholderIndex(s string) (int, bool) {
	if len(s) < 2 || s[0] != '%' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ParseResult is the outcome of attempting to match a sequence template
// against the front of a byte buffer.
type ParseResult int

const (
	ParseFailure ParseResult = iota
	ParseSuccess
	ParseAgain
)

// ParseSeq attempts to match id's template against the start of input.
// SUCCESS fills args and reports consumed bytes; FAILURE means input does
// not start with this template's literal prefix; AGAIN means input is a
// valid-so-far prefix but more bytes are needed.
func (db *TermSeqDb) ParseSeq(id SeqID, input []byte) (result ParseResult, args []int, consumed int) {
	t, found := db.templates[id]
	if !found {
		return ParseFailure, nil, 0
	}
	pos := 0
	var parsed []int
	for _, part := range t.parts {
		if n, isPlaceholder := placeholderIndex(part); isPlaceholder {
			start := pos
			if t.argKind == argHex {
				for pos < len(input) && isHexDigit(input[pos]) {
					pos++
				}
			} else {
				for pos < len(input) && input[pos] >= '0' && input[pos] <= '9' {
					pos++
				}
			}
			if pos == start {
				if pos >= len(input) {
					return ParseAgain, nil, 0
				}
				return ParseFailure, nil, 0
			}
			base := 10
			if t.argKind == argHex {
				base = 16
			}
			v, _ := strconv.ParseInt(string(input[start:pos]), base, 32)
			if t.argKind == argHex {
				// xterm color replies use 1-4 hex digits per component to
				// represent a 16-bit channel; rescale to 0-255 regardless of
				// width so callers always get an 8-bit value.
				digits := pos - start
				maxVal := int64(1)<<uint(digits*4) - 1
				v = v * 255 / maxVal
			}
			for len(parsed) < n {
				parsed = append(parsed, 0)
			}
			parsed[n-1] = int(v)
			continue
		}
		for i := 0; i < len(part); i++ {
			if pos >= len(input) {
				return ParseAgain, nil, 0
			}
			if input[pos] != part[i] {
				return ParseFailure, nil, 0
			}
			pos++
		}
	}
	return ParseSuccess, parsed, pos
}
