package symbol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidSelector is returned for any token that is neither a known tag
// name, a hex code point, nor an LO..HI hex range.
var ErrInvalidSelector = errors.New("symbol: invalid selector")

var tagFolder = cases.Fold()

// selectorOp is one comma-separated token of a selector expression: an
// optional leading sign (defaulting to '+' for the first token and to the
// previous token's sign thereafter) plus either a tag, a single code
// point, or a code point range.
type selectorOp struct {
	add     bool
	tag     Tag
	isRange bool
	lo, hi  rune
}

// ParseSelectors parses a selector expression such as "block+border-bad"
// or "[all] - [extra] - [bad]" into an ordered list of add/remove
// operations, applying golang.org/x/text/cases fold-casing to tag names so
// "BLOCK", "Block" and "block" are equivalent.
func ParseSelectors(expr string) ([]selectorOp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var ops []selectorOp
	sign := true // default to add for the very first token
	for _, rawGroup := range strings.Split(expr, ",") {
		for _, tok := range splitSigned(rawGroup) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			add := sign
			body := tok
			switch body[0] {
			case '+':
				add = true
				body = body[1:]
			case '-':
				add = false
				body = body[1:]
			}
			body = strings.TrimSpace(stripBrackets(body))
			if body == "" {
				continue
			}
			op, err := parseOperand(body, add)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			sign = add
		}
	}
	return ops, nil
}

// stripBrackets removes a single layer of "[" "]" wrapping, ignoring
// whitespace outside the brackets (accepts both "block" and "[block]").
func stripBrackets(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// splitSigned splits a run like "block+border-bad" into ["block",
// "+border", "-bad"] without disturbing a leading sign.
func splitSigned(s string) []string {
	s = strings.TrimSpace(s)
	var parts []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// Range syntax ("LO..HI") and tag names are checked before falling back to
// a bare hex code point, since a handful of tag names (e.g. "bad") are
// themselves valid hex digit strings and must not be misread as U+0BAD.
func parseOperand(body string, add bool) (selectorOp, error) {
	if lo, hi, ok := parseRange(body); ok {
		return selectorOp{add: add, isRange: true, lo: lo, hi: hi}, nil
	}
	if tag, ok := tagNames[tagFolder.String(body)]; ok {
		return selectorOp{add: add, tag: tag}, nil
	}
	if cp, ok := parseCodePoint(body); ok {
		return selectorOp{add: add, isRange: true, lo: cp, hi: cp}, nil
	}
	return selectorOp{}, fmt.Errorf("%w: %q", ErrInvalidSelector, body)
}

func parseRange(s string) (lo, hi rune, ok bool) {
	parts := strings.SplitN(s, "..", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	loVal, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 16, 32)
	if err != nil {
		return 0, 0, false
	}
	hiVal, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(loVal), rune(hiVal), true
}

func parseCodePoint(s string) (rune, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "U+"), "u+")
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// Apply runs ops against m in order.
func (m *SymbolMap) Apply(ops []selectorOp) {
	for _, op := range ops {
		switch {
		case op.isRange:
			if op.add {
				m.AddByRange(op.lo, op.hi)
			} else {
				m.RemoveByRange(op.lo, op.hi)
			}
		default:
			if op.add {
				m.AddByTags(op.tag)
			} else {
				m.RemoveByTags(op.tag)
			}
		}
	}
}

// ApplySelectors parses and applies expr in one step.
func (m *SymbolMap) ApplySelectors(expr string) error {
	ops, err := ParseSelectors(expr)
	if err != nil {
		return err
	}
	m.Apply(ops)
	return nil
}
