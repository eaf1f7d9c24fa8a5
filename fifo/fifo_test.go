package fifo

import (
	"bytes"
	"strings"
	"testing"
)

func TestPushPopRoundTrip(t *testing.T) {
	f := New()
	f.Push([]byte("hello, "))
	f.Push([]byte("world"))

	got := f.Pop(5)
	if string(got) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}

	rest := f.Pop(100)
	if string(rest) != ", world" {
		t.Fatalf("expected %q, got %q", ", world", rest)
	}
	if f.Len() != 0 {
		t.Fatalf("expected empty fifo, got len %d", f.Len())
	}
}

func TestPositionMonotonic(t *testing.T) {
	f := New()
	f.Push([]byte(strings.Repeat("x", 100)))
	if f.Pos() != 0 {
		t.Fatalf("expected pos 0 before any removal, got %d", f.Pos())
	}
	f.Pop(40)
	if f.Pos() != 40 {
		t.Fatalf("expected pos 40, got %d", f.Pos())
	}
	f.Drop(10)
	if f.Pos() != 50 {
		t.Fatalf("expected pos 50, got %d", f.Pos())
	}
	f.Drop(1000) // drop more than available, must not go negative or panic
	if f.Pos() != 100 {
		t.Fatalf("expected pos 100 after over-drop, got %d", f.Pos())
	}
}

func TestDropOnEmptyIsNoOp(t *testing.T) {
	f := New()
	if n := f.Drop(5); n != 0 {
		t.Fatalf("expected 0 dropped from empty fifo, got %d", n)
	}
}

// TestSearchAfterWraparound matches spec scenario 3: push "abc", drop it,
// push 30000 filler bytes, push "abc" again — search must report offset
// 30000 (i.e. the second occurrence, not the dropped first one), spanning
// multiple internal 16 KiB segments.
func TestSearchAfterWraparound(t *testing.T) {
	f := New()
	f.Push([]byte("abc"))
	f.Drop(3)
	f.Push(bytes.Repeat([]byte("x"), 30000))
	f.Push([]byte("abc"))

	offset, absPos, found := f.Search([]byte("abc"))
	if !found {
		t.Fatalf("expected to find needle")
	}
	if offset != 30000 {
		t.Fatalf("expected offset 30000, got %d", offset)
	}
	if absPos != f.Pos()+int64(offset) {
		t.Fatalf("expected absPos == pos+offset, got %d vs %d", absPos, f.Pos()+int64(offset))
	}
}

func TestSearchNotFound(t *testing.T) {
	f := New()
	f.Push([]byte("the quick brown fox"))
	if _, _, found := f.Search([]byte("zzz")); found {
		t.Fatalf("expected not found")
	}
}

func TestSplitNextTokenizesAndStrips(t *testing.T) {
	f := New()
	f.Push([]byte("one\ntwo\nthree"))

	var restart int64
	tok, ok := f.SplitNext([]byte("\n"), &restart)
	if !ok || string(tok[:len(tok)-1]) != "one" {
		t.Fatalf("expected token %q, got %q (ok=%v)", "one", tok, ok)
	}

	tok, ok = f.SplitNext([]byte("\n"), &restart)
	if !ok || string(tok[:len(tok)-1]) != "two" {
		t.Fatalf("expected token %q, got %q (ok=%v)", "two", tok, ok)
	}

	// "three" has no trailing separator yet — must report no match and
	// leave the fifo untouched.
	lenBefore := f.Len()
	_, ok = f.SplitNext([]byte("\n"), &restart)
	if ok {
		t.Fatalf("expected no match without trailing separator")
	}
	if f.Len() != lenBefore {
		t.Fatalf("expected fifo untouched on no-match, len changed %d -> %d", lenBefore, f.Len())
	}

	f.Push([]byte("\n"))
	tok, ok = f.SplitNext([]byte("\n"), &restart)
	if !ok || string(tok[:len(tok)-1]) != "three" {
		t.Fatalf("expected token %q, got %q (ok=%v)", "three", tok, ok)
	}
}

func TestSplitNextPartialSeparatorNotSkipped(t *testing.T) {
	// Push a separator split across two SplitNext calls to ensure restartPos
	// bookkeeping doesn't skip past a partially-seen separator.
	f := New()
	sep := []byte("<<END>>")
	f.Push([]byte("payload<<EN"))

	var restart int64
	if _, ok := f.SplitNext(sep, &restart); ok {
		t.Fatalf("expected no match with incomplete separator")
	}

	f.Push([]byte("D>>tail"))
	tok, ok := f.SplitNext(sep, &restart)
	if !ok || string(tok[:len(tok)-1]) != "payload" {
		t.Fatalf("expected token %q, got %q (ok=%v)", "payload", tok, ok)
	}
}
