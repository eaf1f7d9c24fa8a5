// Package fifo implements an unbounded, segment-list byte queue shared
// between a stream's foreground caller and its background I/O worker.
package fifo

import (
	"bytes"
	"container/list"
)

const bufferSize = 16 * 1024

type segment struct {
	buf []byte
	ofs int
	len int
}

// ByteFifo is a doubly-linked list of fixed-size buffers. Only the head
// segment may have ofs > 0; only the tail segment may be short of full.
type ByteFifo struct {
	segs     *list.List
	totalLen int
	pos      int64 // bytes dropped since creation, via Pop or Drop
}

// New returns an empty ByteFifo.
func New() *ByteFifo {
	return &ByteFifo{segs: list.New()}
}

// Push appends data to the tail segment, allocating new 16 KiB segments
// as needed. It never blocks and never fails short of an allocation panic.
func (f *ByteFifo) Push(data []byte) {
	for len(data) > 0 {
		s := f.tailSegment()
		n := copy(s.buf[s.ofs+s.len:], data)
		s.len += n
		f.totalLen += n
		data = data[n:]
	}
}

func (f *ByteFifo) tailSegment() *segment {
	if back := f.segs.Back(); back != nil {
		s := back.Value.(*segment)
		if s.ofs+s.len < bufferSize {
			return s
		}
	}
	s := &segment{buf: make([]byte, bufferSize)}
	f.segs.PushBack(s)
	return s
}

// Len returns the number of bytes currently queued.
func (f *ByteFifo) Len() int { return f.totalLen }

// Pos returns the number of bytes removed (via Pop or Drop) since creation.
// It is monotonically non-decreasing.
func (f *ByteFifo) Pos() int64 { return f.pos }

// Pop removes and returns up to max bytes from the head of the queue.
func (f *ByteFifo) Pop(max int) []byte {
	if max <= 0 || f.totalLen == 0 {
		return nil
	}
	want := max
	if want > f.totalLen {
		want = f.totalLen
	}
	out := make([]byte, 0, want)
	for len(out) < want {
		front := f.segs.Front()
		s := front.Value.(*segment)
		n := want - len(out)
		if n > s.len {
			n = s.len
		}
		out = append(out, s.buf[s.ofs:s.ofs+n]...)
		f.advanceHead(front, s, n)
	}
	return out
}

// Peek returns the first contiguous slice of queued bytes without
// modifying the queue. Callers may follow up with Drop.
func (f *ByteFifo) Peek() []byte {
	front := f.segs.Front()
	if front == nil {
		return nil
	}
	s := front.Value.(*segment)
	return s.buf[s.ofs : s.ofs+s.len]
}

// Drop discards up to n bytes from the head, returning the number actually
// dropped. Dropping from an empty fifo is a no-op, not an error.
func (f *ByteFifo) Drop(n int) int {
	if n <= 0 {
		return 0
	}
	dropped := 0
	for dropped < n {
		front := f.segs.Front()
		if front == nil {
			break
		}
		s := front.Value.(*segment)
		take := n - dropped
		if take > s.len {
			take = s.len
		}
		dropped += take
		f.advanceHead(front, s, take)
	}
	return dropped
}

func (f *ByteFifo) advanceHead(e *list.Element, s *segment, n int) {
	s.ofs += n
	s.len -= n
	f.totalLen -= n
	f.pos += int64(n)
	if s.len == 0 {
		f.segs.Remove(e)
	}
}

// snapshot copies all queued bytes into one contiguous buffer. Search and
// SplitNext trade a copy for simplicity; callers needing zero-copy search
// across segment boundaries are not part of this spec's scope.
func (f *ByteFifo) snapshot() []byte {
	out := make([]byte, 0, f.totalLen)
	for e := f.segs.Front(); e != nil; e = e.Next() {
		s := e.Value.(*segment)
		out = append(out, s.buf[s.ofs:s.ofs+s.len]...)
	}
	return out
}

// Search reports the first offset of needle within the currently queued
// data (relative to the head), plus the absolute stream position that
// offset corresponds to.
func (f *ByteFifo) Search(needle []byte) (offset int, absPos int64, found bool) {
	if len(needle) == 0 {
		return 0, f.pos, true
	}
	data := f.snapshot()
	idx := bytes.Index(data, needle)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, f.pos + int64(idx), true
}

// SplitNext returns the next complete token up to and including one
// occurrence of separator (separator stripped, NUL-terminated for
// convenience), scanning from restartPos onward. On success the token's
// bytes are removed from the queue and *restartPos is advanced past the
// separator. On failure, nothing is removed, and *restartPos is advanced
// to the furthest point scanning may resume from without re-examining
// bytes that could not have completed a match.
func (f *ByteFifo) SplitNext(separator []byte, restartPos *int64) ([]byte, bool) {
	data := f.snapshot()
	offset := int(*restartPos - (f.pos))
	if offset < 0 {
		offset = 0
	}
	if offset > len(data) {
		offset = len(data)
	}

	idx := bytes.Index(data[offset:], separator)
	if idx < 0 {
		keep := len(separator) - 1
		if keep < 0 {
			keep = 0
		}
		newOffset := len(data) - keep
		if newOffset < offset {
			newOffset = offset
		}
		*restartPos = f.pos + int64(newOffset)
		return nil, false
	}

	tokenEnd := offset + idx
	token := make([]byte, tokenEnd, tokenEnd+1)
	copy(token, data[:tokenEnd])
	token = append(token, 0)

	f.Drop(tokenEnd + len(separator))
	*restartPos = f.pos
	return token, true
}
