package term

import (
	"io"
	"sync"
	"time"

	"github.com/chafago/chafa/fifo"
)

const (
	readChunk       = 4096
	readBackpressure = 32 * 1024
	writeChunk      = 4096
	writeBufMax     = 1024 * 1024
)

// StreamReader runs one worker goroutine pumping bytes from an io.Reader
// into a ByteFifo, matching the teacher's one-goroutine-per-PTY pattern in
// ui/terminal.go NewTerminal, generalized from "feed a screen buffer" to
// "feed a FIFO the foreground drains on its own schedule" (spec §4.6).
type StreamReader struct {
	mu       sync.Mutex
	cond     *sync.Cond
	fifo     *fifo.ByteFifo
	eofSeen  bool
	shutdown bool
	done     chan struct{}
	notify   chan struct{} // closed and replaced on every state change; never leaks a waiter
	tokenPos int64         // SplitNext restart hint, carried across ReadToken calls
}

// NewStreamReader starts the worker immediately; r is read until EOF/error
// or Close.
func NewStreamReader(r io.Reader) *StreamReader {
	sr := &StreamReader{fifo: fifo.New(), done: make(chan struct{}), notify: make(chan struct{})}
	sr.cond = sync.NewCond(&sr.mu)
	go sr.pump(r)
	return sr
}

// wake wakes every pending Wait call. Caller holds sr.mu.
func (sr *StreamReader) wake() {
	close(sr.notify)
	sr.notify = make(chan struct{})
	sr.cond.Broadcast()
}

func (sr *StreamReader) pump(r io.Reader) {
	defer close(sr.done)
	buf := make([]byte, readChunk)
	for {
		sr.mu.Lock()
		for !sr.shutdown && sr.fifo.Len() > readBackpressure {
			sr.cond.Wait()
		}
		shutdown := sr.shutdown
		sr.mu.Unlock()
		if shutdown {
			return
		}

		n, err := r.Read(buf)
		sr.mu.Lock()
		if n > 0 {
			sr.fifo.Push(buf[:n])
		}
		if err != nil {
			sr.eofSeen = true
			sr.wake()
			sr.mu.Unlock()
			return
		}
		sr.wake()
		sr.mu.Unlock()
	}
}

// Read pops up to max bytes without blocking; returns (nil, false) if the
// FIFO is currently empty and EOF has not been seen (the caller should
// Wait or WaitUntil before retrying).
func (sr *StreamReader) Read(max int) (data []byte, ok bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.fifo.Len() == 0 {
		if sr.eofSeen {
			return nil, true
		}
		return nil, false
	}
	out := sr.fifo.Pop(max)
	sr.cond.Broadcast() // backpressure relieved; wake the worker's own Wait, not consumers
	return out, true
}

// ReadToken calls ByteFifo.SplitNext(sep, ...) to pull one delimited
// token, per spec §4.6. ok is false if no complete token is available yet
// (and EOF hasn't been seen); oversized is true if the next token, not
// counting the NUL terminator SplitNext appends, exceeded max, in which
// case it was dropped.
func (sr *StreamReader) ReadToken(sep []byte, max int) (tok []byte, ok bool, oversized bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	tok, found := sr.fifo.SplitNext(sep, &sr.tokenPos)
	if found {
		sr.tokenPos = 0 // token consumed; next scan restarts from the new head
		if len(tok)-1 > max {
			return nil, true, true
		}
		sr.cond.Broadcast()
		return tok, true, false
	}
	if sr.eofSeen {
		rest := sr.fifo.Pop(sr.fifo.Len())
		if len(rest) == 0 {
			return nil, false, false
		}
		return rest, true, false
	}
	return nil, false, false
}

// Wait blocks until new data arrives, EOF is seen, or timeout elapses.
// Unlike a condvar wait, a timed-out Wait leaves nothing pending: the
// returned channel is simply abandoned, so repeated polling can't
// accumulate blocked goroutines.
func (sr *StreamReader) Wait(timeout time.Duration) {
	sr.mu.Lock()
	ch := sr.notify
	sr.mu.Unlock()
	select {
	case <-ch:
	case <-time.After(timeout):
	}
}

// EOF reports whether the underlying reader has signaled end-of-stream.
func (sr *StreamReader) EOF() bool {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.eofSeen
}

// Close signals shutdown and waits for the worker to exit.
func (sr *StreamReader) Close() {
	sr.mu.Lock()
	sr.shutdown = true
	sr.cond.Broadcast()
	sr.mu.Unlock()
	<-sr.done
}

// StreamWriter runs one worker goroutine draining a ByteFifo into an
// io.Writer, symmetric to StreamReader (spec §4.6).
type StreamWriter struct {
	mu       sync.Mutex
	cond     *sync.Cond
	fifo     *fifo.ByteFifo
	bufMax   int
	shutdown bool
	idle     bool
	done     chan struct{}
}

// NewStreamWriter starts the worker immediately.
func NewStreamWriter(w io.Writer) *StreamWriter {
	sw := &StreamWriter{fifo: fifo.New(), bufMax: writeBufMax, idle: true, done: make(chan struct{})}
	sw.cond = sync.NewCond(&sw.mu)
	go sw.pump(w)
	return sw
}

func (sw *StreamWriter) pump(w io.Writer) {
	defer close(sw.done)
	for {
		sw.mu.Lock()
		for !sw.shutdown && sw.fifo.Len() == 0 {
			sw.idle = true
			sw.cond.Broadcast()
			sw.cond.Wait()
		}
		if sw.shutdown && sw.fifo.Len() == 0 {
			sw.mu.Unlock()
			return
		}
		sw.idle = false
		chunk := sw.fifo.Pop(writeChunk)
		sw.cond.Broadcast() // space freed; wake blocked Write callers
		sw.mu.Unlock()

		for len(chunk) > 0 {
			n, err := w.Write(chunk)
			if err != nil {
				sw.mu.Lock()
				sw.shutdown = true
				sw.mu.Unlock()
				return
			}
			chunk = chunk[n:]
		}
	}
}

// Write pushes data into the FIFO, blocking while the FIFO is at bufMax.
func (sw *StreamWriter) Write(data []byte) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for len(data) > 0 {
		for !sw.shutdown && sw.fifo.Len() >= sw.bufMax {
			sw.cond.Wait()
		}
		if sw.shutdown {
			return
		}
		room := sw.bufMax - sw.fifo.Len()
		n := len(data)
		if n > room {
			n = room
		}
		sw.fifo.Push(data[:n])
		data = data[n:]
		sw.cond.Broadcast()
	}
}

// Flush blocks until the FIFO is drained and the worker is idle.
func (sw *StreamWriter) Flush() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for !sw.shutdown && (sw.fifo.Len() > 0 || !sw.idle) {
		sw.cond.Wait()
	}
}

// Close signals shutdown, wakes the worker so it can drain and exit, and
// waits for it to finish.
func (sw *StreamWriter) Close() {
	sw.mu.Lock()
	sw.shutdown = true
	sw.cond.Broadcast()
	sw.mu.Unlock()
	<-sw.done
}
