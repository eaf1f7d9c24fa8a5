package media

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PathQueue is a closable producer of file paths: either a fixed
// list handed to NewPathQueue, or a live directory watch started by
// NewWatchQueue. Both feed the same Pop/Close contract so MediaPipeline
// doesn't need to know which one it's draining.
type PathQueue struct {
	mu     sync.Mutex
	items  []string
	closed bool
	cond   *sync.Cond

	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// NewPathQueue seeds a queue with a fixed, already-known list of paths and
// closes it immediately: nothing further will ever be added.
func NewPathQueue(paths []string) *PathQueue {
	q := &PathQueue{items: append([]string(nil), paths...), closed: true}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// NewWatchQueue lists dir's current image files, pushes them in sorted
// order, then watches dir for further creates/writes, debouncing bursts the
// same way the teacher's setupFileWatcher does (editor/editor.go): a single
// timer reset on every event, fired after quietPeriod of silence, so a
// slow multi-write save doesn't enqueue the same path repeatedly.
func NewWatchQueue(dir string, quietPeriod time.Duration) (*PathQueue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var initial []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsImagePath(e.Name()) {
			initial = append(initial, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(initial)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	q := &PathQueue{items: initial, watcher: w, stop: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.watch(quietPeriod)
	return q, nil
}

func (q *PathQueue) watch(quietPeriod time.Duration) {
	pending := map[string]struct{}{}
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		q.mu.Lock()
		for p := range pending {
			q.items = append(q.items, p)
		}
		pending = map[string]struct{}{}
		q.cond.Broadcast()
		q.mu.Unlock()
	}

	for {
		select {
		case ev, ok := <-q.watcher.Events:
			if !ok {
				flush()
				q.mu.Lock()
				q.closed = true
				q.cond.Broadcast()
				q.mu.Unlock()
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsImagePath(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(quietPeriod)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(quietPeriod)
			}
			timerC = timer.C
		case <-timerC:
			flush()
			timerC = nil
		case <-q.stop:
			q.watcher.Close()
			return
		case <-q.watcher.Errors:
			// best-effort: a watch error doesn't tear down already-queued paths
		}
	}
}

// Pop blocks until a path is available or the queue is closed and drained,
// in which case ok is false.
func (q *PathQueue) Pop() (path string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return "", false
	}
	path = q.items[0]
	q.items = q.items[1:]
	return path, true
}

// Close stops watch-mode production (no-op for a fixed-list queue, which is
// already closed); any already-queued paths remain poppable.
func (q *PathQueue) Close() {
	q.mu.Lock()
	alreadyClosed := q.closed
	if q.stop != nil {
		q.closed = true
	}
	q.cond.Broadcast()
	q.mu.Unlock()
	if q.stop != nil && !alreadyClosed {
		close(q.stop)
	}
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImagePath reports whether name's extension matches a format Decode can
// dispatch, mirroring the teacher's IsImageFile extension allowlist
// (ui/imageview.go) rather than sniffing magic bytes on every directory
// listing entry.
func IsImagePath(name string) bool {
	return imageExts[strictLowerExt(name)]
}

func strictLowerExt(name string) string {
	ext := filepath.Ext(name)
	b := []byte(ext)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
