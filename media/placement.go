package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const placementMax = 65536

// PlacementCounter hands out the monotonically increasing placement ids
// the Kitty and iTerm2 graphics protocols need to distinguish overlapping
// images in the same terminal, persisting the next value to disk so ids
// stay unique across separate invocations of the program rather than
// resetting to 1 every run (spec §4.10/§6.3).
//
// No file in the teacher or the rest of the example pack touches
// $XDG_CACHE_HOME or os.UserCacheDir — this concern has no grounding
// source in the corpus, so it's built directly on the stdlib path/file
// APIs the spec itself names, rather than forced onto an unrelated
// library. Recorded in DESIGN.md.
type PlacementCounter struct {
	mu   sync.Mutex
	path string
	next uint32
}

// NewPlacementCounter reads the persisted counter from the cache
// directory, defaulting to 1 if the file is missing or unparsable.
func NewPlacementCounter() *PlacementCounter {
	path := placementFilePath()
	pc := &PlacementCounter{path: path, next: 1}
	if path == "" {
		return pc
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pc
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || v < 1 || v > placementMax {
		return pc
	}
	pc.next = uint32(v)
	return pc
}

// placementFilePath returns $XDG_CACHE_HOME/chafa/placement-id, falling
// back to os.UserCacheDir()/chafa/placement-id, or "" if neither can be
// determined (e.g. $HOME unset).
func placementFilePath() string {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return ""
		}
		base = dir
	}
	return filepath.Join(base, "chafa", "placement-id")
}

// Next returns the next placement id in [1, placementMax], wrapping back
// to 1 after placementMax, without touching disk (disk persistence happens
// once, in Close).
func (pc *PlacementCounter) Next() uint32 {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	id := pc.next
	pc.next++
	if pc.next > placementMax {
		pc.next = 1
	}
	return id
}

// Close persists the next id to be handed out so a later process picks up
// where this one left off. Parent directories are created mode 0750. No
// file locking is used — per spec §6.3, the last writer wins if two
// processes race to persist concurrently.
func (pc *PlacementCounter) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(pc.path), 0750); err != nil {
		return err
	}
	return os.WriteFile(pc.path, []byte(fmt.Sprintf("%d\n", pc.next)), 0640)
}
