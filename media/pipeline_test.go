package media

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTempPNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, encodePNG(t, 2, 2), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestMediaPipelinePreservesSubmissionOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 8; i++ {
		paths = append(paths, writeTempPNG(t, dir, fmt.Sprintf("%c.png", 'a'+i)))
	}

	q := NewPathQueue(paths)
	p := NewMediaPipeline(q, 4)

	var got []string
	for {
		res, ok := p.Pop()
		if !ok {
			break
		}
		if res.Err != nil {
			t.Fatalf("decode %s: %v", res.Path, res.Err)
		}
		got = append(got, res.Path)
	}

	if len(got) != len(paths) {
		t.Fatalf("got %d results, want %d", len(got), len(paths))
	}
	for i, p := range paths {
		if got[i] != p {
			t.Fatalf("result[%d] = %q, want %q (order not preserved)", i, got[i], p)
		}
	}
}

func TestMediaPipelineSurfacesDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	q := NewPathQueue([]string{bad})
	p := NewMediaPipeline(q, 1)

	res, ok := p.Pop()
	if !ok {
		t.Fatal("expected one result")
	}
	if res.Err == nil {
		t.Fatal("expected a decode error for a non-image file")
	}

	if _, ok := p.Pop(); ok {
		t.Fatal("expected pipeline to be drained after its one item")
	}
}
