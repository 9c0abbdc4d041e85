package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherDebouncesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	got := make(chan string, 10)
	w, err := New(filepath.Join(dir, "*.md"), func(_ context.Context, path string) {
		got <- path
	}, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	post := filepath.Join(dir, "hello.md")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(post, []byte("draft "+string(rune('a'+i))), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case path := <-got:
		if path != post {
			t.Fatalf("handler got %q, want %q", path, post)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no event delivered")
	}
	select {
	case path := <-got:
		t.Fatalf("unexpected second delivery %q", path)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(filepath.Join(t.TempDir(), "*.md"), func(context.Context, string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second Start should be a no-op: %v", err)
	}
	cancel()
	w.Stop()
	w.Stop()
}

func TestNewValidates(t *testing.T) {
	if _, err := New("posts/*.md", nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
	if _, err := New("posts/[.md", func(context.Context, string) {}); err == nil {
		t.Fatalf("expected error for bad pattern")
	}
}

func TestStartFailsOnMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "*.md"), func(context.Context, string) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatalf("expected error for missing directory")
	}
}
