package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"

	"picbook/internal/logger"
	"picbook/internal/progress"
)

// testLibrary writes a library with one directory book
func testLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	bookDir := filepath.Join(root, "moon")
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		t.Fatal(err)
	}
	meta := `{"id": "moon", "title": "Good Night Moon", "pages": ["1.png", "2.png", "3.png"]}`
	if err := os.WriteFile(filepath.Join(bookDir, "metadata.json"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"1.png", "2.png", "3.png"} {
		writePNG(t, bookDir, name, 30, 40)
	}
	return root
}

func testContainerConfig(t *testing.T, library string) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LibraryDir = library
	cfg.DataDir = t.TempDir()
	cfg.WatchLibrary = false
	return &cfg
}

func TestContainerProvidesServices(t *testing.T) {
	injector := NewContainer(testContainerConfig(t, testLibrary(t)), logger.Discard())

	books, err := do.Invoke[*CatalogHandle](injector)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if n := books.Get().Len(); n != 1 {
		t.Fatalf("books = %d, want 1", n)
	}
	if book, ok := books.Get().Book("moon"); !ok || book.Spreads != 2 {
		t.Errorf("moon = %+v, %v", book, ok)
	}

	store, err := do.Invoke[*StoreHandle](injector)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, progress.New("moon", 1, 2, time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err := store.Get(ctx, "moon")
	if err != nil || p.CurrentSpread != 1 || !p.Completed {
		t.Errorf("stored progress = %+v, %v", p, err)
	}

	pages, err := do.Invoke[*PageLoader](injector)
	if err != nil || pages == nil {
		t.Fatalf("page loader: %v", err)
	}

	watcher, err := do.Invoke[*WatcherHandle](injector)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	if watcher.Updates() != nil {
		t.Error("disabled watcher should have no updates")
	}

	injector.Shutdown()
	if books.Get() != nil {
		t.Error("catalog still installed after shutdown")
	}
}

func TestContainerMissingLibraryStartsEmpty(t *testing.T) {
	cfg := testContainerConfig(t, filepath.Join(t.TempDir(), "nowhere"))
	injector := NewContainer(cfg, logger.Discard())
	defer injector.Shutdown()

	books, err := do.Invoke[*CatalogHandle](injector)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if n := books.Get().Len(); n != 0 {
		t.Errorf("books = %d, want 0", n)
	}
}

func TestContainerStoreUnavailable(t *testing.T) {
	cfg := testContainerConfig(t, testLibrary(t))
	// A file where the data directory should be
	blocker := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.DataDir = blocker

	injector := NewContainer(cfg, logger.Discard())
	defer injector.Shutdown()

	if _, err := do.Invoke[*StoreHandle](injector); err == nil {
		t.Fatal("expected an error opening the store")
	}
	// The rest of the application still starts.
	if _, err := do.Invoke[*CatalogHandle](injector); err != nil {
		t.Errorf("catalog: %v", err)
	}
}

func TestContainerWatcher(t *testing.T) {
	cfg := testContainerConfig(t, testLibrary(t))
	cfg.WatchLibrary = true
	injector := NewContainer(cfg, logger.Discard())

	watcher, err := do.Invoke[*WatcherHandle](injector)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	if watcher.Updates() == nil {
		t.Error("enabled watcher should expose updates")
	}
	injector.Shutdown()
}

func TestCatalogHandleSwap(t *testing.T) {
	h := &CatalogHandle{}
	if err := h.Shutdown(); err != nil {
		t.Errorf("shutdown of an empty handle: %v", err)
	}

	first := shelfCatalog(t, [3]string{"a", "A", ""})
	second := shelfCatalog(t, [3]string{"b", "B", ""})
	if old := h.Swap(first); old != nil {
		t.Error("empty handle returned a catalog")
	}
	if old := h.Swap(second); old != first {
		t.Error("swap did not return the previous catalog")
	}
	if h.Get() != second {
		t.Error("swap did not install the new catalog")
	}
}
