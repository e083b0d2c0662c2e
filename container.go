package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/do/v2"

	"picbook/internal/catalog"
	"picbook/internal/logger"
	"picbook/internal/progress"
)

const (
	progressDirName = "progress"
	loadTimeout     = 30 * time.Second
)

// NewContainer creates the DI container. Config and logger are values;
// everything else is built lazily on first use.
func NewContainer(cfg *Config, log *logger.Logger) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)

	// Storage layer
	do.Provide(injector, ProvideCatalog)
	do.Provide(injector, ProvideStore)

	// Background workers
	do.Provide(injector, ProvidePageLoader)
	do.Provide(injector, ProvideWatcher)

	return injector
}

// CatalogHandle holds the current catalog. Hot reload swaps it; Shutdown
// closes whichever catalog is current.
type CatalogHandle struct {
	mu      sync.Mutex
	current *catalog.Catalog
}

// Get returns the current catalog.
func (h *CatalogHandle) Get() *catalog.Catalog {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Swap installs c and returns the previous catalog.
func (h *CatalogHandle) Swap(c *catalog.Catalog) *catalog.Catalog {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.current
	h.current = c
	return old
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	if c := h.Swap(nil); c != nil {
		return c.Close()
	}
	return nil
}

// ProvideCatalog loads the library. An unreadable library yields an empty
// catalog so the application still starts.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	cat, err := catalog.Load(ctx, catalogOptions(cfg, log))
	if err != nil {
		log.Warn("failed to load library, starting empty", "library", cfg.LibraryDir, "error", err)
		cat, err = catalog.New(nil)
		if err != nil {
			return nil, err
		}
	}

	log.Info("Library loaded", "library", cfg.LibraryDir, "books", cat.Len())
	return &CatalogHandle{current: cat}, nil
}

func catalogOptions(cfg *Config, log *logger.Logger) catalog.LoadOptions {
	return catalog.LoadOptions{
		Root:       cfg.LibraryDir,
		SortMethod: cfg.SortMethod,
		Logger:     log.Logger,
	}
}

// StoreHandle wraps the progress store with shutdown capability.
type StoreHandle struct {
	*progress.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the progress database under the data directory.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.DataDir, progressDirName)
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, progress.ErrUnavailable.WithCause(err)
	}
	store, err := progress.Open(progress.Options{Path: dbPath, Logger: log.Logger})
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: store}, nil
}

// ProvidePageLoader starts the page decoding worker.
func ProvidePageLoader(i do.Injector) (*PageLoader, error) {
	cfg := do.MustInvoke[*Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return NewPageLoader(cfg.CacheSize, cfg.PreloadCount, cfg.PreloadEnabled, log.Logger)
}

// WatcherHandle owns the library watcher and its context. Watcher is nil
// when watching is disabled.
type WatcherHandle struct {
	*catalog.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Close()
}

// Updates returns the reloaded catalogs, or nil when watching is disabled.
func (h *WatcherHandle) Updates() <-chan *catalog.Catalog {
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Updates()
}

// ProvideWatcher starts watching the library for changes.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.WatchLibrary {
		return &WatcherHandle{}, nil
	}

	w, err := catalog.NewWatcher(catalogOptions(cfg, log), catalog.DefaultReloadDelay)
	if err != nil {
		log.Warn("library hot reload disabled", "error", err)
		return &WatcherHandle{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	log.Info("Library watcher started", "library", cfg.LibraryDir)

	return &WatcherHandle{Watcher: w, cancel: cancel}, nil
}
