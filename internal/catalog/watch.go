package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay is the quiet period after the last file event before
// the library is reloaded.
const DefaultReloadDelay = 500 * time.Millisecond

// Watcher reloads the catalog when files under the library root change and
// delivers each new catalog on Updates.
type Watcher struct {
	opts    LoadOptions
	delay   time.Duration
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	updates chan *Catalog

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher watches opts.Root and each book directory below it.
func NewWatcher(opts LoadOptions, delay time.Duration) (*Watcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		opts:    opts,
		delay:   delay,
		logger:  logger,
		watcher: fw,
		updates: make(chan *Catalog, 1),
		done:    make(chan struct{}),
	}
	if err := w.addTree(opts.Root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read library %s: %w", root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(root, e.Name())
		if err := w.watcher.Add(p); err != nil {
			w.logger.Warn("failed to watch book directory", "path", p, "error", err)
		}
	}
	return nil
}

// Updates delivers reloaded catalogs. Only the newest unread catalog is
// kept; the receiver owns it and closes the one it replaces.
func (w *Watcher) Updates() <-chan *Catalog {
	return w.updates
}

// Start processes file events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handle(ctx, ev)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("library watcher error", "error", err)
			}
		}
	}()
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&fsnotify.Chmod == ev.Op {
		return
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(ev.Name); err != nil {
				w.logger.Warn("failed to watch book directory", "path", ev.Name, "error", err)
			}
		}
	}
	w.logger.Debug("library changed", "path", ev.Name, "op", ev.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() { w.reload(ctx) })
}

func (w *Watcher) reload(ctx context.Context) {
	select {
	case <-w.done:
		return
	default:
	}

	cat, err := Load(ctx, w.opts)
	if err != nil {
		w.logger.Warn("library reload failed", "error", err)
		return
	}

	// Drop a catalog nobody picked up yet.
	select {
	case stale := <-w.updates:
		stale.Close()
	default:
	}
	select {
	case w.updates <- cat:
		w.logger.Info("library reloaded", "books", cat.Len())
	default:
		cat.Close()
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
