package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"picbook/internal/catalog"
	"picbook/internal/spread"
)

// NavigationDirection represents the direction of navigation
type NavigationDirection int

const (
	NavigationForward NavigationDirection = iota
	NavigationBackward
	NavigationJump
)

// PageRequest asks for one page or thumbnail of a book
type PageRequest struct {
	BookID string
	Source catalog.Source
	Ref    string
}

func (r PageRequest) key() string {
	return r.BookID + "|" + r.Ref
}

// PageImage is a cached decoded page. Failed pages hold a placeholder and
// report their size as unknown.
type PageImage struct {
	Image  *ebiten.Image
	Width  int
	Height int
	Failed bool
}

// PreloadStats provides statistics about preloading
type PreloadStats struct {
	QueueSize     int
	LoadedCount   int
	FailedCount   int
	LastDirection NavigationDirection
}

// PageLoader decodes pages in a background worker into an LRU cache. The
// game loop polls Get; a miss queues the page and returns nothing.
type PageLoader struct {
	cache    *lru.Cache[string, *PageImage]
	requests chan PageRequest
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
	wg       sync.WaitGroup

	mu             sync.Mutex
	pending        map[string]bool
	failed         map[string]string // key to error text; failed pages are never retried
	stats          PreloadStats
	maxPreload     int
	preloadEnabled bool
}

// NewPageLoader creates a PageLoader and starts its worker
func NewPageLoader(cacheSize, maxPreload int, preloadEnabled bool, logger *slog.Logger) (*PageLoader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cache, err := lru.NewWithEvict[string, *PageImage](cacheSize, func(_ string, page *PageImage) {
		if page != nil && page.Image != nil {
			page.Image.Deallocate()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	pl := &PageLoader{
		cache:          cache,
		requests:       make(chan PageRequest, 64),
		ctx:            ctx,
		cancel:         cancel,
		logger:         logger,
		pending:        make(map[string]bool),
		failed:         make(map[string]string),
		maxPreload:     maxPreload,
		preloadEnabled: preloadEnabled,
	}

	pl.wg.Add(1)
	go pl.worker()

	return pl, nil
}

// Shutdown stops the worker and frees the cached images.
func (pl *PageLoader) Shutdown() error {
	pl.cancel()
	pl.wg.Wait()
	pl.cache.Purge()
	return nil
}

// Reset drops every cached and queued page and forgets failures, e.g.
// after the library changed on disk.
func (pl *PageLoader) Reset() {
	pl.dropQueued()
	pl.mu.Lock()
	clear(pl.failed)
	pl.mu.Unlock()
	pl.cache.Purge()
}

// Get returns the cached page, queueing it when missing.
func (pl *PageLoader) Get(req PageRequest) (*PageImage, bool) {
	if req.Source == nil || req.Ref == "" {
		return nil, false
	}
	key := req.key()
	if page, ok := pl.cache.Get(key); ok {
		return page, true
	}

	pl.mu.Lock()
	reason, failed := pl.failed[key]
	pl.mu.Unlock()
	if failed {
		page := &PageImage{Image: CreateErrorImage(400, 300, req.Ref, reason), Failed: true}
		pl.cache.Add(key, page)
		return page, true
	}

	pl.enqueue(req)
	return nil, false
}

// enqueue queues req unless it is already pending. A full queue drops the request;
// the next Get asks again.
func (pl *PageLoader) enqueue(req PageRequest) {
	key := req.key()
	pl.mu.Lock()
	if pl.pending[key] {
		pl.mu.Unlock()
		return
	}
	pl.pending[key] = true
	pl.mu.Unlock()

	select {
	case pl.requests <- req:
	default:
		pl.mu.Lock()
		delete(pl.pending, key)
		pl.mu.Unlock()
		pl.logger.Debug("page request queue full, dropping", "book_id", req.BookID, "ref", req.Ref)
	}
}

// dropQueued discards requests that have not started yet
func (pl *PageLoader) dropQueued() {
	for {
		select {
		case req := <-pl.requests:
			pl.mu.Lock()
			delete(pl.pending, req.key())
			pl.mu.Unlock()
		default:
			return
		}
	}
}

// Preload queues the pages of the shown spread first, then the pages of
// the spreads around it in the direction of travel.
func (pl *PageLoader) Preload(book catalog.Book, d spread.Display, direction NavigationDirection) {
	pl.dropQueued()

	for _, index := range spreadPages(d.Index) {
		if ref, ok := book.PageRef(index); ok {
			pl.queueIfMissing(PageRequest{BookID: book.ID, Source: book.Source, Ref: ref})
		}
	}

	pl.mu.Lock()
	enabled := pl.preloadEnabled
	pl.stats.LastDirection = direction
	pl.mu.Unlock()
	if !enabled {
		return
	}

	for _, s := range pl.calculatePreloadSpreads(d.Index, direction, book.Spreads) {
		for _, index := range spreadPages(s) {
			if ref, ok := book.PageRef(index); ok {
				pl.queueIfMissing(PageRequest{BookID: book.ID, Source: book.Source, Ref: ref})
			}
		}
	}
}

func (pl *PageLoader) queueIfMissing(req PageRequest) {
	if pl.cache.Contains(req.key()) {
		return
	}
	pl.enqueue(req)
}

// spreadPages returns the page indices shown on spread s
func spreadPages(s int) []int {
	return []int{s * 2, s*2 + 1}
}

// calculatePreloadSpreads calculates which spreads to preload
func (pl *PageLoader) calculatePreloadSpreads(current int, direction NavigationDirection, total int) []int {
	var spreads []int

	switch direction {
	case NavigationForward:
		for i := 1; i <= pl.maxPreload; i++ {
			if s := current + i; s < total {
				spreads = append(spreads, s)
			}
		}
	case NavigationBackward:
		for i := 1; i <= pl.maxPreload; i++ {
			if s := current - i; s >= 0 {
				spreads = append(spreads, s)
			}
		}
	case NavigationJump:
		half := pl.maxPreload / 2
		if half < 1 {
			half = 1
		}
		for i := 1; i <= half; i++ {
			if s := current + i; s < total {
				spreads = append(spreads, s)
			}
		}
		for i := 1; i <= half; i++ {
			if s := current - i; s >= 0 {
				spreads = append(spreads, s)
			}
		}
	}

	return spreads
}

// Stats returns current preload statistics
func (pl *PageLoader) Stats() PreloadStats {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	stats := pl.stats
	stats.QueueSize = len(pl.requests)
	return stats
}

// CacheLen is the number of cached pages.
func (pl *PageLoader) CacheLen() int {
	return pl.cache.Len()
}

func (pl *PageLoader) worker() {
	defer pl.wg.Done()
	for {
		select {
		case <-pl.ctx.Done():
			return
		case req := <-pl.requests:
			pl.load(req)
		}
	}
}

// load decodes one page into the cache
func (pl *PageLoader) load(req PageRequest) {
	key := req.key()
	defer func() {
		pl.mu.Lock()
		delete(pl.pending, key)
		pl.mu.Unlock()
	}()

	if pl.cache.Contains(key) {
		return
	}

	img, err := decodePage(req.Source, req.Ref)
	if err != nil {
		pl.logger.Warn("failed to load page",
			"book_id", req.BookID,
			"ref", req.Ref,
			"error", err,
		)
		pl.mu.Lock()
		pl.failed[key] = err.Error()
		pl.stats.FailedCount++
		pl.mu.Unlock()
		pl.cache.Add(key, &PageImage{Image: CreateErrorImage(400, 300, req.Ref, err.Error()), Failed: true})
		return
	}

	b := img.Bounds()
	pl.cache.Add(key, &PageImage{
		Image:  ebiten.NewImageFromImage(img),
		Width:  b.Dx(),
		Height: b.Dy(),
	})

	pl.mu.Lock()
	pl.stats.LoadedCount++
	pl.mu.Unlock()

	pl.logger.Debug("page loaded",
		"book_id", req.BookID,
		"ref", req.Ref,
		"cache", pl.cache.Len(),
	)
}

// decodePage reads ref from src and decodes it
func decodePage(src catalog.Source, ref string) (image.Image, error) {
	data, err := src.ReadFile(ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ref, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decoding %s: empty image", ref)
	}
	return img, nil
}
