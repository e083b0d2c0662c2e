// Package reader owns the reading position of the open book and turns
// gestures and commands into spread changes.
package reader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"picbook/internal/catalog"
	"picbook/internal/progress"
	"picbook/internal/spread"
	"picbook/internal/viewport"
)

// Zoom limits for pinch scaling.
const (
	MinZoom       = 1.0
	MaxZoom       = 3.0
	zoomSnapBelow = 1.1
)

// ProgressStore is the part of the progress store the controller needs.
type ProgressStore interface {
	Save(ctx context.Context, p progress.Progress) error
	Get(ctx context.Context, bookID string) (progress.Progress, error)
}

// Fullscreen switches the window between fullscreen and windowed.
type Fullscreen interface {
	IsFullscreen() bool
	SetFullscreen(on bool)
}

// Options configures a Controller.
type Options struct {
	Store       ProgressStore
	Fullscreen  Fullscreen
	Logger      *slog.Logger
	RightToLeft bool
	// Now is the clock used for progress timestamps.
	Now func() time.Time
}

// Controller owns currentSpread for the open book. It is driven from the
// game loop and is not safe for concurrent use.
type Controller struct {
	store       ProgressStore
	writer      *progressWriter
	fullscreen  Fullscreen
	logger      *slog.Logger
	now         func() time.Time
	rightToLeft bool

	book    *catalog.Book
	current int
	aspect  spread.AspectLock
	usable  viewport.Usable
	zoom    float64
	display spread.Display
	// pinchBase is the zoom when the running pinch started, 0 between pinches.
	pinchBase float64

	subs    map[int]func(spread.Display)
	nextSub int
}

// New creates a controller with no open book.
func New(opts Options) *Controller {
	c := &Controller{
		store:       opts.Store,
		fullscreen:  opts.Fullscreen,
		logger:      opts.Logger,
		now:         opts.Now,
		rightToLeft: opts.RightToLeft,
		zoom:        MinZoom,
		subs:        make(map[int]func(spread.Display)),
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.store != nil {
		c.writer = newProgressWriter(c.store, c.logger)
	}
	return c
}

// Open makes book the current book and restores its saved position.
func (c *Controller) Open(ctx context.Context, book catalog.Book) {
	c.book = &book
	c.aspect.Reset()
	c.zoom = MinZoom
	c.pinchBase = 0
	c.current = c.restore(ctx, book)

	c.logger.Info("opened book",
		"book_id", book.ID,
		"spread", c.current,
		"total_spreads", book.Spreads,
	)
	c.publish()
}

func (c *Controller) restore(ctx context.Context, book catalog.Book) int {
	if c.store == nil {
		return 0
	}
	if err := c.writer.flush(ctx); err != nil {
		c.logger.Warn("pending progress not written before restore", "error", err)
	}
	p, err := c.store.Get(ctx, book.ID)
	switch {
	case errors.Is(err, progress.ErrNotFound):
		return 0
	case err != nil:
		c.logger.Warn("failed to restore progress", "book_id", book.ID, "error", err)
		return 0
	}
	return p.Clamp(book.Spreads)
}

// Close forgets the open book.
func (c *Controller) Close() {
	c.book = nil
	c.current = 0
	c.aspect.Reset()
	c.zoom = MinZoom
	c.pinchBase = 0
	c.publish()
}

// Book returns the open book.
func (c *Controller) Book() (catalog.Book, bool) {
	if c.book == nil {
		return catalog.Book{}, false
	}
	return *c.book, true
}

// Current is the index of the shown spread.
func (c *Controller) Current() int {
	return c.current
}

// TotalSpreads of the open book, 0 when none is open.
func (c *Controller) TotalSpreads() int {
	if c.book == nil {
		return 0
	}
	return c.book.Spreads
}

// Advance moves by delta spreads. Moves that would leave [0, totalSpreads)
// are rejected and return false.
func (c *Controller) Advance(delta int) bool {
	if c.book == nil || delta == 0 {
		return false
	}
	next := c.current + delta
	if next < 0 || next >= c.book.Spreads {
		return false
	}
	c.goTo(next)
	return true
}

// Next shows the following spread.
func (c *Controller) Next() bool { return c.Advance(1) }

// Previous shows the preceding spread.
func (c *Controller) Previous() bool { return c.Advance(-1) }

// First jumps to the first spread.
func (c *Controller) First() bool {
	if c.book == nil || c.current == 0 {
		return false
	}
	c.goTo(0)
	return true
}

// Last jumps to the last spread.
func (c *Controller) Last() bool {
	if c.book == nil || c.current == c.book.Spreads-1 {
		return false
	}
	c.goTo(c.book.Spreads - 1)
	return true
}

func (c *Controller) goTo(index int) {
	c.current = index
	c.zoom = MinZoom
	c.pinchBase = 0
	c.publish()
	c.save()
}

// save queues the position for the writer goroutine. Failures are logged
// there and never block navigation.
func (c *Controller) save() {
	if c.writer == nil || c.book == nil {
		return
	}
	c.writer.enqueue(progress.New(c.book.ID, c.current, c.book.Spreads, c.now()))
}

// Flush waits until every queued position is written.
func (c *Controller) Flush(ctx context.Context) error {
	if c.writer == nil {
		return nil
	}
	return c.writer.flush(ctx)
}

// Shutdown writes queued positions and stops the writer. Call it before
// closing the store.
func (c *Controller) Shutdown(ctx context.Context) error {
	if c.writer == nil {
		return nil
	}
	return c.writer.close(ctx)
}

// ImageDecoded records the size of a decoded page of the open book. The
// first call locks the aspect ratio; later calls are ignored.
func (c *Controller) ImageDecoded(width, height int) {
	if c.aspect.Lock(width, height) {
		ratio, _ := c.aspect.Ratio()
		c.logger.Debug("aspect ratio locked", "ratio", ratio, "width", width, "height", height)
		c.publish()
	}
}

// AspectRatio returns the locked ratio.
func (c *Controller) AspectRatio() (float64, bool) {
	return c.aspect.Ratio()
}

// SetViewport recomputes the page box for a new usable viewport.
func (c *Controller) SetViewport(u viewport.Usable) {
	c.usable = u
	c.publish()
}

// Display returns the current spread.
func (c *Controller) Display() spread.Display {
	return c.display
}

// Area returns the usable area in window coordinates.
func (c *Controller) Area() spread.Area {
	return spread.Area{
		X:      c.usable.Insets.Left,
		Y:      c.usable.Insets.Top,
		Width:  c.usable.Width,
		Height: c.usable.Height,
	}
}

// Slots returns where the two pages of the current spread are drawn.
func (c *Controller) Slots() spread.Slots {
	return spread.Layout(c.display.Box, c.Area(), c.rightToLeft)
}

// RightToLeft reports the reading direction.
func (c *Controller) RightToLeft() bool {
	return c.rightToLeft
}

// SetRightToLeft changes the reading direction.
func (c *Controller) SetRightToLeft(rtl bool) {
	if c.rightToLeft == rtl {
		return
	}
	c.rightToLeft = rtl
	c.publish()
}

// Zoom is the pinch zoom factor of the current spread.
func (c *Controller) Zoom() float64 {
	return c.zoom
}

// Subscribe registers fn to run after every display change and returns a
// function that removes it.
func (c *Controller) Subscribe(fn func(spread.Display)) (cancel func()) {
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() { delete(c.subs, id) }
}

func (c *Controller) publish() {
	if c.book == nil {
		c.display = spread.Display{}
	} else {
		c.display = spread.Compute(c.book.Pages, c.current)
		if ratio, ok := c.aspect.Ratio(); ok {
			c.display.Box = spread.FitBox(c.usable.Width, c.usable.Height, ratio)
		}
	}
	for _, fn := range c.subs {
		fn(c.display)
	}
}
