package reader

import (
	"context"
	"log/slog"
	"sync"

	"picbook/internal/progress"
)

// progressWriter saves progress on its own goroutine. Pending records are
// kept per book, so a burst of page turns writes only the latest position.
type progressWriter struct {
	store  ProgressStore
	logger *slog.Logger

	mu      sync.Mutex
	pending []progress.Progress

	wake    chan struct{}
	flushes chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
	stop    sync.Once
}

func newProgressWriter(store ProgressStore, logger *slog.Logger) *progressWriter {
	w := &progressWriter{
		store:   store,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue queues p and returns immediately.
func (w *progressWriter) enqueue(p progress.Progress) {
	w.mu.Lock()
	replaced := false
	for i := range w.pending {
		if w.pending[i].BookID == p.BookID {
			w.pending[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		w.pending = append(w.pending, p)
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *progressWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.writePending()
		case ack := <-w.flushes:
			w.writePending()
			close(ack)
		case <-w.quit:
			w.writePending()
			return
		}
	}
}

func (w *progressWriter) writePending() {
	for {
		w.mu.Lock()
		batch := w.pending
		w.pending = nil
		w.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, p := range batch {
			if err := w.store.Save(context.Background(), p); err != nil {
				w.logger.Warn("failed to save progress",
					"book_id", p.BookID,
					"spread", p.CurrentSpread,
					"error", err,
				)
			}
		}
	}
}

// flush waits until everything queued before the call is written.
func (w *progressWriter) flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushes <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close writes what is pending and stops the goroutine.
func (w *progressWriter) close(ctx context.Context) error {
	w.stop.Do(func() { close(w.quit) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
