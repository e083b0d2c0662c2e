// Package library derives the bookshelf view from the catalog and the
// stored reading progress.
package library

import (
	"context"
	"fmt"
	"math"
	"sort"

	"picbook/internal/catalog"
	"picbook/internal/progress"
)

// DefaultRecentLimit is how many recently read books the shelf shows.
const DefaultRecentLimit = 5

// ProgressLister lists every stored progress record.
type ProgressLister interface {
	All(ctx context.Context) ([]progress.Progress, error)
}

// Entry is a book with its progress, if any.
type Entry struct {
	Book     catalog.Book
	Progress *progress.Progress
}

// Percent is the read share of the book, 0 when never opened.
func (e Entry) Percent() int {
	if e.Progress == nil {
		return 0
	}
	return e.Progress.Percent()
}

// Completed reports whether the book was read to the end.
func (e Entry) Completed() bool {
	return e.Progress != nil && e.Progress.Completed
}

// Status is the short progress label shown on the shelf.
func (e Entry) Status() string {
	switch {
	case e.Progress == nil:
		return "New"
	case e.Progress.Completed:
		return "Completed"
	default:
		return fmt.Sprintf("%d%%", e.Percent())
	}
}

// Stats summarizes the library.
type Stats struct {
	TotalBooks     int
	CompletedBooks int
	Categories     []string
	TotalPages     int
	// ReadingRate is the completed share in percent with one decimal.
	ReadingRate float64
}

// Filter narrows the shelf. Empty fields do not filter.
type Filter struct {
	Query    string
	Category string
	Tag      string
}

// Snapshot is everything the shelf screen shows, computed at one moment.
type Snapshot struct {
	Entries []Entry
	Recent  []Entry
	Stats   Stats
}

// Progresses loads every progress record keyed by book id. A failing store
// yields an empty map; the shelf still works without progress.
func Progresses(ctx context.Context, store ProgressLister) (map[string]progress.Progress, error) {
	out := make(map[string]progress.Progress)
	if store == nil {
		return out, nil
	}
	all, err := store.All(ctx)
	if err != nil {
		return out, err
	}
	for _, p := range all {
		out[p.BookID] = p
	}
	return out, nil
}

func entry(b catalog.Book, byID map[string]progress.Progress) Entry {
	e := Entry{Book: b}
	if p, ok := byID[b.ID]; ok {
		e.Progress = &p
	}
	return e
}

// Recent returns up to limit catalog books with progress, most recently
// read first.
func Recent(cat *catalog.Catalog, byID map[string]progress.Progress, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var out []Entry
	for _, b := range cat.Books() {
		if _, ok := byID[b.ID]; ok {
			out = append(out, entry(b, byID))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Progress.LastRead.After(out[j].Progress.LastRead)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeStats summarizes cat with the given progress.
func ComputeStats(cat *catalog.Catalog, byID map[string]progress.Progress) Stats {
	s := Stats{
		TotalBooks: cat.Len(),
		Categories: cat.Categories(),
		TotalPages: cat.TotalPages(),
	}
	for _, b := range cat.Books() {
		if p, ok := byID[b.ID]; ok && p.Completed {
			s.CompletedBooks++
		}
	}
	if s.TotalBooks > 0 {
		rate := float64(s.CompletedBooks) / float64(s.TotalBooks) * 100
		s.ReadingRate = math.Round(rate*10) / 10
	}
	return s
}

// Apply returns the books matching f in catalog order: search first, then
// category, then tag.
func Apply(ctx context.Context, cat *catalog.Catalog, f Filter) ([]catalog.Book, error) {
	books, err := cat.Search(ctx, f.Query)
	if err != nil {
		return nil, err
	}
	out := books[:0:0]
	for _, b := range books {
		if f.Category != "" && b.Category != f.Category {
			continue
		}
		if f.Tag != "" && !b.HasTag(f.Tag) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Build computes the shelf for f.
func Build(ctx context.Context, cat *catalog.Catalog, store ProgressLister, f Filter) (Snapshot, error) {
	byID, perr := Progresses(ctx, store)

	books, err := Apply(ctx, cat, f)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Entries: make([]Entry, 0, len(books)),
		Recent:  Recent(cat, byID, DefaultRecentLimit),
		Stats:   ComputeStats(cat, byID),
	}
	for _, b := range books {
		snap.Entries = append(snap.Entries, entry(b, byID))
	}
	if perr != nil {
		return snap, fmt.Errorf("load progress: %w", perr)
	}
	return snap, nil
}
