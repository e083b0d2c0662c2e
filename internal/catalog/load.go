package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"picbook/internal/spread"
)

// DefaultConcurrency bounds parallel metadata reads.
const DefaultConcurrency = 4

// LoadOptions configures Load.
type LoadOptions struct {
	Root        string
	SortMethod  int
	Concurrency int
	Logger      *slog.Logger
}

// Load reads every book under opts.Root and builds a catalog. A book whose
// metadata is missing or invalid is skipped and logged; only an unreadable
// library root fails the whole load.
func Load(ctx context.Context, opts LoadOptions) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	sorter := GetSortStrategy(opts.SortMethod)

	entries, err := os.ReadDir(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", opts.Root, err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() || IsArchive(e.Name()) {
			names = append(names, e.Name())
		}
	}
	names = NaturalSort{}.Sort(names)

	loaded := make([]*Book, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := filepath.Join(opts.Root, name)
			book, err := loadBook(p, sorter)
			if err != nil {
				logger.Warn("skipping book", "path", p, "error", err)
				return nil
			}
			loaded[i] = book
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	books := make([]*Book, 0, len(loaded))
	seen := make(map[string]string)
	for _, b := range loaded {
		if b == nil {
			continue
		}
		if prev, dup := seen[b.ID]; dup {
			logger.Warn("skipping duplicate book id",
				"book_id", b.ID,
				"path", b.Source.Location(),
				"first", prev,
			)
			continue
		}
		seen[b.ID] = b.Source.Location()
		if b.TotalPages != len(b.Pages) {
			logger.Warn("totalPages disagrees with pages, using page count",
				"book_id", b.ID,
				"total_pages", b.TotalPages,
				"pages", len(b.Pages),
			)
			b.TotalPages = len(b.Pages)
		}
		books = append(books, b)
	}

	logger.Info("catalog loaded", "root", opts.Root, "books", len(books), "skipped", len(names)-len(books))
	return New(books)
}

func loadBook(p string, sorter SortStrategy) (*Book, error) {
	src, err := OpenSource(p)
	if err != nil {
		return nil, err
	}
	entries, err := src.Entries()
	if err != nil {
		return nil, err
	}

	meta, ok := findMetadata(entries)
	if !ok {
		return nil, fmt.Errorf("no %s in %s", MetadataFile, p)
	}
	data, err := src.ReadFile(meta)
	if err != nil {
		return nil, err
	}

	var b Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", meta, err)
	}
	b.Source = src
	b.Base = path.Dir(meta)

	if len(b.Pages) == 0 {
		b.Pages = discoverPages(entries, b.Base, b.Thumbnail, sorter)
		b.TotalPages = len(b.Pages)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.Spreads = spread.TotalSpreads(len(b.Pages))
	return &b, nil
}

// findMetadata picks the shallowest metadata file, so archives that wrap
// everything in one top-level folder still load.
func findMetadata(entries []string) (string, bool) {
	best, depth := "", -1
	for _, e := range entries {
		if path.Base(e) != MetadataFile {
			continue
		}
		d := strings.Count(e, "/")
		if depth < 0 || d < depth {
			best, depth = e, d
		}
	}
	return best, depth >= 0
}

// discoverPages lists the images under base, minus the thumbnail, as
// references relative to base.
func discoverPages(entries []string, base, thumbnail string, sorter SortStrategy) []string {
	prefix := ""
	if base != "." && base != "" {
		prefix = base + "/"
	}
	thumb := path.Clean(thumbnail)

	var pages []string
	for _, e := range entries {
		if !IsImage(e) || !strings.HasPrefix(e, prefix) {
			continue
		}
		rel := strings.TrimPrefix(e, prefix)
		if thumbnail != "" && rel == thumb {
			continue
		}
		pages = append(pages, rel)
	}
	return sorter.Sort(pages)
}

// IsNotFound reports whether err means a missing entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) || errors.Is(err, os.ErrNotExist)
}
