package catalog

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"picbook/internal/spread"
)

// Catalog is an immutable set of books in library order. It is safe for
// concurrent readers; reloading builds a new Catalog.
type Catalog struct {
	books []*Book
	byID  map[string]*Book
	index bleve.Index
}

// New builds a catalog over books, which must have unique ids.
func New(books []*Book) (*Catalog, error) {
	byID := make(map[string]*Book, len(books))
	for _, b := range books {
		if _, dup := byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate book id %q", b.ID)
		}
		if b.Spreads == 0 {
			b.Spreads = spread.TotalSpreads(len(b.Pages))
		}
		byID[b.ID] = b
	}
	index, err := newSearchIndex(books)
	if err != nil {
		return nil, err
	}
	return &Catalog{books: books, byID: byID, index: index}, nil
}

// Close releases the search index.
func (c *Catalog) Close() error {
	return c.index.Close()
}

// Len is the number of books.
func (c *Catalog) Len() int {
	return len(c.books)
}

// Books returns every book in library order.
func (c *Catalog) Books() []Book {
	out := make([]Book, len(c.books))
	for i, b := range c.books {
		out[i] = *b
	}
	return out
}

// Book looks up a book by id.
func (c *Catalog) Book(id string) (Book, bool) {
	b, ok := c.byID[id]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// First returns the first book in library order.
func (c *Catalog) First() (Book, bool) {
	if len(c.books) == 0 {
		return Book{}, false
	}
	return *c.books[0], true
}

// ByCategory returns the books with exactly this category.
func (c *Catalog) ByCategory(category string) []Book {
	var out []Book
	for _, b := range c.books {
		if b.Category == category {
			out = append(out, *b)
		}
	}
	return out
}

// ByTag returns the books carrying tag.
func (c *Catalog) ByTag(tag string) []Book {
	var out []Book
	for _, b := range c.books {
		if b.HasTag(tag) {
			out = append(out, *b)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories in first-seen order.
func (c *Catalog) Categories() []string {
	return c.distinct(func(b *Book) []string { return []string{b.Category} })
}

// Tags returns the distinct tags in first-seen order.
func (c *Catalog) Tags() []string {
	return c.distinct(func(b *Book) []string { return b.Tags })
}

func (c *Catalog) distinct(values func(*Book) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range c.books {
		for _, v := range values(b) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// TotalPages sums the page counts of every book.
func (c *Catalog) TotalPages() int {
	n := 0
	for _, b := range c.books {
		n += len(b.Pages)
	}
	return n
}
