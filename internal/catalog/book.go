// Package catalog loads picture-book metadata from a library directory and
// answers lookup, search and filter queries over it.
package catalog

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"

	"picbook/internal/spread"
)

// MetadataFile is the per-book metadata document.
const MetadataFile = "metadata.json"

// Book is one catalog record. Books are immutable once loaded.
type Book struct {
	ID          string   `json:"id" validate:"required,excludesall=/\\"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Pages       []string `json:"pages" validate:"required,min=1,dive,required"`
	TotalPages  int      `json:"totalPages" validate:"gte=0"`
	Thumbnail   string   `json:"thumbnail"`
	Author      string   `json:"author"`
	PublishDate string   `json:"publishDate"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	ReadingTime string   `json:"readingTime"`
	AgeRange    string   `json:"ageRange"`

	// Spreads is ceil(len(Pages)/2), fixed at load.
	Spreads int `json:"-"`
	// Source holds the page bytes.
	Source Source `json:"-"`
	// Base is the directory of the metadata file inside Source; page and
	// thumbnail references are resolved against it.
	Base string `json:"-"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the required metadata fields.
func (b *Book) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid metadata for %q: %w", b.ID, err)
	}
	return nil
}

// Ref resolves a page or thumbnail reference to a Source entry name.
func (b *Book) Ref(ref string) string {
	if b.Base == "" || b.Base == "." {
		return path.Clean(ref)
	}
	return path.Join(b.Base, ref)
}

// PageRef returns the Source entry of page index, or false when out of range.
func (b *Book) PageRef(index int) (string, bool) {
	p, ok := spread.PageAt(b.Pages, index)
	if !ok {
		return "", false
	}
	return b.Ref(p), true
}

// ThumbnailRef returns the Source entry of the thumbnail, falling back to
// the first page.
func (b *Book) ThumbnailRef() string {
	if strings.TrimSpace(b.Thumbnail) != "" {
		return b.Ref(b.Thumbnail)
	}
	ref, _ := b.PageRef(0)
	return ref
}

// HasTag reports whether tag is one of the book's tags.
func (b *Book) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
