package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// lowerKeyword indexes a whole field value as one lowercased term, which
// turns a regexp query into a case-insensitive substring match.
const lowerKeyword = "lower_keyword"

var searchFields = []string{"title", "description", "author", "tags"}

func buildIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(lowerKeyword, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}

	field := bleve.NewTextFieldMapping()
	field.Analyzer = lowerKeyword
	field.Store = false
	field.IncludeInAll = false
	field.IncludeTermVectors = false

	doc := bleve.NewDocumentMapping()
	for _, name := range searchFields {
		doc.AddFieldMappingsAt(name, field)
	}
	im.DefaultMapping = doc
	im.DefaultAnalyzer = lowerKeyword
	return im, nil
}

func newSearchIndex(books []*Book) (bleve.Index, error) {
	im, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}
	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}

	batch := index.NewBatch()
	for _, b := range books {
		doc := map[string]any{
			"title":       b.Title,
			"description": b.Description,
			"author":      b.Author,
			"tags":        b.Tags,
		}
		if err := batch.Index(b.ID, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("index %s: %w", b.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("index books: %w", err)
	}
	return index, nil
}

func substringQuery(q string) query.Query {
	pattern := ".*" + regexp.QuoteMeta(strings.ToLower(q)) + ".*"
	queries := make([]query.Query, 0, len(searchFields))
	for _, f := range searchFields {
		rq := bleve.NewRegexpQuery(pattern)
		rq.SetField(f)
		queries = append(queries, rq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Search returns the books whose title, description, author or any tag
// contains q, ignoring case, in catalog order. An empty query matches every
// book.
func (c *Catalog) Search(ctx context.Context, q string) ([]Book, error) {
	if q == "" {
		return c.Books(), nil
	}
	if len(c.books) == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(substringQuery(q), len(c.books), 0, false)
	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	hits := make(map[string]struct{}, len(res.Hits))
	for _, h := range res.Hits {
		hits[h.ID] = struct{}{}
	}
	var out []Book
	for _, b := range c.books {
		if _, ok := hits[b.ID]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}
