package main

import (
	"context"

	"picbook/internal/catalog"
	"picbook/internal/library"
)

// Library screen layout
const (
	libraryHeaderHeight = 170
	libraryRowHeight    = 96
	libraryThumbSize    = 80
	libraryMargin       = 20
)

// LibraryView holds the state of the bookshelf screen: the search query,
// the category filter, the cursor and the last computed snapshot.
type LibraryView struct {
	query     string
	searching bool

	categories  []string
	categoryIdx int // 0 is all categories
	tags        []string
	tagIdx      int // 0 is any tag

	cursor int
	scroll int

	snapshot library.Snapshot
	dirty    bool
	err      error
}

// NewLibraryView creates a LibraryView that refreshes on first use
func NewLibraryView() *LibraryView {
	return &LibraryView{dirty: true}
}

// Filter returns the current search and category filter
func (v *LibraryView) Filter() library.Filter {
	return library.Filter{Query: v.query, Category: v.Category(), Tag: v.Tag()}
}

// Category returns the selected category, empty for all
func (v *LibraryView) Category() string {
	if v.categoryIdx <= 0 || v.categoryIdx > len(v.categories) {
		return ""
	}
	return v.categories[v.categoryIdx-1]
}

// Tag returns the selected tag, empty for any
func (v *LibraryView) Tag() string {
	if v.tagIdx <= 0 || v.tagIdx > len(v.tags) {
		return ""
	}
	return v.tags[v.tagIdx-1]
}

// Query returns the search text
func (v *LibraryView) Query() string {
	return v.query
}

// Searching reports whether the search field has focus
func (v *LibraryView) Searching() bool {
	return v.searching
}

// Snapshot returns the last computed shelf
func (v *LibraryView) Snapshot() library.Snapshot {
	return v.snapshot
}

// Err returns the error of the last refresh, if any
func (v *LibraryView) Err() error {
	return v.err
}

// Invalidate marks the shelf for recomputation on the next Refresh
func (v *LibraryView) Invalidate() {
	v.dirty = true
}

// Dirty reports whether the shelf needs recomputation
func (v *LibraryView) Dirty() bool {
	return v.dirty
}

// Refresh recomputes the shelf when it is dirty. A progress error still
// produces a shelf; it is kept in Err.
func (v *LibraryView) Refresh(ctx context.Context, cat *catalog.Catalog, store library.ProgressLister) {
	if !v.dirty || cat == nil {
		return
	}
	v.dirty = false

	v.categories, v.categoryIdx = cat.Categories(), reselect(cat.Categories(), v.Category())
	v.tags, v.tagIdx = cat.Tags(), reselect(cat.Tags(), v.Tag())

	snap, err := library.Build(ctx, cat, store, v.Filter())
	v.err = err
	if err != nil && snap.Entries == nil {
		// search failed; keep the previous rows
		return
	}
	v.snapshot = snap
	v.clampCursor()
}

// reselect finds selected in values again after a reload, 0 when it is gone
func reselect(values []string, selected string) int {
	if selected == "" {
		return 0
	}
	for i, value := range values {
		if value == selected {
			return i + 1
		}
	}
	return 0
}

func (v *LibraryView) clampCursor() {
	n := len(v.snapshot.Entries)
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// Cursor returns the index of the selected row
func (v *LibraryView) Cursor() int {
	return v.cursor
}

// Selected returns the entry under the cursor
func (v *LibraryView) Selected() (library.Entry, bool) {
	if v.cursor < 0 || v.cursor >= len(v.snapshot.Entries) {
		return library.Entry{}, false
	}
	return v.snapshot.Entries[v.cursor], true
}

// MoveCursor moves the selection by delta rows, clamped to the list
func (v *LibraryView) MoveCursor(delta int) {
	v.cursor += delta
	v.clampCursor()
}

// Select moves the cursor to row i when it exists
func (v *LibraryView) Select(i int) bool {
	if i < 0 || i >= len(v.snapshot.Entries) {
		return false
	}
	v.cursor = i
	return true
}

// CycleCategory steps through "all" and each category, wrapping around
func (v *LibraryView) CycleCategory(delta int) {
	n := len(v.categories) + 1
	v.categoryIdx = ((v.categoryIdx+delta)%n + n) % n
	v.resetFilter()
}

// CycleTag steps through "any" and each tag, wrapping around
func (v *LibraryView) CycleTag(delta int) {
	n := len(v.tags) + 1
	v.tagIdx = ((v.tagIdx+delta)%n + n) % n
	v.resetFilter()
}

// BeginSearch focuses the search field
func (v *LibraryView) BeginSearch() {
	v.searching = true
}

// EndSearch leaves the search field. Without keep the query is cleared.
func (v *LibraryView) EndSearch(keep bool) {
	v.searching = false
	if !keep && v.query != "" {
		v.query = ""
		v.resetFilter()
	}
}

// AppendQuery adds typed characters to the search text
func (v *LibraryView) AppendQuery(chars []rune) {
	if len(chars) == 0 {
		return
	}
	v.query += string(chars)
	v.resetFilter()
}

// Backspace removes the last character of the search text
func (v *LibraryView) Backspace() {
	r := []rune(v.query)
	if len(r) == 0 {
		return
	}
	v.query = string(r[:len(r)-1])
	v.resetFilter()
}

func (v *LibraryView) resetFilter() {
	v.cursor = 0
	v.scroll = 0
	v.dirty = true
}

// visibleRows is how many rows fit below the header
func visibleRows(screenHeight int) int {
	rows := (screenHeight - libraryHeaderHeight) / libraryRowHeight
	if rows < 1 {
		return 1
	}
	return rows
}

// Window returns the range of rows to draw for the given row capacity,
// scrolled so the cursor is visible.
func (v *LibraryView) Window(rows int) (start, end int) {
	if rows < 1 {
		rows = 1
	}
	if v.cursor < v.scroll {
		v.scroll = v.cursor
	}
	if v.cursor >= v.scroll+rows {
		v.scroll = v.cursor - rows + 1
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
	end = v.scroll + rows
	if n := len(v.snapshot.Entries); end > n {
		end = n
	}
	return v.scroll, end
}

// RowAt returns the entry index drawn at screen height y
func (v *LibraryView) RowAt(y int) (int, bool) {
	row, ok := libraryRowAt(y)
	if !ok {
		return 0, false
	}
	i := v.scroll + row
	if i >= len(v.snapshot.Entries) {
		return 0, false
	}
	return i, true
}

// libraryRowAt returns the visible row drawn at screen height y
func libraryRowAt(y int) (int, bool) {
	if y < libraryHeaderHeight {
		return 0, false
	}
	return (y - libraryHeaderHeight) / libraryRowHeight, true
}
