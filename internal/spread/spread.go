// Package spread turns a flat page list into two-page spreads and sizes the
// page boxes for a usable viewport.
package spread

import "math"

// Minimum legible page box. The floor wins over containment in the viewport.
const (
	MinBoxWidth  = 120
	MinBoxHeight = 160
)

// Box is the pixel size each page image occupies.
type Box struct {
	Width  int
	Height int
}

// IsZero reports whether the box is not ready to paint.
func (b Box) IsZero() bool {
	return b.Width == 0 && b.Height == 0
}

// Display is the derived view of one spread.
type Display struct {
	Index int
	// Left and Right are page references; empty when the slot has no page.
	Left  string
	Right string
	First bool
	Last  bool
	Box   Box
}

// HasRight reports whether the spread shows a second page.
func (d Display) HasRight() bool {
	return d.Right != ""
}

// TotalSpreads returns ceil(pageCount/2).
func TotalSpreads(pageCount int) int {
	if pageCount <= 0 {
		return 0
	}
	return (pageCount + 1) / 2
}

// PageAt returns the page at index, or false when index is outside pages.
func PageAt(pages []string, index int) (string, bool) {
	if index < 0 || index >= len(pages) {
		return "", false
	}
	return pages[index], true
}

// Compute maps a spread index to its pages. The caller keeps index within
// [0, TotalSpreads(len(pages))).
func Compute(pages []string, index int) Display {
	total := TotalSpreads(len(pages))
	left, _ := PageAt(pages, index*2)
	right, _ := PageAt(pages, index*2+1)
	return Display{
		Index: index,
		Left:  left,
		Right: right,
		First: index == 0,
		Last:  index == total-1,
	}
}

// FitBox returns the largest page box such that two boxes side by side fit
// the usable area at the given width/height ratio. A non-positive ratio or an
// unmeasured viewport yields the zero box.
func FitBox(usableWidth, usableHeight int, ratio float64) Box {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) || usableWidth <= 0 || usableHeight <= 0 {
		return Box{}
	}

	w := float64(usableHeight) * ratio
	h := float64(usableHeight)
	if 2*w > float64(usableWidth) {
		w = float64(usableWidth) / 2
		h = w / ratio
	}

	box := Box{Width: int(math.Floor(w)), Height: int(math.Floor(h))}
	if box.Width < MinBoxWidth {
		box.Width = MinBoxWidth
	}
	if box.Height < MinBoxHeight {
		box.Height = MinBoxHeight
	}
	return box
}
