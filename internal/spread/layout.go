package spread

import "image"

// Area is the usable region of the window: its size and where it starts.
type Area struct {
	X, Y          int
	Width, Height int
}

// Slots are the screen rectangles of the two page boxes of a spread.
type Slots struct {
	Left  image.Rectangle
	Right image.Rectangle
}

// Layout centers the two page boxes of a spread inside area. With
// rightToLeft the first page of the spread is placed on the right.
// A single-page final spread keeps its slot position so the page does not
// jump when the reader turns onto it.
func Layout(box Box, area Area, rightToLeft bool) Slots {
	if box.IsZero() {
		return Slots{}
	}

	x := area.X + (area.Width-2*box.Width)/2
	y := area.Y + (area.Height-box.Height)/2

	first := image.Rect(x, y, x+box.Width, y+box.Height)
	second := first.Add(image.Pt(box.Width, 0))
	if rightToLeft {
		first, second = second, first
	}
	return Slots{Left: first, Right: second}
}
