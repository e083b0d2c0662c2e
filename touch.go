package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"picbook/internal/gesture"
)

// touchPoint is one touch contact in one frame
type touchPoint struct {
	ID ebiten.TouchID
	P  gesture.Point
}

// PointerFrame is the pointer input of one frame
type PointerFrame struct {
	Active   []touchPoint // touches currently down
	Released []touchPoint // touches lifted this frame, at their last position

	MousePressed  bool // left button went down this frame without modifiers
	MouseReleased bool
	Cursor        gesture.Point
}

func findTouch(points []touchPoint, id ebiten.TouchID) (touchPoint, bool) {
	for _, t := range points {
		if t.ID == id {
			return t, true
		}
	}
	return touchPoint{}, false
}

type pointerSource int

const (
	sourceNone pointerSource = iota
	sourceTouch
	sourceMouse
	// sourceDrain ignores touches left down after an interaction ended
	sourceDrain
)

// PointerInput turns per-frame touch and mouse state into gesture events.
// One interaction is tracked at a time: the first touch, or the left mouse
// button when no touch is down.
type PointerInput struct {
	recognizer   *gesture.Recognizer
	mouseEnabled bool

	source       pointerSource
	primary      ebiten.TouchID
	secondary    ebiten.TouchID
	hasSecondary bool

	// previous frame's touches, to report releases with a position
	lastTouches []touchPoint
}

// NewPointerInput creates a PointerInput
func NewPointerInput(cfg gesture.Config, mouseEnabled bool) *PointerInput {
	return &PointerInput{
		recognizer:   gesture.NewRecognizer(cfg),
		mouseEnabled: mouseEnabled,
	}
}

func (p *PointerInput) reset() {
	p.source = sourceNone
	p.hasSecondary = false
}

// Tracking reports whether an interaction is in progress.
func (p *PointerInput) Tracking() bool {
	return p.recognizer.Tracking()
}

// Cancel ends the current interaction at its last known point.
func (p *PointerInput) Cancel(now time.Time) []gesture.Event {
	if p.source == sourceNone || p.source == sourceDrain {
		return nil
	}
	p.reset()
	return p.recognizer.Cancel(now)
}

// Process feeds one frame to the recognizer and returns its events
func (p *PointerInput) Process(f PointerFrame, now time.Time, bounds gesture.Rect) []gesture.Event {
	switch p.source {
	case sourceNone:
		if len(f.Active) > 0 {
			first := f.Active[0]
			p.source = sourceTouch
			p.primary = first.ID
			events := p.recognizer.Start(gesture.Touch, first.P, now, bounds)
			if len(f.Active) > 1 {
				p.secondary = f.Active[1].ID
				p.hasSecondary = true
				events = append(events, p.recognizer.AddContact(first.P, f.Active[1].P)...)
			}
			return events
		}
		if p.mouseEnabled && f.MousePressed && bounds.Contains(f.Cursor) {
			p.source = sourceMouse
			return p.recognizer.Start(gesture.Mouse, f.Cursor, now, bounds)
		}
		return nil

	case sourceTouch:
		if released, ok := findTouch(f.Released, p.primary); ok {
			p.reset()
			if len(f.Active) > 0 {
				p.source = sourceDrain
			}
			return p.recognizer.End(released.P, now)
		}
		primary, ok := findTouch(f.Active, p.primary)
		if !ok {
			return p.Cancel(now)
		}

		var events []gesture.Event
		if !p.hasSecondary {
			for _, t := range f.Active {
				if t.ID != p.primary {
					p.secondary = t.ID
					p.hasSecondary = true
					events = append(events, p.recognizer.AddContact(primary.P, t.P)...)
					break
				}
			}
		}
		var secondary *gesture.Point
		if p.hasSecondary {
			if t, ok := findTouch(f.Active, p.secondary); ok {
				pos := t.P
				secondary = &pos
			}
		}
		return append(events, p.recognizer.Move(primary.P, secondary)...)

	case sourceMouse:
		if f.MouseReleased {
			p.reset()
			return p.recognizer.End(f.Cursor, now)
		}
		if !bounds.Contains(f.Cursor) {
			return p.Cancel(now)
		}
		return p.recognizer.Move(f.Cursor, nil)

	case sourceDrain:
		if len(f.Active) == 0 {
			p.source = sourceNone
		}
	}
	return nil
}

// ReadFrame samples Ebitengine's touch and mouse state for this frame
func (p *PointerInput) ReadFrame() PointerFrame {
	var f PointerFrame

	for _, id := range ebiten.AppendTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		f.Active = append(f.Active, touchPoint{ID: id, P: gesture.Point{X: float64(x), Y: float64(y)}})
	}
	for _, prev := range p.lastTouches {
		if _, still := findTouch(f.Active, prev.ID); !still {
			f.Released = append(f.Released, prev)
		}
	}
	p.lastTouches = append(p.lastTouches[:0], f.Active...)

	cx, cy := ebiten.CursorPosition()
	f.Cursor = gesture.Point{X: float64(cx), Y: float64(cy)}
	f.MousePressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && currentModifiers() == (Modifiers{})
	f.MouseReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	return f
}
