package gesture

import (
	"math"
	"time"
)

// State is either Idle or Tracking.
type State interface {
	isState()
}

// Idle waits for the first contact.
type Idle struct{}

// Tracking follows one interaction from its first contact.
type Tracking struct {
	Kind      Kind
	Bounds    Rect
	Anchor    Point
	StartedAt time.Time
	Last      Point

	// Pinching is set once a second contact joined the interaction.
	Pinching     bool
	InitialSpan  float64
	ReportedSpan float64 // scale of the last pinch event, 1 when none yet
}

func (Idle) isState()     {}
func (Tracking) isState() {}

// Start begins an interaction at p. Starting while already tracking abandons
// the previous interaction without an event.
func Start(_ Config, _ State, kind Kind, p Point, at time.Time, bounds Rect) (State, []Event) {
	return Tracking{
		Kind:         kind,
		Bounds:       bounds,
		Anchor:       p,
		StartedAt:    at,
		Last:         p,
		ReportedSpan: 1,
	}, nil
}

// AddContact registers a second simultaneous contact. The interaction keeps
// tracking but is classified as a pinch from now on.
func AddContact(_ Config, s State, primary, secondary Point) (State, []Event) {
	tr, ok := s.(Tracking)
	if !ok {
		return s, nil
	}
	span := distance(primary, secondary)
	if span <= 0 {
		// Coincident contacts carry no scale information yet.
		span = 1
	}
	tr.Pinching = true
	tr.InitialSpan = span
	tr.ReportedSpan = 1
	tr.Last = primary
	return tr, nil
}

// Move updates the interaction. With a second contact present the distance
// ratio is reported once it moved more than the pinch step since the last
// report. Single-contact moves only update the last known point.
func Move(cfg Config, s State, primary Point, secondary *Point) (State, []Event) {
	tr, ok := s.(Tracking)
	if !ok {
		return s, nil
	}
	tr.Last = primary
	if !tr.Pinching || secondary == nil {
		return tr, nil
	}

	scale := distance(primary, *secondary) / tr.InitialSpan
	if math.Abs(scale-tr.ReportedSpan) <= cfg.PinchStep {
		return tr, nil
	}
	tr.ReportedSpan = scale
	return tr, []Event{{Type: EventPinch, Scale: scale, At: primary}}
}

// End finishes the interaction at p and classifies it.
func End(cfg Config, s State, p Point, at time.Time) (State, []Event) {
	tr, ok := s.(Tracking)
	if !ok {
		return Idle{}, nil
	}
	if tr.Pinching {
		return Idle{}, []Event{{Type: EventPinchEnd, Scale: tr.ReportedSpan, At: p}}
	}

	dx := p.X - tr.Anchor.X
	dy := p.Y - tr.Anchor.Y
	dist := math.Hypot(dx, dy)
	elapsed := at.Sub(tr.StartedAt)

	if dist > cfg.SwipeThreshold && elapsed < cfg.SwipeTimeLimit {
		return Idle{}, []Event{{Type: EventSwipe, Direction: direction(dx, dy), At: p}}
	}
	if dist < cfg.tapRadius(tr.Kind) && elapsed < cfg.TapTimeLimit {
		side := SideLeft
		if p.X >= tr.Bounds.MidX() {
			side = SideRight
		}
		return Idle{}, []Event{{Type: EventTap, Side: side, At: p}}
	}
	return Idle{}, nil
}

// Cancel ends the interaction at its last known point, as when the pointer
// leaves the element or the platform aborts the touch.
func Cancel(cfg Config, s State, at time.Time) (State, []Event) {
	tr, ok := s.(Tracking)
	if !ok {
		return Idle{}, nil
	}
	return End(cfg, tr, tr.Last, at)
}

func direction(dx, dy float64) Direction {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return SwipeRight
		}
		return SwipeLeft
	}
	if dy > 0 {
		return SwipeDown
	}
	return SwipeUp
}
