// Package gesture classifies pointer and touch interactions into swipes,
// taps and pinches.
//
// The recognizer is a two-state machine, Idle and Tracking, expressed as a
// sealed State interface. Transitions are pure functions of the config, the
// current state and one input sample; they never depend on platform event
// dispatch.
package gesture

import (
	"math"
	"time"
)

// Kind is the input device behind an interaction.
type Kind int

const (
	Touch Kind = iota
	Mouse
)

func (k Kind) String() string {
	if k == Mouse {
		return "mouse"
	}
	return "touch"
}

// Point is a position in screen pixels.
type Point struct {
	X, Y float64
}

// Rect is the bounding element of an interaction.
type Rect struct {
	X, Y, Width, Height float64
}

// MidX is the horizontal midpoint of r.
func (r Rect) MidX() float64 {
	return r.X + r.Width/2
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Config holds the classification thresholds.
type Config struct {
	SwipeThreshold float64       // minimum swipe distance, exclusive
	SwipeTimeLimit time.Duration // maximum swipe duration, exclusive
	TouchTapRadius float64
	MouseTapRadius float64
	TapTimeLimit   time.Duration
	PinchStep      float64 // minimum scale change between pinch events, exclusive
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold: 50,
		SwipeTimeLimit: 300 * time.Millisecond,
		TouchTapRadius: 20,
		MouseTapRadius: 10,
		TapTimeLimit:   300 * time.Millisecond,
		PinchStep:      0.1,
	}
}

func (c Config) tapRadius(k Kind) float64 {
	if k == Mouse {
		return c.MouseTapRadius
	}
	return c.TouchTapRadius
}

// EventType discriminates Event.
type EventType int

const (
	EventSwipe EventType = iota
	EventTap
	EventPinch
	EventPinchEnd
)

// Direction of a swipe.
type Direction int

const (
	SwipeLeft Direction = iota
	SwipeRight
	SwipeUp
	SwipeDown
)

func (d Direction) String() string {
	switch d {
	case SwipeLeft:
		return "left"
	case SwipeRight:
		return "right"
	case SwipeUp:
		return "up"
	default:
		return "down"
	}
}

// Side of the bounding element a tap landed on.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Event is a classified gesture. Only the fields of its Type are set.
type Event struct {
	Type      EventType
	Direction Direction
	Side      Side
	Scale     float64
	At        Point
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
