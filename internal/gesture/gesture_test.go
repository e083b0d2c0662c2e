package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0     = time.Unix(1700000000, 0)
	screen = Rect{Width: 300, Height: 400}
)

func after(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func single(t *testing.T, events []Event) Event {
	t.Helper()
	require.Len(t, events, 1)
	return events[0]
}

func TestSwipeRightWhenDeltaXPositive(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Start(Touch, Point{100, 100}, t0, screen)
	r.Move(Point{140, 105}, nil)
	ev := single(t, r.End(Point{180, 110}, after(200)))

	assert.Equal(t, EventSwipe, ev.Type)
	assert.Equal(t, SwipeRight, ev.Direction)
	assert.False(t, r.Tracking())
}

func TestSwipeDirections(t *testing.T) {
	tests := []struct {
		name   string
		end    Point
		expect Direction
	}{
		{"left", Point{20, 110}, SwipeLeft},
		{"up", Point{110, 20}, SwipeUp},
		{"down", Point{90, 180}, SwipeDown},
		{"tie resolves horizontal", Point{160, 160}, SwipeRight},
		{"negative tie", Point{40, 40}, SwipeLeft},
	}
	cfg := DefaultConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := Start(cfg, Idle{}, Touch, Point{100, 100}, t0, screen)
			s, events := End(cfg, s, tt.end, after(150))
			assert.Equal(t, Idle{}, s)
			ev := single(t, events)
			assert.Equal(t, EventSwipe, ev.Type)
			assert.Equal(t, tt.expect, ev.Direction)
		})
	}
}

func TestSlowMovementIsNotASwipe(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := Start(cfg, Idle{}, Touch, Point{100, 100}, t0, screen)
	_, events := End(cfg, s, Point{200, 100}, after(300))
	assert.Empty(t, events)
}

func TestSwipeThresholdIsExclusive(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := Start(cfg, Idle{}, Touch, Point{100, 100}, t0, screen)
	_, events := End(cfg, s, Point{150, 100}, after(100))
	assert.Empty(t, events, "exactly 50px is neither swipe nor tap")
}

func TestTapSides(t *testing.T) {
	cfg := DefaultConfig()

	s, _ := Start(cfg, Idle{}, Touch, Point{60, 200}, t0, screen)
	ev := single(t, second(End(cfg, s, Point{63, 204}, after(100))))
	assert.Equal(t, EventTap, ev.Type)
	assert.Equal(t, SideLeft, ev.Side)

	s, _ = Start(cfg, Idle{}, Touch, Point{250, 200}, t0, screen)
	ev = single(t, second(End(cfg, s, Point{250, 205}, after(100))))
	assert.Equal(t, SideRight, ev.Side)
}

func TestTapUsesBoundsOffset(t *testing.T) {
	cfg := DefaultConfig()
	bounds := Rect{X: 300, Width: 300, Height: 400}
	s, _ := Start(cfg, Idle{}, Mouse, Point{420, 10}, t0, bounds)
	ev := single(t, second(End(cfg, s, Point{420, 10}, after(50))))
	assert.Equal(t, SideLeft, ev.Side)
}

func TestMouseTapRadiusIsTighter(t *testing.T) {
	cfg := DefaultConfig()

	s, _ := Start(cfg, Idle{}, Mouse, Point{50, 50}, t0, screen)
	_, events := End(cfg, s, Point{62, 50}, after(100))
	assert.Empty(t, events, "12px is a drag for a mouse")

	s, _ = Start(cfg, Idle{}, Touch, Point{50, 50}, t0, screen)
	_, events = End(cfg, s, Point{62, 50}, after(100))
	assert.Equal(t, EventTap, single(t, events).Type)
}

func TestLongPressIsNotATap(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := Start(cfg, Idle{}, Touch, Point{50, 50}, t0, screen)
	_, events := End(cfg, s, Point{50, 50}, after(800))
	assert.Empty(t, events)
}

func TestPinchReportsScaleSteps(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Start(Touch, Point{100, 100}, t0, screen)
	r.AddContact(Point{100, 100}, Point{200, 100})

	assert.Empty(t, r.Move(Point{100, 100}, &Point{205, 100}), "5% is below the step")

	ev := single(t, r.Move(Point{100, 100}, &Point{220, 100}))
	assert.Equal(t, EventPinch, ev.Type)
	assert.InDelta(t, 1.2, ev.Scale, 1e-9)

	assert.Empty(t, r.Move(Point{100, 100}, &Point{225, 100}))
	ev = single(t, r.Move(Point{100, 100}, &Point{250, 100}))
	assert.InDelta(t, 1.5, ev.Scale, 1e-9)

	end := single(t, r.End(Point{100, 100}, after(900)))
	assert.Equal(t, EventPinchEnd, end.Type)
	assert.InDelta(t, 1.5, end.Scale, 1e-9)
	assert.False(t, r.Tracking())
}

func TestPinchNeverClassifiesAsSwipe(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Start(Touch, Point{100, 100}, t0, screen)
	r.AddContact(Point{100, 100}, Point{150, 100})
	ev := single(t, r.End(Point{300, 100}, after(100)))
	assert.Equal(t, EventPinchEnd, ev.Type)
}

func TestCancelEndsAtLastKnownPoint(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Start(Mouse, Point{200, 100}, t0, screen)
	r.Move(Point{120, 100}, nil)
	ev := single(t, r.Cancel(after(150)))
	assert.Equal(t, EventSwipe, ev.Type)
	assert.Equal(t, SwipeLeft, ev.Direction)
	assert.Equal(t, Idle{}, r.State())
}

func TestInputsWhileIdleAreIgnored(t *testing.T) {
	cfg := DefaultConfig()
	var s State = Idle{}

	s, events := Move(cfg, s, Point{1, 1}, nil)
	assert.Empty(t, events)
	s, events = AddContact(cfg, s, Point{1, 1}, Point{2, 2})
	assert.Empty(t, events)
	s, events = End(cfg, s, Point{1, 1}, t0)
	assert.Empty(t, events)
	s, events = Cancel(cfg, s, t0)
	assert.Empty(t, events)
	assert.Equal(t, Idle{}, s)
}

func TestRestartAbandonsPreviousInteraction(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Start(Touch, Point{0, 0}, t0, screen)
	r.Start(Touch, Point{100, 100}, after(1000), screen)
	ev := single(t, r.End(Point{102, 100}, after(1100)))
	assert.Equal(t, EventTap, ev.Type)
}

func second(_ State, events []Event) []Event {
	return events
}
