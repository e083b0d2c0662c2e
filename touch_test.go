package main

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"picbook/internal/gesture"
)

var testBounds = gesture.Rect{X: 0, Y: 0, Width: 1000, Height: 600}

func touch(id ebiten.TouchID, x, y float64) touchPoint {
	return touchPoint{ID: id, P: gesture.Point{X: x, Y: y}}
}

type frameStep struct {
	frame PointerFrame
	after time.Duration
}

// runFrames feeds frames to a fresh PointerInput and collects every event
func runFrames(t *testing.T, mouseEnabled bool, steps []frameStep) ([]gesture.Event, *PointerInput) {
	t.Helper()
	p := NewPointerInput(gesture.DefaultConfig(), mouseEnabled)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var events []gesture.Event
	for _, s := range steps {
		events = append(events, p.Process(s.frame, start.Add(s.after), testBounds)...)
	}
	return events, p
}

func TestPointerInputTouch(t *testing.T) {
	tests := []struct {
		name  string
		steps []frameStep
		want  []gesture.Event
	}{
		{
			name: "tap on the right half",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 700, 300)}}, 0},
				{PointerFrame{Released: []touchPoint{touch(1, 702, 301)}}, 100 * time.Millisecond},
			},
			want: []gesture.Event{{Type: gesture.EventTap, Side: gesture.SideRight, At: gesture.Point{X: 702, Y: 301}}},
		},
		{
			name: "swipe left",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 800, 300)}}, 0},
				{PointerFrame{Active: []touchPoint{touch(1, 600, 305)}}, 80 * time.Millisecond},
				{PointerFrame{Released: []touchPoint{touch(1, 500, 310)}}, 150 * time.Millisecond},
			},
			want: []gesture.Event{{Type: gesture.EventSwipe, Direction: gesture.SwipeLeft, At: gesture.Point{X: 500, Y: 310}}},
		},
		{
			name: "slow drag is neither swipe nor tap",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 800, 300)}}, 0},
				{PointerFrame{Released: []touchPoint{touch(1, 500, 300)}}, time.Second},
			},
			want: nil,
		},
		{
			name: "pinch out then release",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 400, 300), touch(2, 600, 300)}}, 0},
				{PointerFrame{Active: []touchPoint{touch(1, 300, 300), touch(2, 700, 300)}}, 50 * time.Millisecond},
				{PointerFrame{Active: []touchPoint{touch(2, 700, 300)}, Released: []touchPoint{touch(1, 300, 300)}}, 100 * time.Millisecond},
			},
			want: []gesture.Event{
				{Type: gesture.EventPinch, Scale: 2, At: gesture.Point{X: 300, Y: 300}},
				{Type: gesture.EventPinchEnd, Scale: 2, At: gesture.Point{X: 300, Y: 300}},
			},
		},
		{
			name: "pinch leaves one finger down",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 400, 300), touch(2, 600, 300)}}, 0},
				{PointerFrame{Active: []touchPoint{touch(1, 300, 300), touch(2, 700, 300)}}, 50 * time.Millisecond},
				{PointerFrame{Active: []touchPoint{touch(2, 700, 300)}, Released: []touchPoint{touch(1, 300, 300)}}, 100 * time.Millisecond},
				{PointerFrame{Active: []touchPoint{touch(2, 700, 300)}}, 116 * time.Millisecond},
				{PointerFrame{Released: []touchPoint{touch(2, 701, 300)}}, 200 * time.Millisecond},
				// the next touch starts a fresh interaction
				{PointerFrame{Active: []touchPoint{touch(3, 200, 300)}}, 400 * time.Millisecond},
				{PointerFrame{Released: []touchPoint{touch(3, 200, 300)}}, 450 * time.Millisecond},
			},
			want: []gesture.Event{
				{Type: gesture.EventPinch, Scale: 2, At: gesture.Point{X: 300, Y: 300}},
				{Type: gesture.EventPinchEnd, Scale: 2, At: gesture.Point{X: 300, Y: 300}},
				{Type: gesture.EventTap, Side: gesture.SideLeft, At: gesture.Point{X: 200, Y: 300}},
			},
		},
		{
			name: "second finger joins later",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 400, 300)}}, 0},
				{PointerFrame{Active: []touchPoint{touch(1, 400, 300), touch(2, 500, 300)}}, 20 * time.Millisecond},
				{PointerFrame{Active: []touchPoint{touch(1, 400, 300), touch(2, 450, 300)}}, 40 * time.Millisecond},
				{PointerFrame{Released: []touchPoint{touch(1, 400, 300), touch(2, 450, 300)}}, 60 * time.Millisecond},
			},
			want: []gesture.Event{
				{Type: gesture.EventPinch, Scale: 0.5, At: gesture.Point{X: 400, Y: 300}},
				{Type: gesture.EventPinchEnd, Scale: 0.5, At: gesture.Point{X: 400, Y: 300}},
			},
		},
		{
			name: "lost touch is cancelled at its last point",
			steps: []frameStep{
				{PointerFrame{Active: []touchPoint{touch(1, 200, 300)}}, 0},
				{PointerFrame{}, 50 * time.Millisecond},
			},
			want: []gesture.Event{{Type: gesture.EventTap, Side: gesture.SideLeft, At: gesture.Point{X: 200, Y: 300}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, p := runFrames(t, true, tt.steps)
			if len(events) != len(tt.want) {
				t.Fatalf("events = %+v, want %+v", events, tt.want)
			}
			for i := range tt.want {
				if events[i] != tt.want[i] {
					t.Errorf("event %d = %+v, want %+v", i, events[i], tt.want[i])
				}
			}
			if p.Tracking() {
				t.Error("interaction still tracked after the last frame")
			}
		})
	}
}

func TestPointerInputMouse(t *testing.T) {
	t.Run("click is a tap", func(t *testing.T) {
		events, _ := runFrames(t, true, []frameStep{
			{PointerFrame{MousePressed: true, Cursor: gesture.Point{X: 100, Y: 300}}, 0},
			{PointerFrame{MouseReleased: true, Cursor: gesture.Point{X: 102, Y: 300}}, 100 * time.Millisecond},
		})
		if len(events) != 1 || events[0].Type != gesture.EventTap || events[0].Side != gesture.SideLeft {
			t.Errorf("events = %+v, want one left tap", events)
		}
	})

	t.Run("leaving the bounds finishes the drag", func(t *testing.T) {
		events, p := runFrames(t, true, []frameStep{
			{PointerFrame{MousePressed: true, Cursor: gesture.Point{X: 900, Y: 300}}, 0},
			{PointerFrame{Cursor: gesture.Point{X: 700, Y: 300}}, 50 * time.Millisecond},
			{PointerFrame{Cursor: gesture.Point{X: -10, Y: 300}}, 100 * time.Millisecond},
		})
		if len(events) != 1 || events[0].Type != gesture.EventSwipe || events[0].Direction != gesture.SwipeLeft {
			t.Errorf("events = %+v, want one left swipe", events)
		}
		if p.Tracking() {
			t.Error("drag still tracked after leaving the bounds")
		}
	})

	t.Run("press outside the bounds is ignored", func(t *testing.T) {
		_, p := runFrames(t, true, []frameStep{
			{PointerFrame{MousePressed: true, Cursor: gesture.Point{X: 1200, Y: 300}}, 0},
		})
		if p.Tracking() {
			t.Error("press outside the bounds started tracking")
		}
	})

	t.Run("disabled mouse", func(t *testing.T) {
		events, p := runFrames(t, false, []frameStep{
			{PointerFrame{MousePressed: true, Cursor: gesture.Point{X: 100, Y: 300}}, 0},
			{PointerFrame{MouseReleased: true, Cursor: gesture.Point{X: 100, Y: 300}}, 50 * time.Millisecond},
		})
		if len(events) != 0 || p.Tracking() {
			t.Errorf("disabled mouse produced %+v", events)
		}
	})
}

func TestPointerInputCancel(t *testing.T) {
	p := NewPointerInput(gesture.DefaultConfig(), true)
	now := time.Now()

	if events := p.Cancel(now); events != nil {
		t.Errorf("cancel while idle = %+v, want none", events)
	}

	p.Process(PointerFrame{Active: []touchPoint{touch(1, 100, 100)}}, now, testBounds)
	if !p.Tracking() {
		t.Fatal("touch did not start tracking")
	}
	events := p.Cancel(now.Add(10 * time.Millisecond))
	if len(events) != 1 || events[0].Type != gesture.EventTap {
		t.Errorf("cancel = %+v, want a tap at the last point", events)
	}
	if p.Tracking() {
		t.Error("still tracking after cancel")
	}
}

func TestPointerInputDrainsAfterRelease(t *testing.T) {
	p := NewPointerInput(gesture.DefaultConfig(), true)
	now := time.Now()

	p.Process(PointerFrame{Active: []touchPoint{touch(1, 100, 100), touch(2, 300, 100)}}, now, testBounds)
	p.Process(PointerFrame{Active: []touchPoint{touch(2, 300, 100)}, Released: []touchPoint{touch(1, 100, 100)}}, now.Add(20*time.Millisecond), testBounds)
	if p.source != sourceDrain {
		t.Fatalf("source = %v, want draining", p.source)
	}
	if events := p.Cancel(now.Add(30 * time.Millisecond)); events != nil {
		t.Errorf("cancel while draining = %+v", events)
	}
	if events := p.Process(PointerFrame{Active: []touchPoint{touch(2, 310, 100)}}, now.Add(40*time.Millisecond), testBounds); events != nil || p.Tracking() {
		t.Errorf("leftover finger started an interaction: %+v", events)
	}
	p.Process(PointerFrame{Released: []touchPoint{touch(2, 310, 100)}}, now.Add(60*time.Millisecond), testBounds)
	if p.source != sourceNone {
		t.Errorf("source = %v after every finger lifted, want none", p.source)
	}
}
