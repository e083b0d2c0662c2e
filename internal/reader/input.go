package reader

import "picbook/internal/gesture"

// Command is a reader action independent of the input device.
type Command int

const (
	CommandNone Command = iota
	CommandNext
	CommandPrevious
	CommandFirst
	CommandLast
	CommandToggleFullscreen
	CommandEnterFullscreen
	CommandExitFullscreen
)

var commandNames = map[Command]string{
	CommandNone:             "none",
	CommandNext:             "next",
	CommandPrevious:         "previous",
	CommandFirst:            "first",
	CommandLast:             "last",
	CommandToggleFullscreen: "toggle_fullscreen",
	CommandEnterFullscreen:  "enter_fullscreen",
	CommandExitFullscreen:   "exit_fullscreen",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "unknown"
}

// CommandFor maps a swipe or tap to a command. Swiping left or tapping the
// right half moves forward; right-to-left books mirror the horizontal
// mapping. Vertical swipes switch fullscreen.
func CommandFor(ev gesture.Event, rightToLeft bool) Command {
	forward, backward := CommandNext, CommandPrevious
	if rightToLeft {
		forward, backward = backward, forward
	}

	switch ev.Type {
	case gesture.EventSwipe:
		switch ev.Direction {
		case gesture.SwipeLeft:
			return forward
		case gesture.SwipeRight:
			return backward
		case gesture.SwipeUp:
			return CommandEnterFullscreen
		case gesture.SwipeDown:
			return CommandExitFullscreen
		}
	case gesture.EventTap:
		if ev.Side == gesture.SideRight {
			return forward
		}
		return backward
	}
	return CommandNone
}

// Execute runs cmd and reports whether anything changed.
func (c *Controller) Execute(cmd Command) bool {
	switch cmd {
	case CommandNext:
		return c.Next()
	case CommandPrevious:
		return c.Previous()
	case CommandFirst:
		return c.First()
	case CommandLast:
		return c.Last()
	case CommandToggleFullscreen:
		if c.fullscreen == nil {
			return false
		}
		c.fullscreen.SetFullscreen(!c.fullscreen.IsFullscreen())
		return true
	case CommandEnterFullscreen:
		return c.setFullscreen(true)
	case CommandExitFullscreen:
		return c.setFullscreen(false)
	}
	return false
}

func (c *Controller) setFullscreen(on bool) bool {
	if c.fullscreen == nil || c.fullscreen.IsFullscreen() == on {
		return false
	}
	c.fullscreen.SetFullscreen(on)
	return true
}

// HandleGesture applies a recognized gesture. Pinch scales are relative to
// the zoom at the start of the pinch; a pinch that ends close to 1 snaps back.
func (c *Controller) HandleGesture(ev gesture.Event) bool {
	switch ev.Type {
	case gesture.EventPinch:
		if c.pinchBase == 0 {
			c.pinchBase = c.zoom
		}
		return c.SetZoom(c.pinchBase * ev.Scale)
	case gesture.EventPinchEnd:
		c.pinchBase = 0
		if c.zoom < zoomSnapBelow {
			return c.SetZoom(MinZoom)
		}
		return false
	}
	return c.Execute(CommandFor(ev, c.rightToLeft))
}

// SetZoom sets the zoom of the current spread, clamped to [MinZoom, MaxZoom].
func (c *Controller) SetZoom(z float64) bool {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	if z == c.zoom {
		return false
	}
	c.zoom = z
	for _, fn := range c.subs {
		fn(c.display)
	}
	return true
}
