// Package viewport tracks the part of the window that content may use.
package viewport

import (
	"math"
	"time"
)

// DefaultSettleDelay is how long the tracker waits after an orientation flip
// before trusting the reported window size.
const DefaultSettleDelay = 500 * time.Millisecond

// Insets are the safe-area insets on each side of the window.
type Insets struct {
	Top, Right, Bottom, Left int
}

// InsetSource reports safe-area insets. Platforms without an inset query
// report zero insets.
type InsetSource interface {
	Insets() Insets
}

// NoInsets is the InsetSource for platforms without safe areas.
type NoInsets struct{}

// Insets implements InsetSource.
func (NoInsets) Insets() Insets { return Insets{} }

// Usable is the window area available to content.
type Usable struct {
	Width  int
	Height int
	Insets Insets
}

// Config controls a Tracker.
type Config struct {
	SettleDelay time.Duration
	Family      Family
	Corrections Corrections
}

// DefaultConfig returns the configuration for the running platform.
func DefaultConfig() Config {
	return Config{
		SettleDelay: DefaultSettleDelay,
		Family:      CurrentFamily(),
		Corrections: DefaultCorrections(),
	}
}

type orientation int

const (
	orientationUnknown orientation = iota
	orientationPortrait
	orientationLandscape
)

func orientationOf(w, h int) orientation {
	if w <= 0 || h <= 0 {
		return orientationUnknown
	}
	if w > h {
		return orientationLandscape
	}
	return orientationPortrait
}

// Tracker recomputes the usable viewport on resize, orientation change and
// fullscreen toggle, and notifies subscribers on every recompute. It is not
// safe for concurrent use; the game loop owns it.
type Tracker struct {
	cfg    Config
	insets InsetSource

	windowW, windowH int
	orient           orientation
	fullscreen       bool

	settling    bool
	settleUntil time.Time

	current Usable
	subs    map[int]func(Usable)
	nextSub int
}

// NewTracker creates a tracker. A nil inset source means no insets.
func NewTracker(cfg Config, insets InsetSource) *Tracker {
	if insets == nil {
		insets = NoInsets{}
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Tracker{
		cfg:    cfg,
		insets: insets,
		subs:   make(map[int]func(Usable)),
	}
}

// Observe records the window size reported by the platform at time now.
// A change of orientation defers the recompute by the settle delay; any
// other change recomputes immediately.
func (t *Tracker) Observe(width, height int, now time.Time) {
	if width == t.windowW && height == t.windowH {
		return
	}
	t.windowW, t.windowH = width, height

	o := orientationOf(width, height)
	if t.orient != orientationUnknown && o != orientationUnknown && o != t.orient {
		t.orient = o
		t.settling = true
		t.settleUntil = now.Add(t.cfg.SettleDelay)
		return
	}
	if o != orientationUnknown {
		t.orient = o
	}
	if t.settling {
		return
	}
	t.recompute()
}

// SetFullscreen records the fullscreen state and recomputes.
func (t *Tracker) SetFullscreen(on bool) {
	if t.fullscreen == on {
		return
	}
	t.fullscreen = on
	if t.settling {
		return
	}
	t.recompute()
}

// Tick fires a pending settle recompute once its deadline has passed.
func (t *Tracker) Tick(now time.Time) {
	if !t.settling || now.Before(t.settleUntil) {
		return
	}
	t.settling = false
	t.recompute()
}

// Settling reports whether a recompute is waiting for the settle delay.
func (t *Tracker) Settling() bool {
	return t.settling
}

// Current returns the last computed usable viewport.
func (t *Tracker) Current() Usable {
	return t.current
}

// Fullscreen reports the last recorded fullscreen state.
func (t *Tracker) Fullscreen() bool {
	return t.fullscreen
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (t *Tracker) Subscribe(fn func(Usable)) (cancel func()) {
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() { delete(t.subs, id) }
}

func (t *Tracker) recompute() {
	in := t.insets.Insets()
	factor := t.cfg.Corrections.For(t.cfg.Family, t.fullscreen)

	w := t.windowW - in.Left - in.Right
	h := t.windowH - in.Top - in.Bottom
	t.current = Usable{
		Width:  scale(w, factor.Width),
		Height: scale(h, factor.Height),
		Insets: in,
	}

	for _, fn := range t.subs {
		fn(t.current)
	}
}

func scale(v int, factor float64) int {
	if v <= 0 {
		return 0
	}
	if factor <= 0 {
		factor = 1
	}
	// The epsilon keeps factors such as 0.98 from flooring 980 to 979.
	return int(math.Floor(float64(v)*factor + 1e-9))
}
