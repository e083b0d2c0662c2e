package reader

import "time"

// DefaultAutoHideDelay is how long controls stay visible after input.
const DefaultAutoHideDelay = 3 * time.Second

// AutoHide shows the reader controls after interaction and hides them once
// no input arrived for the delay. Each Poke replaces the pending deadline.
type AutoHide struct {
	delay    time.Duration
	visible  bool
	deadline time.Time
}

// NewAutoHide returns hidden controls with the given delay.
func NewAutoHide(delay time.Duration) *AutoHide {
	if delay <= 0 {
		delay = DefaultAutoHideDelay
	}
	return &AutoHide{delay: delay}
}

// Poke shows the controls and restarts the countdown.
func (a *AutoHide) Poke(now time.Time) {
	a.visible = true
	a.deadline = now.Add(a.delay)
}

// Hide hides the controls immediately and drops the pending deadline.
func (a *AutoHide) Hide() {
	a.visible = false
	a.deadline = time.Time{}
}

// Tick hides the controls once the deadline passed. It reports whether the
// visibility changed.
func (a *AutoHide) Tick(now time.Time) bool {
	if !a.visible || now.Before(a.deadline) {
		return false
	}
	a.visible = false
	a.deadline = time.Time{}
	return true
}

// Visible reports whether the controls are shown.
func (a *AutoHide) Visible() bool {
	return a.visible
}
