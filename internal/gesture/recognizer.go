package gesture

import "time"

// Recognizer holds the state of one input surface and applies the pure
// transitions to it. The zero value is not usable; call NewRecognizer.
type Recognizer struct {
	cfg   Config
	state State
}

// NewRecognizer returns an idle recognizer.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg, state: Idle{}}
}

// State returns the current state.
func (r *Recognizer) State() State {
	return r.state
}

// Tracking reports whether an interaction is in progress.
func (r *Recognizer) Tracking() bool {
	_, ok := r.state.(Tracking)
	return ok
}

func (r *Recognizer) apply(s State, events []Event) []Event {
	r.state = s
	return events
}

// Start begins an interaction.
func (r *Recognizer) Start(kind Kind, p Point, at time.Time, bounds Rect) []Event {
	return r.apply(Start(r.cfg, r.state, kind, p, at, bounds))
}

// AddContact switches the current interaction to pinch tracking.
func (r *Recognizer) AddContact(primary, secondary Point) []Event {
	return r.apply(AddContact(r.cfg, r.state, primary, secondary))
}

// Move updates the current interaction.
func (r *Recognizer) Move(primary Point, secondary *Point) []Event {
	return r.apply(Move(r.cfg, r.state, primary, secondary))
}

// End finishes the current interaction.
func (r *Recognizer) End(p Point, at time.Time) []Event {
	return r.apply(End(r.cfg, r.state, p, at))
}

// Cancel finishes the current interaction at its last known point.
func (r *Recognizer) Cancel(at time.Time) []Event {
	return r.apply(Cancel(r.cfg, r.state, at))
}
