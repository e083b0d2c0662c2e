package spread

// AspectLock holds the width/height ratio of the first decoded page of the
// open book. Later pages never change it, even when their own ratio differs.
type AspectLock struct {
	ratio  float64
	locked bool
}

// Lock captures w/h if no ratio is held yet. It returns true only for the
// call that locked the ratio.
func (a *AspectLock) Lock(width, height int) bool {
	if a.locked || width <= 0 || height <= 0 {
		return false
	}
	a.ratio = float64(width) / float64(height)
	a.locked = true
	return true
}

// Ratio returns the locked ratio, or false before the first decode.
func (a *AspectLock) Ratio() (float64, bool) {
	return a.ratio, a.locked
}

// Reset forgets the ratio; called when a different book is opened.
func (a *AspectLock) Reset() {
	a.ratio = 0
	a.locked = false
}
