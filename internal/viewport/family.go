package viewport

import (
	"fmt"
	"runtime"
	"strings"
)

// Family is a coarse platform class with its own correction factors.
type Family string

const (
	FamilyDesktop Family = "desktop"
	FamilyIOS     Family = "ios"
	FamilyAndroid Family = "android"
)

// ParseFamily accepts "desktop", "ios" or "android" in any case.
func ParseFamily(s string) (Family, error) {
	switch f := Family(strings.ToLower(strings.TrimSpace(s))); f {
	case FamilyDesktop, FamilyIOS, FamilyAndroid:
		return f, nil
	default:
		return "", fmt.Errorf("unknown platform family %q", s)
	}
}

// CurrentFamily classifies the running platform.
func CurrentFamily() Family {
	switch runtime.GOOS {
	case "ios":
		return FamilyIOS
	case "android":
		return FamilyAndroid
	default:
		return FamilyDesktop
	}
}

// Factor scales the usable width and height.
type Factor struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Correction holds the factors for one family.
type Correction struct {
	Windowed   Factor `json:"windowed"`
	Fullscreen Factor `json:"fullscreen"`
}

// Corrections maps each family to its factors.
type Corrections map[Family]Correction

// DefaultCorrections compensates for persistent system chrome on mobile
// platforms. A native desktop window has none.
func DefaultCorrections() Corrections {
	full := Factor{Width: 1, Height: 1}
	return Corrections{
		FamilyIOS:     {Windowed: Factor{Width: 0.98, Height: 0.92}, Fullscreen: full},
		FamilyAndroid: {Windowed: Factor{Width: 0.98, Height: 0.94}, Fullscreen: full},
		FamilyDesktop: {Windowed: full, Fullscreen: full},
	}
}

// For returns the factor for family in the given fullscreen state. Unknown
// families are not corrected.
func (c Corrections) For(family Family, fullscreen bool) Factor {
	corr, ok := c[family]
	if !ok {
		return Factor{Width: 1, Height: 1}
	}
	if fullscreen {
		return corr.Fullscreen
	}
	return corr.Windowed
}
