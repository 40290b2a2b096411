package lineshape

import (
	"fmt"
	"math"
	"strings"
)

// Shape selects the profile of a single spectral line.
type Shape int

const (
	// Lorentzian is the natural/pressure-broadened profile, used for
	// unwindowed spectra.
	Lorentzian Shape = iota
	// Gaussian matches the lobe shape left by a tapering window.
	Gaussian
)

// String returns the persisted name of the shape.
func (s Shape) String() string {
	switch s {
	case Lorentzian:
		return "Lorentzian"
	case Gaussian:
		return "Gaussian"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape is the inverse of String (case-insensitive).
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lorentzian", "lorentz":
		return Lorentzian, nil
	case "gaussian", "gauss":
		return Gaussian, nil
	default:
		return 0, fmt.Errorf("lineshape: unknown shape %q", name)
	}
}

// Unit evaluates the unit-height profile at distance d from the line center
// for half-width w. It returns the value and its derivatives with respect to
// the center and the width.
//
// Lorentzian: w^2/(d^2+w^2), w is the half width at half maximum.
// Gaussian: exp(-d^2/(2w^2)), w is the standard deviation.
func (s Shape) Unit(d, w float64) (f, dCenter, dWidth float64) {
	if s == Gaussian {
		w2 := w * w
		f = math.Exp(-d * d / (2 * w2))
		return f, f * d / w2, f * d * d / (w2 * w)
	}

	w2 := w * w
	den := d*d + w2
	f = w2 / den
	den2 := den * den
	return f, 2 * d * w2 / den2, 2 * w * d * d / den2
}

// Value evaluates only the unit-height profile.
func (s Shape) Value(d, w float64) float64 {
	f, _, _ := s.Unit(d, w)
	return f
}

// FWHM converts the width parameter to a full width at half maximum.
func (s Shape) FWHM(w float64) float64 {
	if s == Gaussian {
		return 2 * math.Sqrt(2*math.Ln2) * w
	}
	return 2 * w
}
