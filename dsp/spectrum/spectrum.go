package spectrum

import "math"

// Point is one spectrum sample: frequency X in MHz and magnitude Y in mV.
type Point struct {
	X float64
	Y float64
}

// Spectrum is an ordered point list with strictly increasing X. Index 0 is
// the blocked DC bin.
type Spectrum []Point

// Line is y = Y0 + Slope*x.
type Line struct {
	Y0    float64
	Slope float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Y0 + l.Slope*x
}

// Xs returns the frequencies.
func (s Spectrum) Xs() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.X
	}
	return out
}

// Ys returns the magnitudes.
func (s Spectrum) Ys() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Y
	}
	return out
}

// BinSpacing returns the frequency step between bins, or 0 when the
// spectrum has fewer than two points.
func (s Spectrum) BinSpacing() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[1].X - s[0].X
}

// MaxY returns the largest magnitude, or 0 for an empty spectrum.
func (s Spectrum) MaxY() float64 {
	m := 0.0
	for i, p := range s {
		if i == 0 || p.Y > m {
			m = p.Y
		}
	}
	return m
}

// Subtract returns a copy of s with l evaluated at each X subtracted.
func (s Spectrum) Subtract(l Line) Spectrum {
	out := make(Spectrum, len(s))
	for i, p := range s {
		out[i] = Point{X: p.X, Y: p.Y - l.At(p.X)}
	}
	return out
}

// Range returns the first and last frequency.
func (s Spectrum) Range() (lo, hi float64) {
	if len(s) == 0 {
		return math.NaN(), math.NaN()
	}
	return s[0].X, s[len(s)-1].X
}

// IsIncreasing reports whether X is strictly increasing.
func (s Spectrum) IsIncreasing() bool {
	for i := 1; i < len(s); i++ {
		if !(s[i].X > s[i-1].X) {
			return false
		}
	}
	return true
}
