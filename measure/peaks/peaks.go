// Package peaks detects candidate lines in a baseline-subtracted spectrum.
package peaks

import (
	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
)

const (
	// DefaultThreshold is the SNR threshold for unwindowed spectra.
	DefaultThreshold = 3.0
	// WindowedThreshold suppresses the extra false positives a window causes.
	WindowedThreshold = 6.0
)

// Candidate is a detected local maximum.
type Candidate struct {
	X   float64 // frequency, MHz
	Y   float64 // height above the smoothed background, mV
	SNR float64
}

// ThresholdFor returns the SNR threshold used for a spectrum computed with or
// without a window.
func ThresholdFor(windowed bool) float64 {
	if windowed {
		return WindowedThreshold
	}
	return DefaultThreshold
}

// Find returns the strict local maxima of s minus its boxcar-smoothed copy
// that exceed threshold times the noise model. s is expected to be
// baseline-subtracted. Candidates are returned in ascending frequency.
func Find(s spectrum.Spectrum, noise spectrum.Line, threshold float64) []Candidate {
	n := len(s)
	if n < 3 {
		return nil
	}

	ys := s.Ys()
	smooth := Boxcar(ys, n/10+1)
	resid := make([]float64, n)
	for i := range ys {
		resid[i] = ys[i] - smooth[i]
	}

	var out []Candidate
	for i := 1; i < n-1; i++ {
		r := resid[i]
		if !(r > resid[i-1] && r > resid[i+1]) {
			continue
		}

		level := noise.At(s[i].X)
		if !(level > 0) || !(r > threshold*level) {
			continue
		}

		out = append(out, Candidate{X: s[i].X, Y: r, SNR: r / level})
	}

	return out
}

// Boxcar returns the centered moving average of x over width points. Near
// the edges each value is normalized by the number of points actually
// covered.
func Boxcar(x []float64, width int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if width < 1 {
		width = 1
	}

	lo := width / 2
	hi := width - 1 - lo

	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	for i := range out {
		a := i - lo
		if a < 0 {
			a = 0
		}
		b := i + hi
		if b > n-1 {
			b = n - 1
		}
		out[i] = (prefix[b+1] - prefix[a]) / float64(b-a+1)
	}

	return out
}
