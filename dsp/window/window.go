// Package window generates the tapering windows applied to FIDs before the
// Fourier transform.
package window

import "math"

// Type identifies a window function.
type Type int

// TypeBlackmanHarris4Term is the four-term Blackman-Harris window, the only
// taper the FID pipeline applies.
const TypeBlackmanHarris4Term Type = iota

var blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeBlackmanHarris4Term:
		return "blackman-harris-4t"
	default:
		return "unknown"
	}
}

// Generate returns symmetric window coefficients of the given length.
func Generate(t Type, length int) ([]float64, error) {
	if err := validateLength(length); err != nil {
		return nil, err
	}

	coeffs, err := termsFor(t)
	if err != nil {
		return nil, err
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = cosineFromCoeffs(samplePosition(i, length), coeffs)
	}

	return out, nil
}

func termsFor(t Type) ([]float64, error) {
	switch t {
	case TypeBlackmanHarris4Term:
		return blackmanHarris4Coeffs, nil
	default:
		return nil, errUnknownType(t)
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int) float64 {
	if size <= 1 {
		return 0
	}

	return float64(n) / float64(size-1)
}
