// Package testutil provides deterministic synthetic FIDs and spectra plus
// tolerance assertions shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Tone is one component of a synthetic FID.
type Tone struct {
	OffsetHz  float64 // frequency relative to the probe
	Amplitude float64
}

// DampedCosines returns n samples of sum_k A_k*cos(2*pi*f_k*t)*exp(-t/tau).
func DampedCosines(spacing, tau float64, n int, tones ...Tone) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) * spacing
		decay := math.Exp(-t / tau)
		for _, tone := range tones {
			out[i] += tone.Amplitude * math.Cos(2*math.Pi*tone.OffsetHz*t) * decay
		}
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude] with
// a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Axis returns n evenly spaced values starting at start.
func Axis(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// AddLorentzian adds A*w^2/((x-x0)^2+w^2) evaluated on xs to ys.
func AddLorentzian(ys, xs []float64, amplitude, x0, hwhm float64) {
	for i, x := range xs {
		d := x - x0
		ys[i] += amplitude * hwhm * hwhm / (d*d + hwhm*hwhm)
	}
}

// AddGaussian adds A*exp(-(x-x0)^2/(2*sigma^2)) evaluated on xs to ys.
func AddGaussian(ys, xs []float64, amplitude, x0, sigma float64) {
	for i, x := range xs {
		d := (x - x0) / sigma
		ys[i] += amplitude * math.Exp(-d*d/2)
	}
}

// AddNoise adds DeterministicNoise to ys.
func AddNoise(ys []float64, seed int64, amplitude float64) {
	noise := DeterministicNoise(seed, amplitude, len(ys))
	for i := range ys {
		ys[i] += noise[i]
	}
}
