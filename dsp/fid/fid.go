package fid

import "math"

// MinSpacing is the smallest sample spacing (seconds) treated as valid.
const MinSpacing = 1e-20

// DefaultSaturationLimit is the normalized amplitude above which a record is
// considered clipped by the digitizer.
const DefaultSaturationLimit = 0.6

// Fid is a sampled free-induction decay.
type Fid struct {
	spacing   float64
	probeFreq float64
	samples   []float64
}

// New returns a Fid with the given sample spacing (s), probe frequency (MHz)
// and samples. The samples are copied.
func New(spacing, probeFreq float64, samples []float64) Fid {
	return Fid{
		spacing:   spacing,
		probeFreq: probeFreq,
		samples:   append([]float64(nil), samples...),
	}
}

// Spacing returns the sample spacing in seconds.
func (f Fid) Spacing() float64 { return f.spacing }

// ProbeFrequency returns the probe (local oscillator) frequency in MHz.
func (f Fid) ProbeFrequency() float64 { return f.probeFreq }

// Len returns the number of samples.
func (f Fid) Len() int { return len(f.samples) }

// At returns sample i.
func (f Fid) At(i int) float64 { return f.samples[i] }

// Samples returns a copy of the samples.
func (f Fid) Samples() []float64 {
	return append([]float64(nil), f.samples...)
}

// IsDegenerate reports whether the record cannot be transformed: it is empty
// or its spacing is not positive.
func (f Fid) IsDegenerate() bool {
	return len(f.samples) == 0 || !(f.spacing > MinSpacing)
}

// MaxAbs returns max |sample|, or 0 for an empty record.
func (f Fid) MaxAbs() float64 {
	m := 0.0
	for _, v := range f.samples {
		if a := math.Abs(v); a > m {
			m = a
		}
	}

	return m
}

// IsSaturated reports whether any |sample| exceeds limit.
func (f Fid) IsSaturated(limit float64) bool {
	return f.MaxAbs() > limit
}

// withSamples returns a Fid that takes ownership of samples.
func (f Fid) withSamples(samples []float64) Fid {
	return Fid{spacing: f.spacing, probeFreq: f.probeFreq, samples: samples}
}
