package fid

import (
	"math"

	"github.com/cwbudde/algo-ftmw/dsp/window"
)

// ProcessingConfig selects the filters applied before the Fourier transform.
type ProcessingConfig struct {
	DelayUs     float64 `yaml:"delay_us"`
	HighPassKHz float64 `yaml:"high_pass_khz"`
	ExpDecayUs  float64 `yaml:"exp_decay_us"`
	RemoveDC    bool    `yaml:"remove_dc"`
	ZeroPad     bool    `yaml:"zero_pad"`
	ApplyWindow bool    `yaml:"apply_window"`
}

// DefaultProcessingConfig removes DC and zero-pads; all other filters are off.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{RemoveDC: true, ZeroPad: true}
}

// Validate checks that all numeric settings are non-negative.
func (c ProcessingConfig) Validate() error {
	switch {
	case c.DelayUs < 0 || math.IsNaN(c.DelayUs):
		return invalidConfig("delay", c.DelayUs)
	case c.HighPassKHz < 0 || math.IsNaN(c.HighPassKHz):
		return invalidConfig("high-pass", c.HighPassKHz)
	case c.ExpDecayUs < 0 || math.IsNaN(c.ExpDecayUs):
		return invalidConfig("exponential decay", c.ExpDecayUs)
	}
	return nil
}

// FilterOption configures Filter.
type FilterOption func(*filterOptions)

type filterOptions struct {
	windows *window.Cache
}

// WithWindowCache makes Filter take window coefficients from c.
func WithWindowCache(c *window.Cache) FilterOption {
	return func(o *filterOptions) {
		if c != nil {
			o.windows = c
		}
	}
}

var sharedWindows = window.NewCache()

// Filter applies the configured filters in a fixed order: DC removal,
// high-pass, delay blanking, exponential apodization, Blackman-Harris window
// and finally zero padding. Degenerate records are returned unchanged.
func Filter(f Fid, cfg ProcessingConfig, opts ...FilterOption) (Fid, error) {
	if err := cfg.Validate(); err != nil {
		return Fid{}, err
	}
	if f.IsDegenerate() {
		return f, nil
	}

	o := filterOptions{windows: sharedWindows}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	dt := f.spacing
	data := f.Samples()

	if cfg.RemoveDC {
		mean := kahanMean(data)
		for i := range data {
			data[i] -= mean
		}
	}

	if cfg.HighPassKHz > 0 {
		highPass(data, dt, cfg.HighPassKHz)
	}

	if cfg.DelayUs > 0 {
		delay := cfg.DelayUs * 1e-6
		for i := range data {
			if float64(i)*dt >= delay {
				break
			}
			data[i] = 0
		}
	}

	if cfg.ExpDecayUs > 0 {
		tau := cfg.ExpDecayUs * 1e-6
		for i := range data {
			data[i] *= math.Exp(-float64(i) * dt / tau)
		}
	}

	if cfg.ApplyWindow {
		if err := o.windows.Apply(window.TypeBlackmanHarris4Term, data); err != nil {
			return Fid{}, err
		}
	}

	out := f.withSamples(data)
	if cfg.ZeroPad {
		out = Pad(out)
	}

	return out, nil
}

// highPass runs a first-order RC high-pass filter in place.
func highPass(data []float64, dt, cutoffKHz float64) {
	if len(data) == 0 {
		return
	}

	rc := 1 / (2 * math.Pi * cutoffKHz * 1000)
	alpha := rc / (rc + dt)

	prevIn := data[0]
	prevOut := data[0]
	for i := 1; i < len(data); i++ {
		x := data[i]
		prevOut = alpha * (prevOut + x - prevIn)
		prevIn = x
		data[i] = prevOut
	}
}

// Pad zero-extends f to twice the next power of two of its length. The
// resulting length is always a power of two of at least 2*nextPow2(n).
func Pad(f Fid) Fid {
	if len(f.samples) == 0 {
		return f
	}

	n := 2 * NextPow2(len(f.samples))
	data := make([]float64, n)
	copy(data, f.samples)

	return f.withSamples(data)
}

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

// kahanMean returns the mean using compensated summation.
func kahanMean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	var sum, c float64
	for _, x := range data {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(data))
}
