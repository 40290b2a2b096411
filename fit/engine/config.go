package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/measure/doppler"
	"github.com/cwbudde/algo-ftmw/measure/peaks"
	"github.com/cwbudde/algo-ftmw/stats/baseline"
)

// ErrInvalidConfig reports an unusable FitConfig or Config.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Config holds the pipeline tolerances. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	Baseline baseline.Options `yaml:"baseline"`
	Doppler  doppler.Config   `yaml:"doppler"`

	// SaturationLimit is the largest accepted |sample|.
	SaturationLimit float64 `yaml:"saturation_limit"`

	// InitialIterations is the solver cap for a freshly built model. The
	// cap doubles on every re-solve; a model solved with a cap above
	// MaxIterations is accepted regardless of solver status.
	InitialIterations int     `yaml:"initial_iterations"`
	MaxIterations     int     `yaml:"max_iterations"`
	RelTol            float64 `yaml:"rel_tol"`

	MaxAmplitude      float64 `yaml:"max_amplitude"`
	PairNoiseFactor   float64 `yaml:"pair_noise_factor"`
	SingleNoiseFactor float64 `yaml:"single_noise_factor"`
	MinWidthBins      float64 `yaml:"min_width_bins"`
	SplittingDrift    float64 `yaml:"splitting_drift"` // relative to the kinetic estimate
}

// DefaultConfig returns the standard pipeline tolerances.
func DefaultConfig() Config {
	return Config{
		Baseline:          baseline.DefaultOptions(),
		Doppler:           doppler.DefaultConfig(),
		SaturationLimit:   fid.DefaultSaturationLimit,
		InitialIterations: 50,
		MaxIterations:     1000,
		RelTol:            1e-4,
		MaxAmplitude:      100,
		PairNoiseFactor:   4,
		SingleNoiseFactor: 5,
		MinWidthBins:      0.5,
		SplittingDrift:    0.5,
	}
}

// Validate checks that every limit is usable.
func (c Config) Validate() error {
	switch {
	case !(c.SaturationLimit > 0):
		return fmt.Errorf("%w: saturation limit %v", ErrInvalidConfig, c.SaturationLimit)
	case c.InitialIterations <= 0 || c.MaxIterations < c.InitialIterations:
		return fmt.Errorf("%w: iteration caps %d/%d", ErrInvalidConfig, c.InitialIterations, c.MaxIterations)
	case !(c.RelTol > 0):
		return fmt.Errorf("%w: relative tolerance %v", ErrInvalidConfig, c.RelTol)
	case !(c.MaxAmplitude > 0):
		return fmt.Errorf("%w: max amplitude %v", ErrInvalidConfig, c.MaxAmplitude)
	}
	return nil
}

// FitConfig selects the model and detection settings of one analysis.
type FitConfig struct {
	Lineshape    lineshape.Shape
	BufferGas    doppler.BufferGas
	TemperatureK float64
	SNRThreshold float64
	Processing   fid.ProcessingConfig
}

// DefaultFitConfig returns the usual settings for a processing setup: a
// window broadens lines into Gaussians and raises the false-positive rate,
// so windowed spectra get a Gaussian lineshape and an SNR threshold of 6.
// Callers may override either field afterwards.
func DefaultFitConfig(proc fid.ProcessingConfig, gas doppler.BufferGas, tempK float64) FitConfig {
	shape := lineshape.Lorentzian
	if proc.ApplyWindow {
		shape = lineshape.Gaussian
	}
	return FitConfig{
		Lineshape:    shape,
		BufferGas:    gas,
		TemperatureK: tempK,
		SNRThreshold: peaks.ThresholdFor(proc.ApplyWindow),
		Processing:   proc,
	}
}

// Validate checks the fit settings.
func (c FitConfig) Validate() error {
	if err := c.Processing.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.BufferGas.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !(c.TemperatureK > 0) || math.IsInf(c.TemperatureK, 0) {
		return fmt.Errorf("%w: temperature %v K", ErrInvalidConfig, c.TemperatureK)
	}
	if !(c.SNRThreshold > 0) {
		return fmt.Errorf("%w: SNR threshold %v", ErrInvalidConfig, c.SNRThreshold)
	}
	if c.Lineshape != lineshape.Lorentzian && c.Lineshape != lineshape.Gaussian {
		return fmt.Errorf("%w: lineshape %v", ErrInvalidConfig, c.Lineshape)
	}
	return nil
}
