package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
	"github.com/cwbudde/algo-ftmw/dsp/window"
	"github.com/cwbudde/algo-ftmw/fit/result"
)

// Engine analyzes FIDs. Create one with New and share it.
type Engine struct {
	cfg     Config
	log     *zap.Logger
	tr      *spectrum.Transformer
	windows *window.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Audit lines are written at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithConfig replaces the default tolerances.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithTransformer shares an FFT plan cache with other users.
func WithTransformer(t *spectrum.Transformer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tr = t
		}
	}
}

// New returns an Engine. It fails only for an invalid Config.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:     DefaultConfig(),
		log:     zap.NewNop(),
		tr:      spectrum.NewTransformer(),
		windows: window.NewCache(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the tolerances in use.
func (e *Engine) Config() Config {
	return e.cfg
}

// Spectrum filters f and returns its magnitude spectrum. Degenerate records
// give the placeholder spectrum.
func (e *Engine) Spectrum(f fid.Fid, proc fid.ProcessingConfig) (spectrum.Spectrum, error) {
	filtered, err := fid.Filter(f, proc, fid.WithWindowCache(e.windows))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	s, _ := e.tr.Transform(filtered)
	return s, nil
}

// Analyze runs the full pipeline on f. Outcomes such as a degenerate or
// saturated record are reported through the result category; an error is
// returned only for an invalid fc or a cancelled ctx.
func (e *Engine) Analyze(ctx context.Context, f fid.Fid, fc FitConfig) (result.Result, error) {
	res := result.New(f.ProbeFrequency(), fc.Processing, fc.Lineshape, fc.BufferGas.Name, fc.TemperatureK)
	if err := fc.Validate(); err != nil {
		return res, err
	}

	log := e.log.With(zap.Float64("probe_mhz", f.ProbeFrequency()), zap.Int("samples", f.Len()))
	a := newAudit(log)

	if f.IsDegenerate() {
		a.add("Invalid: degenerate record (%d samples, spacing %g s)", f.Len(), f.Spacing())
		res.Category = result.Invalid
		res.Log = a.String()
		log.Warn("degenerate FID")
		return res, nil
	}

	if peak := f.MaxAbs(); f.IsSaturated(e.cfg.SaturationLimit) {
		a.add("Saturated: max |sample| %g exceeds %g", peak, e.cfg.SaturationLimit)
		res.Category = result.Saturated
		res.Log = a.String()
		log.Warn("saturated FID", zap.Float64("max_abs", peak), zap.Float64("limit", e.cfg.SaturationLimit))
		return res, nil
	}

	s, err := e.Spectrum(f, fc.Processing)
	if err != nil {
		return res, err
	}
	a.add("Spectrum: %d points, bin spacing %g MHz", len(s), s.BinSpacing())

	return e.fit(ctx, s, fc, res, a)
}

// FitSpectrum runs the fit stages on a ready magnitude spectrum whose first
// point is the blocked DC bin.
func (e *Engine) FitSpectrum(ctx context.Context, s spectrum.Spectrum, probe float64, fc FitConfig) (result.Result, error) {
	res := result.New(probe, fc.Processing, fc.Lineshape, fc.BufferGas.Name, fc.TemperatureK)
	if err := fc.Validate(); err != nil {
		return res, err
	}

	a := newAudit(e.log.With(zap.Float64("probe_mhz", probe), zap.Int("points", len(s))))
	return e.fit(ctx, s, fc, res, a)
}
