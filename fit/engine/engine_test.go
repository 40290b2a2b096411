package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/fit/lm"
	"github.com/cwbudde/algo-ftmw/fit/result"
	"github.com/cwbudde/algo-ftmw/internal/testutil"
	"github.com/cwbudde/algo-ftmw/measure/doppler"
)

const (
	probe = 10000.0
	bin   = 0.00125
)

// synthetic returns a spectrum laid out like Transformer output: point 0 is
// the blocked DC bin, point k sits at probe + k*bin.
func synthetic(n int, offset, noise float64, add func(xs, ys []float64)) spectrum.Spectrum {
	xs := testutil.Axis(probe, bin, n)
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = offset
	}
	testutil.AddNoise(ys, 11, noise)
	if add != nil {
		add(xs, ys)
	}
	ys[0] = 0

	s := make(spectrum.Spectrum, n)
	for i := range s {
		s[i] = spectrum.Point{X: xs[i], Y: ys[i]}
	}
	return s
}

func neonConfig() FitConfig {
	return DefaultFitConfig(fid.DefaultProcessingConfig(), doppler.DefaultGas(), 298)
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestDefaultFitConfigPolicy(t *testing.T) {
	proc := fid.DefaultProcessingConfig()
	fc := DefaultFitConfig(proc, doppler.DefaultGas(), 298)
	require.Equal(t, lineshape.Lorentzian, fc.Lineshape)
	require.Equal(t, 3.0, fc.SNRThreshold)

	proc.ApplyWindow = true
	fc = DefaultFitConfig(proc, doppler.DefaultGas(), 298)
	require.Equal(t, lineshape.Gaussian, fc.Lineshape)
	require.Equal(t, 6.0, fc.SNRThreshold)
	require.NoError(t, fc.Validate())
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 10
	_, err := New(WithConfig(cfg))
	require.ErrorIs(t, err, ErrInvalidConfig)

	fc := neonConfig()
	fc.TemperatureK = 0
	_, err = newEngine(t).FitSpectrum(context.Background(), synthetic(64, 1, 0.01, nil), probe, fc)
	require.ErrorIs(t, err, ErrInvalidConfig)

	fc = neonConfig()
	fc.Processing.DelayUs = -1
	_, err = newEngine(t).Analyze(context.Background(), fid.New(5e-8, probe, make([]float64, 64)), fc)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFitSingleLorentzian(t *testing.T) {
	const (
		amp    = 10.0
		center = 1.2003
		width  = 0.004
	)
	s := synthetic(2048, 1.0, 0.001, func(xs, ys []float64) {
		testutil.AddLorentzian(ys, xs, amp, probe+center, width)
	})

	res, err := newEngine(t).FitSpectrum(context.Background(), s, probe, neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Success, res.Category, res.Log)
	require.Equal(t, result.TypeSinglePeaks, res.Type)
	require.NoError(t, res.Validate())

	singles := res.Singles()
	require.Len(t, singles, 1)
	testutil.RequireRelative(t, "amplitude", singles[0].Amplitude.Value, amp, 0.01)
	require.InDelta(t, probe+center, singles[0].Center.Value, 1e-4)
	w, ok := res.Width()
	require.True(t, ok)
	testutil.RequireRelative(t, "width", w.Value, width, 0.01)

	y0, _, _ := res.Baseline()
	require.InDelta(t, 1.0, y0.Value, 0.01)
	require.Contains(t, res.Log, "Converged")
}

func TestFitSingleGaussianWindowed(t *testing.T) {
	const (
		amp    = 10.0
		center = 1.2003
		width  = 0.004
	)
	s := synthetic(2048, 1.0, 0.001, func(xs, ys []float64) {
		testutil.AddGaussian(ys, xs, amp, probe+center, width)
	})
	proc := fid.DefaultProcessingConfig()
	proc.ApplyWindow = true
	fc := DefaultFitConfig(proc, doppler.DefaultGas(), 298)

	res, err := newEngine(t).FitSpectrum(context.Background(), s, probe, fc)
	require.NoError(t, err)
	require.Equal(t, result.Success, res.Category, res.Log)
	require.Equal(t, result.TypeSinglePeaks, res.Type)
	require.Equal(t, lineshape.Gaussian, res.Shape)
	require.True(t, res.Processing.ApplyWindow)
	require.Contains(t, res.Log, "above SNR 6")

	singles := res.Singles()
	require.Len(t, singles, 1)
	testutil.RequireRelative(t, "amplitude", singles[0].Amplitude.Value, amp, 0.01)
	require.InDelta(t, probe+center, singles[0].Center.Value, 1e-4)
	w, ok := res.Width()
	require.True(t, ok)
	testutil.RequireRelative(t, "width", w.Value, width, 0.01)
}

func TestAnalyzeWindowedUsesGaussian(t *testing.T) {
	proc := fid.DefaultProcessingConfig()
	proc.ApplyWindow = true
	fc := DefaultFitConfig(proc, doppler.DefaultGas(), 298)

	res, err := newEngine(t).Analyze(context.Background(), endToEndFid(), fc)
	require.NoError(t, err)
	require.Equal(t, lineshape.Gaussian, res.Shape)
	require.True(t, res.Processing.ApplyWindow)
	require.Contains(t, []result.Category{result.Success, result.NoPeaksFound}, res.Category, res.Log)
	require.Contains(t, res.Log, "Spectrum: 4096 points")
	require.NoError(t, res.Validate())
}

func TestFitRetriesWithDoubledCap(t *testing.T) {
	// A one-iteration cap cannot converge; the re-solve runs with cap 2,
	// which exceeds MaxIterations and is accepted whatever its status.
	cfg := DefaultConfig()
	cfg.InitialIterations = 1
	cfg.MaxIterations = 1
	cfg.RelTol = 1e-12

	s := synthetic(2048, 1.0, 0.001, func(xs, ys []float64) {
		testutil.AddLorentzian(ys, xs, 10, probe+1.2003, 0.004)
	})
	res, err := newEngine(t, WithConfig(cfg)).FitSpectrum(context.Background(), s, probe, neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Success, res.Category, res.Log)
	require.Contains(t, res.Log, "Solve: status iteration-cap after 1 iterations (cap 1)")
	require.Contains(t, res.Log, "Retry: raising iteration cap to 2")
	require.Contains(t, res.Log, "(cap 2)")
	require.NotContains(t, res.Log, "raising iteration cap to 4")
	require.Equal(t, lm.StatusIterationCap, res.Status)
	require.Equal(t, 3, res.Iterations)
	require.NoError(t, res.Validate())
}

func TestFitFlatSpectrum(t *testing.T) {
	s := synthetic(2048, 1.0, 0.01, nil)

	res, err := newEngine(t).FitSpectrum(context.Background(), s, probe, neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.NoPeaksFound, res.Category, res.Log)
	require.Equal(t, result.TypeRobustLinear, res.Type)
	require.Len(t, res.Params, 2)
	require.InDelta(t, 1.0, res.Params[0], 0.01)
	require.NoError(t, res.Validate())
}

func TestFitMixedPairAndSingle(t *testing.T) {
	gas := doppler.DefaultGas()
	split := gas.Splitting(probe, 298)
	const (
		pairCenter   = 2.0
		singleCenter = 2.5
		width        = 0.003
	)
	s := synthetic(4096, 0.5, 0.002, func(xs, ys []float64) {
		testutil.AddLorentzian(ys, xs, 6, probe+pairCenter-split/2, width)
		testutil.AddLorentzian(ys, xs, 6, probe+pairCenter+split/2, width)
		testutil.AddLorentzian(ys, xs, 4, probe+singleCenter, width)
	})

	res, err := newEngine(t).FitSpectrum(context.Background(), s, probe, neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Success, res.Category, res.Log)
	require.Equal(t, result.TypeMixed, res.Type, res.Log)
	require.NoError(t, res.Validate())

	pairs := res.Pairs()
	require.Len(t, pairs, 1)
	require.InDelta(t, probe+pairCenter, pairs[0].Center.Value, bin)
	require.InDelta(t, 0.5, pairs[0].Alpha.Value, 0.05)
	testutil.RequireRelative(t, "pair amplitude", pairs[0].Amplitude.Value, 6, 0.02)

	got, ok := res.Splitting()
	require.True(t, ok)
	testutil.RequireRelative(t, "splitting", got.Value, split, 0.02)

	singles := res.Singles()
	require.Len(t, singles, 1)
	require.InDelta(t, probe+singleCenter, singles[0].Center.Value, bin)
}

func TestFitPathologicalTerminates(t *testing.T) {
	// Lines far above the amplitude limit fail rule 1 or 7 on every build.
	s := synthetic(2048, 1.0, 0.01, func(xs, ys []float64) {
		testutil.AddLorentzian(ys, xs, 500, probe+0.5, 0.004)
		testutil.AddLorentzian(ys, xs, 800, probe+1.3, 0.004)
		testutil.AddLorentzian(ys, xs, 650, probe+2.1, 0.004)
	})

	res, err := newEngine(t).FitSpectrum(context.Background(), s, probe, neonConfig())
	require.NoError(t, err)
	require.Contains(t, []result.Category{result.NoPeaksFound, result.Fail}, res.Category, res.Log)
	require.Contains(t, res.Log, "Prune")
}

func TestFitTooShortFails(t *testing.T) {
	s := spectrum.Spectrum{{X: probe}, {X: probe + bin, Y: 1}}
	res, err := newEngine(t).FitSpectrum(context.Background(), s, probe, neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Fail, res.Category)
	require.Contains(t, res.Log, "Baseline estimation failed")
}

func TestAnalyzeSaturated(t *testing.T) {
	samples := testutil.DampedCosines(5e-8, 2e-5, 1024, testutil.Tone{OffsetHz: 1e6, Amplitude: 0.7})
	res, err := newEngine(t).Analyze(context.Background(), fid.New(5e-8, probe, samples), neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Saturated, res.Category)
	require.Empty(t, res.Params)
	require.Contains(t, res.Log, "Saturated")
	require.NoError(t, res.Validate())
}

func TestAnalyzeDegenerate(t *testing.T) {
	res, err := newEngine(t).Analyze(context.Background(), fid.New(0, probe, nil), neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Invalid, res.Category)
	require.Empty(t, res.Params)
	require.Equal(t, "Invalid", res.Category.String())
}

func endToEndFid() fid.Fid {
	const dt = 5e-8
	samples := testutil.DampedCosines(dt, 2e-5, 4096, testutil.Tone{OffsetHz: 1.5e6, Amplitude: 0.3})
	testutil.AddNoise(samples, 5, 1e-5)
	return fid.New(dt, probe, samples)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := newEngine(t, WithLogger(zap.New(core)))

	res, err := e.Analyze(context.Background(), endToEndFid(), neonConfig())
	require.NoError(t, err)
	require.Equal(t, result.Success, res.Category, res.Log)

	// Zero padding doubles the transform length to 8192 points.
	step := 1 / (8192 * 5e-8) * 1e-6
	var best float64
	var center float64
	for _, s := range res.Singles() {
		if s.Amplitude.Value > best {
			best, center = s.Amplitude.Value, s.Center.Value
		}
	}
	for _, p := range res.Pairs() {
		if p.Amplitude.Value > best {
			best, center = p.Amplitude.Value, p.Center.Value
		}
	}
	require.Positive(t, best)
	require.InDelta(t, probe+1.5, center, 2*step)

	require.NotZero(t, logs.FilterMessage("fit converged").Len())
	auditLines := strings.Count(res.Log, "\n")
	require.GreaterOrEqual(t, logs.FilterLevelExact(zapcore.DebugLevel).Len(), auditLines)
}

func TestAnalyzeConcurrent(t *testing.T) {
	e := newEngine(t)
	f := endToEndFid()
	want, err := e.Analyze(context.Background(), f, neonConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]result.Result, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = e.Analyze(context.Background(), f, neonConfig())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want.Params, got.Params)
		require.Equal(t, want.Log, got.Log)
	}
}

func TestFitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := synthetic(2048, 1.0, 0.001, func(xs, ys []float64) {
		testutil.AddLorentzian(ys, xs, 10, probe+1.2, 0.004)
	})
	_, err := newEngine(t).FitSpectrum(ctx, s, probe, neonConfig())
	require.True(t, errors.Is(err, context.Canceled), "err = %v", err)

	_, err = newEngine(t).FitSpectrum(ctx, synthetic(2048, 1.0, 0.01, nil), probe, neonConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSpectrumMatchesTransform(t *testing.T) {
	e := newEngine(t)
	s, err := e.Spectrum(endToEndFid(), fid.DefaultProcessingConfig())
	require.NoError(t, err)
	require.Len(t, s, 4096)
	require.True(t, s.IsIncreasing())
	require.False(t, math.IsNaN(s.MaxY()))
}

func BenchmarkAnalyze(b *testing.B) {
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	f := endToEndFid()
	fc := neonConfig()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := e.Analyze(context.Background(), f, fc); err != nil {
			b.Fatal(err)
		}
	}
}
