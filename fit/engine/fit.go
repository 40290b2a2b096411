package engine

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/fit/lm"
	"github.com/cwbudde/algo-ftmw/fit/result"
	"github.com/cwbudde/algo-ftmw/measure/doppler"
	"github.com/cwbudde/algo-ftmw/measure/peaks"
	"github.com/cwbudde/algo-ftmw/stats/baseline"
)

type state int

const (
	stateBuild state = iota
	stateSolve
	stateValidate
	stateConverged
	stateLinear
)

// pairGuess and singleGuess hold start values; centers are probe offsets.
type pairGuess struct {
	amp, alpha, center float64
}

type singleGuess struct {
	amp, center float64
}

// fitRun is the state of one fit call.
type fitRun struct {
	e     *Engine
	a     *audit
	fc    FitConfig
	probe float64
	bin   float64

	xs, ys []float64
	bl     baseline.Result

	splitting float64
	width     float64

	pairs   []pairGuess
	singles []singleGuess
}

func (e *Engine) fit(ctx context.Context, s spectrum.Spectrum, fc FitConfig, res result.Result, a *audit) (result.Result, error) {
	probe := res.ProbeFreq

	r := &fitRun{e: e, a: a, fc: fc, probe: probe, bin: s.BinSpacing()}
	if len(s) > 1 {
		data := s[1:]
		r.xs = make([]float64, len(data))
		r.ys = make([]float64, len(data))
		for i, p := range data {
			r.xs[i] = p.X - probe
			r.ys[i] = p.Y
		}
	}

	bl, err := baseline.Estimate(s, e.cfg.Baseline)
	if err != nil {
		a.add("Baseline estimation failed: %v", err)
		return r.linear(ctx, res)
	}
	r.bl = bl
	a.add("Baseline: y0 %g, slope %g; noise y0 %g, slope %g; bins per pass %v",
		bl.Baseline.Y0, bl.Baseline.Slope, bl.Noise.Y0, bl.Noise.Slope, bl.Passes)
	if bl.NoiseFallback {
		a.add("Noise regression failed, using baseline as noise model")
	}

	cands := peaks.Find(s.Subtract(bl.Baseline), bl.Noise, fc.SNRThreshold)
	a.add("Peaks: %d candidates above SNR %g", len(cands), fc.SNRThreshold)

	r.splitting = fc.BufferGas.Splitting(probe, fc.TemperatureK)
	r.width = doppler.InitialWidth(r.splitting, r.bin)
	lo, hi := s.Range()
	pairs := doppler.NewResolver(e.cfg.Doppler).Resolve(cands, r.splitting, r.bin, doppler.Axis{Min: lo, Max: hi})
	singles := doppler.Unpaired(cands, pairs)
	a.add("Doppler: expected splitting %g MHz (%s, %g K), %d pairs, %d singles",
		r.splitting, fc.BufferGas.Name, fc.TemperatureK, len(pairs), len(singles))

	for _, p := range pairs {
		r.pairs = append(r.pairs, pairGuess{amp: p.Amplitude, alpha: p.Alpha, center: p.Center - probe})
	}
	for _, c := range singles {
		r.singles = append(r.singles, singleGuess{amp: c.Y, center: c.X - probe})
	}

	return r.run(ctx, res)
}

// run drives the BuildModel/Solve/Validate loop. Every prune removes one
// component and every re-solve doubles the cap, so the loop is bounded.
func (r *fitRun) run(ctx context.Context, res result.Result) (result.Result, error) {
	cfg := r.e.cfg

	var (
		st      = stateBuild
		model   lineshape.Model
		x0      []float64
		sol     lm.Result
		iterCap int
		iters   int
	)

	for {
		switch st {
		case stateBuild:
			if len(r.pairs) == 0 && len(r.singles) == 0 {
				st = stateLinear
				continue
			}
			model = lineshape.NewModel(r.fc.Lineshape, len(r.pairs), len(r.singles))
			if model.NumParams() >= len(r.xs) {
				r.a.add("BuildModel: %d parameters for %d points", model.NumParams(), len(r.xs))
				r.dropWeakest()
				continue
			}
			x0 = r.initial(model)
			iterCap = cfg.InitialIterations
			iters = 0
			r.a.add("BuildModel: %s with %d pairs, %d singles", model.Kind, model.Pairs, model.Singles)
			st = stateSolve

		case stateSolve:
			if err := ctx.Err(); err != nil {
				res.Log = r.a.String()
				return res, fmt.Errorf("engine: fit cancelled: %w", err)
			}

			settings := lm.DefaultSettings()
			settings.MaxIterations = iterCap
			settings.RelTol = cfg.RelTol

			var err error
			sol, err = lm.Solve(curveProblem{model: model, xs: r.xs, ys: r.ys}, x0, settings)
			if err != nil {
				r.a.add("Solve: %v", err)
				r.dropWeakest()
				st = stateBuild
				continue
			}
			iters += sol.Iterations
			r.a.add("Solve: status %s after %d iterations (cap %d), chisq %g", sol.Status, sol.Iterations, iterCap, sol.Chisq)
			st = stateValidate

		case stateValidate:
			if r.prune(model, sol) {
				st = stateBuild
				continue
			}
			if sol.Status == lm.StatusSuccess || sol.Status == lm.StatusNoProgress || iterCap > cfg.MaxIterations {
				st = stateConverged
				continue
			}
			iterCap *= 2
			x0 = sol.X
			r.a.add("Retry: raising iteration cap to %d", iterCap)
			st = stateSolve

		case stateConverged:
			res.Category = result.Success
			res.Type = fitType(model.Kind)
			res.Status = sol.Status
			res.Iterations = iters
			res.Chisq = sol.Chisq
			res.Params = slices.Clone(sol.X)
			res.Uncertainties = sol.Uncertainties()
			res.NumSingles = model.Singles
			r.a.add("Converged: %s, %d pairs, %d singles, chisq %g", res.Type, model.Pairs, model.Singles, sol.Chisq)
			res.Log = r.a.String()
			r.a.log.Info("fit converged",
				zap.Stringer("type", res.Type),
				zap.Int("pairs", model.Pairs),
				zap.Int("singles", model.Singles),
				zap.Float64("chisq", sol.Chisq))
			return res, nil

		case stateLinear:
			return r.linear(ctx, res)
		}
	}
}

// linear fits a robust baseline line when no component survives.
func (r *fitRun) linear(ctx context.Context, res result.Result) (result.Result, error) {
	if err := ctx.Err(); err != nil {
		res.Log = r.a.String()
		return res, fmt.Errorf("engine: fit cancelled: %w", err)
	}

	line, err := lm.RobustLine(r.xs, r.ys)
	if err != nil {
		r.a.add("Fail: robust line fit: %v", err)
		res.Category = result.Fail
		res.Type = result.TypeNone
		res.Log = r.a.String()
		r.a.log.Warn("fit failed", zap.Error(err))
		return res, nil
	}

	res.Category = result.NoPeaksFound
	res.Type = result.TypeRobustLinear
	res.Status = line.Status
	res.Iterations = line.Iterations
	res.Chisq = line.Chisq
	res.Params = line.X
	res.Uncertainties = line.Uncertainties()
	r.a.add("NoPeaksFound: robust line y0 %g, slope %g", line.X[0], line.X[1])
	res.Log = r.a.String()
	r.a.log.Info("no peaks found")
	return res, nil
}

// initial builds the start vector for model from the current guesses.
func (r *fitRun) initial(m lineshape.Model) []float64 {
	p := make([]float64, m.NumParams())
	p[0] = r.bl.Baseline.At(r.probe)
	p[1] = r.bl.Baseline.Slope
	p[m.WidthIndex()] = r.width
	if m.HasPairs() {
		p[m.SplittingIndex()] = r.splitting
	}
	for i, g := range r.pairs {
		j := m.PairIndex(i)
		p[j], p[j+1], p[j+2] = g.amp, g.alpha, g.center
	}
	for i, g := range r.singles {
		j := m.SingleIndex(i)
		p[j], p[j+1] = g.amp, g.center
	}
	return p
}

// dropWeakest removes the component with the smallest start amplitude.
func (r *fitRun) dropWeakest() {
	pi := worst(len(r.pairs), func(i int) float64 { return r.pairs[i].amp }, all)
	si := worst(len(r.singles), func(i int) float64 { return r.singles[i].amp }, all)
	if pi >= 0 && (si < 0 || r.pairs[pi].amp <= r.singles[si].amp) {
		r.dropPair(pi, "weakest component")
		return
	}
	if si >= 0 {
		r.dropSingle(si, "weakest component")
	}
}

func (r *fitRun) dropPair(i int, reason string) {
	g := r.pairs[i]
	r.a.add("Prune: pair at %g MHz (%s)", r.probe+g.center, reason)
	r.pairs = slices.Delete(r.pairs, i, i+1)
}

func (r *fitRun) dropSingle(i int, reason string) {
	g := r.singles[i]
	r.a.add("Prune: single at %g MHz (%s)", r.probe+g.center, reason)
	r.singles = slices.Delete(r.singles, i, i+1)
}

func fitType(k lineshape.Kind) result.FitType {
	switch k {
	case lineshape.SinglePeaks:
		return result.TypeSinglePeaks
	case lineshape.DopplerPairs:
		return result.TypeDopplerPairs
	case lineshape.Mixed:
		return result.TypeMixed
	default:
		return result.TypeRobustLinear
	}
}
