package engine

import (
	"math"

	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/fit/lm"
)

// prune checks a solved model against the validation rules in order and
// removes one component for the first rule that fails. The order matters:
// later rules assume the earlier defects are gone.
func (r *fitRun) prune(m lineshape.Model, sol lm.Result) bool {
	cfg := r.e.cfg
	p, u := sol.X, sol.Uncertainties()
	noise := func(center float64) float64 { return r.bl.NoiseAt(r.probe + center) }

	pairAmp := func(i int) float64 { return p[m.PairIndex(i)] }
	singleAmp := func(i int) float64 { return p[m.SingleIndex(i)] }

	if m.Pairs > 0 {
		// 1. pair amplitude range and noise floor
		if i := worst(m.Pairs, pairAmp, func(i int) bool {
			j := m.PairIndex(i)
			a := p[j]
			return !(a > 0 && a <= cfg.MaxAmplitude && a >= cfg.PairNoiseFactor*noise(p[j+2]))
		}); i >= 0 {
			r.dropPair(i, "amplitude out of range")
			return true
		}

		// 2. alpha range
		if i := worst(m.Pairs, pairAmp, func(i int) bool {
			alpha := p[m.PairIndex(i)+1]
			return !(alpha > cfg.Doppler.AlphaMin && alpha < cfg.Doppler.AlphaMax)
		}); i >= 0 {
			r.dropPair(i, "alpha out of range")
			return true
		}

		// 3. significance, only while pairs compete
		if m.Pairs > 1 {
			if i := worst(m.Pairs, pairAmp, func(i int) bool {
				j := m.PairIndex(i)
				return p[j] < u[j]/2 || p[j+1] < u[j+1]
			}); i >= 0 {
				r.dropPair(i, "amplitude or alpha not significant")
				return true
			}
		}

		w, wu := p[m.WidthIndex()], u[m.WidthIndex()]
		s, su := p[m.SplittingIndex()], u[m.SplittingIndex()]

		// 4. width resolvable
		if !(w >= cfg.MinWidthBins*r.bin) {
			r.dropPair(worst(m.Pairs, pairAmp, all), "width below resolution")
			return true
		}

		// 5. splitting near the kinetic estimate
		if !(math.Abs(s-r.splitting) <= cfg.SplittingDrift*r.splitting) {
			r.dropPair(worst(m.Pairs, pairAmp, all), "splitting far from estimate")
			return true
		}

		// 6. shared parameters significant
		if m.Pairs >= 2 && (w < wu || s < su) {
			r.dropPair(worst(m.Pairs, pairAmp, all), "width or splitting not significant")
			return true
		}
	}

	if m.Singles == 0 {
		return false
	}

	// 7. single amplitude range and noise floor
	if i := worst(m.Singles, singleAmp, func(i int) bool {
		j := m.SingleIndex(i)
		a := p[j]
		return !(a > 0 && a <= cfg.MaxAmplitude && a >= cfg.SingleNoiseFactor*noise(p[j+1]))
	}); i >= 0 {
		r.dropSingle(i, "amplitude out of range")
		return true
	}

	// 8. single significance
	factor := 1.0
	if m.Kind == lineshape.SinglePeaks {
		factor = 2
	}
	if i := worst(m.Singles, singleAmp, func(i int) bool {
		j := m.SingleIndex(i)
		return p[j] < factor*u[j]
	}); i >= 0 {
		r.dropSingle(i, "amplitude not significant")
		return true
	}

	// 9. singles-only width
	if m.Kind == lineshape.SinglePeaks {
		w, wu := p[m.WidthIndex()], u[m.WidthIndex()]
		if !(w >= cfg.MinWidthBins*r.bin) || w < wu {
			r.dropSingle(worst(m.Singles, singleAmp, all), "width not resolvable")
			return true
		}
	}

	return false
}

func all(int) bool { return true }

// worst returns the offender (bad(i) true) with the smallest amplitude, or
// -1 if there is none.
func worst(n int, amp func(int) float64, bad func(int) bool) int {
	best := -1
	for i := 0; i < n; i++ {
		if !bad(i) {
			continue
		}
		if best < 0 || amp(i) < amp(best) {
			best = i
		}
	}
	return best
}
