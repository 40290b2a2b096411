package lm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// BisquareTuning is the Tukey biweight constant for 95% Gaussian efficiency.
	BisquareTuning = 4.685
	madToSigma     = 0.6745
	robustMaxIter  = 50
	robustTol      = 1e-8
)

// ErrTooFewPoints is returned by RobustLine for fewer than three points.
var ErrTooFewPoints = errors.New("lm: robust line needs at least three points")

// RobustLine fits y = X[0] + X[1]*x by iteratively reweighted least squares
// with Tukey bisquare weights. Chisq holds the squared robust scale and Sigma
// the scaled standard errors of the weighted fit.
func RobustLine(xs, ys []float64) (Result, error) {
	if len(xs) != len(ys) {
		return Result{}, fmt.Errorf("%w: %d x values, %d y values", ErrDimension, len(xs), len(ys))
	}
	if len(xs) < 3 {
		return Result{}, ErrTooFewPoints
	}

	n := len(xs)
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	resid := make([]float64, n)
	abs := make([]float64, n)

	y0, slope := stat.LinearRegression(xs, ys, nil, false)
	if !isFinite(y0) || !isFinite(slope) {
		return Result{}, fmt.Errorf("%w: ordinary regression", ErrNonFinite)
	}

	res := Result{Status: StatusIterationCap, Robust: true, DOF: n - 2}
	var scale float64

	for res.Iterations < robustMaxIter {
		res.Iterations++

		for i := range xs {
			resid[i] = ys[i] - (y0 + slope*xs[i])
		}
		scale = mad(resid, abs) / madToSigma
		if !(scale > 0) {
			res.Status = StatusSuccess
			break
		}

		var sw float64
		for i, r := range resid {
			u := r / (BisquareTuning * scale)
			w[i] = 0
			if math.Abs(u) < 1 {
				t := 1 - u*u
				w[i] = t * t
			}
			sw += w[i]
		}
		if !(sw > 0) {
			res.Status = StatusSingular
			break
		}

		ny0, nslope := stat.LinearRegression(xs, ys, w, false)
		if !isFinite(ny0) || !isFinite(nslope) {
			res.Status = StatusSingular
			break
		}

		done := math.Abs(ny0-y0) <= robustTol*(math.Abs(y0)+scale) &&
			math.Abs(nslope-slope) <= robustTol*(math.Abs(slope)+scale)
		y0, slope = ny0, nslope
		if done {
			res.Status = StatusSuccess
			break
		}
	}

	var ss float64
	for i := range xs {
		r := ys[i] - (y0 + slope*xs[i])
		ss += r * r
	}

	res.X = []float64{y0, slope}
	res.SumSquares = ss
	res.Chisq = scale * scale
	res.Sigma = make([]float64, 2)

	xtwx := mat.NewSymDense(2, nil)
	var s0, s1, s2 float64
	for i, x := range xs {
		s0 += w[i]
		s1 += w[i] * x
		s2 += w[i] * x * x
	}
	xtwx.SetSym(0, 0, s0)
	xtwx.SetSym(0, 1, s1)
	xtwx.SetSym(1, 1, s2)
	if !covarianceSigma(res.Sigma, xtwx) {
		res.Status = StatusSingular
	}
	for i := range res.Sigma {
		res.Sigma[i] *= math.Max(scale, math.Sqrt(ss/float64(max(res.DOF, 1))))
	}

	return res, nil
}

// mad returns the median absolute residual of r about zero, using buf as
// scratch space.
func mad(r, buf []float64) float64 {
	for i, v := range r {
		buf[i] = math.Abs(v)
	}
	sort.Float64s(buf)
	return stat.Quantile(0.5, stat.Empirical, buf, nil)
}
