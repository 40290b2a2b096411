package lm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimension is returned when the start point does not match the problem.
	ErrDimension = errors.New("lm: dimension mismatch")
	// ErrUnderdetermined is returned when there are no degrees of freedom.
	ErrUnderdetermined = errors.New("lm: fewer residuals than parameters")
	// ErrNonFinite is returned when the residuals at the start point are not finite.
	ErrNonFinite = errors.New("lm: non-finite residuals at start point")
)

// Problem is a nonlinear least-squares problem.
type Problem interface {
	// Dims returns the number of residuals m and parameters n.
	Dims() (m, n int)
	// Residuals writes model(p) - data into dst (length m).
	Residuals(dst, p []float64)
	// Jacobian writes d residual_i / d p_j into the m×n matrix dst.
	Jacobian(dst *mat.Dense, p []float64)
}

// Settings controls the iteration.
type Settings struct {
	MaxIterations int
	RelTol        float64 // stop when every |dp_i| <= RelTol*(|p_i|+RelTol)
	InitialLambda float64
	LambdaFactor  float64
	MaxLambda     float64
}

// DefaultSettings returns a 50 iteration cap and 1e-4 relative tolerance.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 50,
		RelTol:        1e-4,
		InitialLambda: 1e-3,
		LambdaFactor:  10,
		MaxLambda:     1e12,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if !(s.RelTol > 0) {
		s.RelTol = d.RelTol
	}
	if !(s.InitialLambda > 0) {
		s.InitialLambda = d.InitialLambda
	}
	if !(s.LambdaFactor > 1) {
		s.LambdaFactor = d.LambdaFactor
	}
	if !(s.MaxLambda > s.InitialLambda) {
		s.MaxLambda = d.MaxLambda
	}
	return s
}

const (
	minLambda = 1e-12
	minDiag   = 1e-9
)

// Result is the outcome of a fit.
type Result struct {
	X []float64
	// Sigma holds sqrt(diag((J^T J)^-1)). For robust line fits it already
	// includes the robust scale.
	Sigma      []float64
	SumSquares float64
	Chisq      float64 // SumSquares / DOF
	DOF        int
	Iterations int
	Status     Status
	Robust     bool
}

// Uncertainties returns the standard errors of X. Least-squares errors are
// scaled by max(1, sqrt(Chisq)).
func (r Result) Uncertainties() []float64 {
	out := make([]float64, len(r.Sigma))
	scale := 1.0
	if !r.Robust {
		scale = math.Max(1, math.Sqrt(r.Chisq))
	}
	for i, s := range r.Sigma {
		out[i] = scale * s
	}
	return out
}

// Solve minimizes the sum of squared residuals of p starting at x0.
func Solve(p Problem, x0 []float64, s Settings) (Result, error) {
	m, n := p.Dims()
	if n == 0 || len(x0) != n {
		return Result{}, fmt.Errorf("%w: %d parameters, start point has %d", ErrDimension, n, len(x0))
	}
	if m <= n {
		return Result{}, fmt.Errorf("%w: m=%d n=%d", ErrUnderdetermined, m, n)
	}
	s = s.withDefaults()

	x := append([]float64(nil), x0...)
	xTry := make([]float64, n)
	r := make([]float64, m)
	rTry := make([]float64, m)

	p.Residuals(r, x)
	cost := sumSquares(r)
	if !isFinite(cost) {
		return Result{}, ErrNonFinite
	}

	jac := mat.NewDense(m, n, nil)
	var jtj mat.SymDense
	a := mat.NewSymDense(n, nil)
	grad := mat.NewVecDense(n, nil)
	step := mat.NewVecDense(n, nil)
	var chol mat.Cholesky

	res := Result{Status: StatusIterationCap, DOF: m - n}
	lambda := s.InitialLambda

	for res.Iterations < s.MaxIterations {
		res.Iterations++

		p.Jacobian(jac, x)
		jtj.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(m, r))

		accepted, factored := false, false
		var costTry float64
		for ; lambda <= s.MaxLambda; lambda *= s.LambdaFactor {
			damp(a, &jtj, lambda)
			if ok := chol.Factorize(a); !ok {
				continue
			}
			if err := chol.SolveVecTo(step, grad); err != nil {
				continue
			}
			factored = true

			for i := range xTry {
				xTry[i] = x[i] - step.AtVec(i)
			}
			p.Residuals(rTry, xTry)
			costTry = sumSquares(rTry)
			if isFinite(costTry) && costTry < cost {
				accepted = true
				break
			}
		}

		if !accepted {
			res.Status = StatusNoProgress
			if !factored {
				res.Status = StatusSingular
			}
			break
		}

		x, xTry = xTry, x
		r, rTry = rTry, r
		cost = costTry
		lambda = math.Max(lambda/s.LambdaFactor, minLambda)

		if smallStep(step, x, s.RelTol) {
			res.Status = StatusSuccess
			break
		}
	}

	res.X = x
	res.SumSquares = cost
	res.Chisq = cost / float64(res.DOF)
	res.Sigma = make([]float64, n)

	p.Jacobian(jac, x)
	jtj.SymOuterK(1, jac.T())
	if !covarianceSigma(res.Sigma, &jtj) {
		res.Status = StatusSingular
	}

	return res, nil
}

// damp writes jtj with its diagonal scaled by (1+lambda) into a.
func damp(a, jtj *mat.SymDense, lambda float64) {
	n := a.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, jtj.At(i, j))
		}
		d := jtj.At(i, i)
		a.SetSym(i, i, d+lambda*math.Max(d, minDiag))
	}
}

// covarianceSigma fills sigma with the square roots of the diagonal of the
// inverse of a. Entries are +Inf when a is singular.
func covarianceSigma(sigma []float64, a *mat.SymDense) bool {
	var chol mat.Cholesky
	var cov mat.SymDense
	if ok := chol.Factorize(a); ok {
		if err := chol.InverseTo(&cov); err == nil {
			for i := range sigma {
				sigma[i] = math.Sqrt(math.Max(cov.At(i, i), 0))
			}
			return true
		}
	}

	for i := range sigma {
		sigma[i] = math.Inf(1)
	}
	return false
}

// smallStep reports whether every component of step is small relative to
// the matching parameter.
func smallStep(step *mat.VecDense, x []float64, tol float64) bool {
	for i, v := range x {
		if math.Abs(step.AtVec(i)) > tol*(math.Abs(v)+tol) {
			return false
		}
	}
	return true
}

func sumSquares(r []float64) float64 {
	var s float64
	for _, v := range r {
		s += v * v
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
