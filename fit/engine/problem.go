package engine

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-ftmw/fit/lineshape"
)

// curveProblem is the least-squares problem of fitting model to (xs, ys).
// x values are offsets from the probe frequency.
type curveProblem struct {
	model  lineshape.Model
	xs, ys []float64
}

func (c curveProblem) Dims() (int, int) {
	return len(c.xs), c.model.NumParams()
}

func (c curveProblem) Residuals(dst, p []float64) {
	for i, x := range c.xs {
		dst[i] = c.model.Eval(x, p) - c.ys[i]
	}
}

func (c curveProblem) Jacobian(dst *mat.Dense, p []float64) {
	for i, x := range c.xs {
		c.model.Gradient(dst.RawRowView(i), x, p)
	}
}
