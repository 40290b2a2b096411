package lm

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-ftmw/internal/testutil"
)

type expDecay struct {
	t, y []float64
}

func (e expDecay) Dims() (int, int) { return len(e.t), 2 }

func (e expDecay) Residuals(dst, p []float64) {
	for i, t := range e.t {
		dst[i] = p[0]*math.Exp(-p[1]*t) - e.y[i]
	}
}

func (e expDecay) Jacobian(dst *mat.Dense, p []float64) {
	for i, t := range e.t {
		ex := math.Exp(-p[1] * t)
		dst.Set(i, 0, ex)
		dst.Set(i, 1, -p[0]*t*ex)
	}
}

func newExpDecay(a, b, noise float64) expDecay {
	t := testutil.Axis(0, 0.1, 50)
	y := make([]float64, len(t))
	for i := range t {
		y[i] = a * math.Exp(-b*t[i])
	}
	if noise > 0 {
		testutil.AddNoise(y, 3, noise)
	}
	return expDecay{t: t, y: y}
}

// constant fits a single level to data.
type constant []float64

func (c constant) Dims() (int, int) { return len(c), 1 }

func (c constant) Residuals(dst, p []float64) {
	for i, v := range c {
		dst[i] = p[0] - v
	}
}

func (c constant) Jacobian(dst *mat.Dense, _ []float64) {
	for i := range c {
		dst.Set(i, 0, 1)
	}
}

// flat ignores its parameter.
type flat struct{}

func (flat) Dims() (int, int)                     { return 4, 1 }
func (flat) Residuals(dst, _ []float64)           { copy(dst, []float64{1, -1, 2, 0}) }
func (flat) Jacobian(dst *mat.Dense, _ []float64) { dst.Zero() }

func TestSolveExpDecayNoiseless(t *testing.T) {
	res, err := Solve(newExpDecay(3, 1.3, 0), []float64{1, 0.5}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSuccess && res.Status != StatusNoProgress {
		t.Fatalf("status = %v", res.Status)
	}
	testutil.RequireRelative(t, "a", res.X[0], 3, 1e-6)
	testutil.RequireRelative(t, "b", res.X[1], 1.3, 1e-6)
	if res.DOF != 48 {
		t.Fatalf("DOF = %d", res.DOF)
	}
}

func TestSolveExpDecayNoisy(t *testing.T) {
	res, err := Solve(newExpDecay(3, 1.3, 0.01), []float64{2, 1}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("status = %v", res.Status)
	}
	testutil.RequireRelative(t, "a", res.X[0], 3, 0.01)
	testutil.RequireRelative(t, "b", res.X[1], 1.3, 0.02)

	u := res.Uncertainties()
	for i, v := range u {
		if !(v > 0) || math.IsInf(v, 0) {
			t.Fatalf("uncertainty %d = %v", i, v)
		}
	}
}

func TestSolveConstantStatistics(t *testing.T) {
	res, err := Solve(constant{1, 2, 3, 4}, []float64{0}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireRelative(t, "mean", res.X[0], 2.5, 1e-9)
	testutil.RequireRelative(t, "sumsq", res.SumSquares, 5, 1e-9)
	testutil.RequireRelative(t, "chisq", res.Chisq, 5.0/3, 1e-9)
	testutil.RequireRelative(t, "sigma", res.Sigma[0], 0.5, 1e-12)
	testutil.RequireRelative(t, "uncertainty", res.Uncertainties()[0], 0.5*math.Sqrt(5.0/3), 1e-9)
}

func TestUncertaintyScaleFloor(t *testing.T) {
	r := Result{Sigma: []float64{0.2}, Chisq: 0.01}
	if got := r.Uncertainties()[0]; got != 0.2 {
		t.Fatalf("got %v, want 0.2", got)
	}
	r.Robust = true
	r.Chisq = 100
	if got := r.Uncertainties()[0]; got != 0.2 {
		t.Fatalf("robust got %v, want 0.2", got)
	}
}

func TestSolveIterationCap(t *testing.T) {
	s := DefaultSettings()
	s.MaxIterations = 1
	res, err := Solve(newExpDecay(3, 1.3, 0), []float64{1, 0.5}, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusIterationCap || res.Iterations != 1 {
		t.Fatalf("status = %v after %d iterations", res.Status, res.Iterations)
	}
}

func TestSolveSingular(t *testing.T) {
	res, err := Solve(flat{}, []float64{1}, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSingular {
		t.Fatalf("status = %v, want singular", res.Status)
	}
	if !math.IsInf(res.Sigma[0], 1) {
		t.Fatalf("sigma = %v, want +Inf", res.Sigma[0])
	}
}

func TestSolveErrors(t *testing.T) {
	if _, err := Solve(constant{1}, []float64{0}, DefaultSettings()); !errors.Is(err, ErrUnderdetermined) {
		t.Fatalf("err = %v, want ErrUnderdetermined", err)
	}
	if _, err := Solve(constant{1, 2, 3}, []float64{0, 1}, DefaultSettings()); !errors.Is(err, ErrDimension) {
		t.Fatalf("err = %v, want ErrDimension", err)
	}
	if _, err := Solve(constant{1, math.NaN(), 3}, []float64{0}, DefaultSettings()); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
}

func TestStatusStrings(t *testing.T) {
	for _, s := range []Status{StatusSuccess, StatusNoProgress, StatusIterationCap, StatusSingular} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseStatus(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRobustLineRejectsOutliers(t *testing.T) {
	xs := testutil.Axis(0, 1, 100)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2 + 0.5*x + 0.01*math.Sin(1.7*float64(i))
	}
	for _, i := range []int{10, 50, 90} {
		ys[i] += 50
	}

	res, err := RobustLine(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Robust {
		t.Fatal("robust flag not set")
	}
	if math.Abs(res.X[0]-2) > 0.02 || math.Abs(res.X[1]-0.5) > 0.002 {
		t.Fatalf("line = %v", res.X)
	}
	if res.Chisq > 1e-3 {
		t.Fatalf("robust scale^2 = %v", res.Chisq)
	}
	testutil.RequireFinite(t, res.Uncertainties())
}

func TestRobustLineExact(t *testing.T) {
	xs := testutil.Axis(-1, 0.5, 9)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 1 - 3*x
	}
	res, err := RobustLine(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSuccess || res.Iterations != 1 {
		t.Fatalf("status = %v, iterations = %d", res.Status, res.Iterations)
	}
	if math.Abs(res.X[0]-1) > 1e-12 || math.Abs(res.X[1]+3) > 1e-12 {
		t.Fatalf("line = %v", res.X)
	}
}

func TestRobustLineErrors(t *testing.T) {
	if _, err := RobustLine([]float64{1, 2}, []float64{1, 2}); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("err = %v", err)
	}
	if _, err := RobustLine([]float64{1, 2, 3}, []float64{1, 2}); !errors.Is(err, ErrDimension) {
		t.Fatalf("err = %v", err)
	}
}

func BenchmarkSolveExpDecay(b *testing.B) {
	p := newExpDecay(3, 1.3, 0.01)
	x0 := []float64{2, 1}
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Solve(p, x0, DefaultSettings())
	}
}
