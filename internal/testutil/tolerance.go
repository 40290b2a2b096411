package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails tb unless got and want have equal length and
// every element pair is within eps. The worst index is reported.
func RequireSliceNearlyEqual(tb testing.TB, got, want []float64, eps float64) {
	tb.Helper()
	d, at, err := maxAbsDiff(got, want)
	if err != nil {
		tb.Fatal(err)
	}
	if d > eps {
		tb.Fatalf("index %d: got %v, want %v (diff %g > %g)", at, got[at], want[at], d, eps)
	}
}

// RequireRelative fails tb if got is farther than rel*|want| from want.
// A zero want therefore demands an exact match.
func RequireRelative(tb testing.TB, name string, got, want, rel float64) {
	tb.Helper()
	if !(math.Abs(got-want) <= rel*math.Abs(want)) {
		tb.Fatalf("%s: got %v, want %v (rel tol %g)", name, got, want, rel)
	}
}

// RequireFinite fails tb on the first NaN or Inf in data.
func RequireFinite(tb testing.TB, data []float64) {
	tb.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tb.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the largest element-wise distance between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	d, _, err := maxAbsDiff(a, b)
	return d, err
}

func maxAbsDiff(a, b []float64) (d float64, at int, err error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		v := math.Abs(a[i] - b[i])
		if math.IsNaN(v) {
			return math.Inf(1), i, nil
		}
		if v > d {
			d, at = v, i
		}
	}
	return d, at, nil
}
