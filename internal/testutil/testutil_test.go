package testutil

import (
	"math"
	"testing"
)

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
		if math.Abs(a[i]) > 1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
}

func TestDampedCosinesStartAtSum(t *testing.T) {
	s := DampedCosines(1e-6, 1e-5, 16, Tone{OffsetHz: 1000, Amplitude: 0.2}, Tone{OffsetHz: 2000, Amplitude: 0.1})
	if math.Abs(s[0]-0.3) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0.3", s[0])
	}
	if math.Abs(s[15]) >= 0.3 {
		t.Fatalf("no decay: s[15] = %v", s[15])
	}
}

func TestAddLorentzianPeak(t *testing.T) {
	xs := Axis(-5, 1, 11)
	ys := make([]float64, len(xs))
	AddLorentzian(ys, xs, 2, 0, 1)
	if ys[5] != 2 {
		t.Fatalf("peak = %v, want 2", ys[5])
	}
	if math.Abs(ys[6]-1) > 1e-15 {
		t.Fatalf("half width value = %v, want 1", ys[6])
	}
}

func TestAddGaussianPeak(t *testing.T) {
	xs := Axis(-5, 1, 11)
	ys := make([]float64, len(xs))
	AddGaussian(ys, xs, 3, 0, 1)
	if ys[5] != 3 {
		t.Fatalf("peak = %v, want 3", ys[5])
	}
	if want := 3 * math.Exp(-0.5); math.Abs(ys[6]-want) > 1e-15 {
		t.Fatalf("one sigma value = %v, want %v", ys[6], want)
	}
}

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1, 2}, []float64{1, 2.5})
	if err != nil || d != 0.5 {
		t.Fatalf("d=%v err=%v", d, err)
	}
	if _, err := MaxAbsDiff([]float64{1}, nil); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
