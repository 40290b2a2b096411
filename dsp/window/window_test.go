package window

import (
	"math"
	"sync"
	"testing"
)

func TestGenerateLengthAndFinite(t *testing.T) {
	for _, n := range []int{1, 2, 64} {
		w, err := Generate(TypeBlackmanHarris4Term, n)
		if err != nil {
			t.Fatalf("Generate(%d): %v", n, err)
		}
		if len(w) != n {
			t.Fatalf("len=%d, want %d", len(w), n)
		}
		for i, v := range w {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("n=%d: coefficient[%d] invalid: %v", n, i, v)
			}
		}
	}
	if got := TypeBlackmanHarris4Term.String(); got != "blackman-harris-4t" {
		t.Fatalf("String=%q", got)
	}
}

func TestBlackmanHarrisShape(t *testing.T) {
	w, err := Generate(TypeBlackmanHarris4Term, 101)
	if err != nil {
		t.Fatal(err)
	}

	// a0 + a1 + a2 + a3 at the endpoints.
	wantEdge := 0.35875 - 0.48829 + 0.14128 - 0.01168
	if math.Abs(w[0]-wantEdge) > 1e-12 || math.Abs(w[100]-wantEdge) > 1e-12 {
		t.Fatalf("edges = %v, %v, want %v", w[0], w[100], wantEdge)
	}
	if math.Abs(w[50]-1) > 1e-12 {
		t.Fatalf("center = %v, want 1", w[50])
	}
	for i := 0; i < 50; i++ {
		if math.Abs(w[i]-w[100-i]) > 1e-12 {
			t.Fatalf("not symmetric at %d: %v != %v", i, w[i], w[100-i])
		}
	}
}

func TestGenerateInvalid(t *testing.T) {
	if _, err := Generate(TypeBlackmanHarris4Term, 0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := Generate(Type(99), 8); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestCacheApplyMatchesGenerate(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	w, _ := Generate(TypeBlackmanHarris4Term, len(buf))
	want := make([]float64, len(buf))
	for i := range buf {
		want[i] = buf[i] * w[i]
	}

	if err := NewCache().Apply(TypeBlackmanHarris4Term, buf); err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestCacheReusesCoefficients(t *testing.T) {
	c := NewCache()
	a, err := c.Coefficients(TypeBlackmanHarris4Term, 32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := c.Coefficients(TypeBlackmanHarris4Term, 32)
	if &a[0] != &b[0] {
		t.Fatal("expected the same backing array for repeated lookups")
	}
	if _, err := c.Coefficients(TypeBlackmanHarris4Term, 64); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len=%d, want 2", c.Len())
	}
}

func TestCacheConcurrentApply(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buf := make([]float64, 16+n)
			for i := range buf {
				buf[i] = 1
			}
			if err := c.Apply(TypeBlackmanHarris4Term, buf); err != nil {
				t.Error(err)
			}
		}(g % 3)
	}
	wg.Wait()
	if c.Len() != 3 {
		t.Fatalf("Len=%d, want 3", c.Len())
	}
}
