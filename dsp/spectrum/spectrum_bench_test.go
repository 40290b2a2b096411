package spectrum

import (
	"testing"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/internal/testutil"
)

func BenchmarkTransform8192(b *testing.B) {
	tr := NewTransformer()
	f := fid.New(5e-8, 10000, testutil.DeterministicNoise(1, 0.1, 8192))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Transform(f)
	}
}
