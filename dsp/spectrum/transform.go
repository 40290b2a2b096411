package spectrum

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
)

// PlaceholderLen is the number of points returned for degenerate input.
const PlaceholderLen = 100

// placeholderStep separates placeholder points (MHz).
const placeholderStep = 1e-3

// workspace holds the plan and scratch buffers for one transform length.
type workspace struct {
	mu sync.Mutex

	pow2 *algofft.Plan[complex128]
	real *fourier.FFT

	in, out []complex128
	re, im  []float64
	mag     []float64
}

// Transformer computes magnitude spectra. Plans and buffers are cached by
// transform length; a Transformer may be shared between goroutines.
type Transformer struct {
	mu    sync.Mutex
	cache map[int]*workspace
}

// NewTransformer returns a Transformer with an empty plan cache.
func NewTransformer() *Transformer {
	return &Transformer{cache: make(map[int]*workspace)}
}

// CachedLengths returns the number of cached transform lengths.
func (t *Transformer) CachedLengths() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.cache)
}

func (t *Transformer) workspaceFor(n int) (*workspace, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ws, ok := t.cache[n]; ok {
		return ws, nil
	}

	half := n / 2
	ws := &workspace{
		re:  make([]float64, half),
		im:  make([]float64, half),
		mag: make([]float64, half),
	}

	if n&(n-1) == 0 {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("spectrum: fft plan for length %d: %w", n, err)
		}
		ws.pow2 = plan
		ws.in = make([]complex128, n)
		ws.out = make([]complex128, n)
	} else {
		ws.real = fourier.NewFFT(n)
		ws.out = make([]complex128, n/2+1)
	}

	t.cache[n] = ws

	return ws, nil
}

// Transform returns the magnitude spectrum of f and its largest magnitude.
//
// Bin 0 is the blocked DC term at the probe frequency with zero magnitude.
// Bin k (1 <= k < L/2) lies at probe + k/(L*dt) MHz with magnitude
// |X[k]|/L*1000. Degenerate records yield a zero placeholder of
// PlaceholderLen points; Transform never fails on them.
func (t *Transformer) Transform(f fid.Fid) (Spectrum, float64) {
	probe := f.ProbeFrequency()
	if f.IsDegenerate() {
		return Placeholder(probe), 0
	}

	n := f.Len()
	if n < 4 {
		return Spectrum{{X: probe}}, 0
	}

	ws, err := t.workspaceFor(n)
	if err != nil {
		return Placeholder(probe), 0
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if err := ws.forward(f); err != nil {
		return Placeholder(probe), 0
	}

	half := n / 2
	for k := 1; k < half; k++ {
		ws.re[k] = real(ws.out[k])
		ws.im[k] = imag(ws.out[k])
	}
	ws.re[0], ws.im[0] = 0, 0

	vecmath.Magnitude(ws.mag, ws.re, ws.im)

	scale := 1000 / float64(n)
	step := 1 / (float64(n) * f.Spacing()) * 1e-6

	out := make(Spectrum, half)
	out[0] = Point{X: probe}
	maxY := 0.0
	for k := 1; k < half; k++ {
		y := ws.mag[k] * scale
		out[k] = Point{X: probe + float64(k)*step, Y: y}
		if y > maxY {
			maxY = y
		}
	}

	return out, maxY
}

func (ws *workspace) forward(f fid.Fid) error {
	if ws.pow2 != nil {
		for i := range ws.in {
			ws.in[i] = complex(f.At(i), 0)
		}
		return ws.pow2.Forward(ws.out, ws.in)
	}

	ws.out = ws.real.Coefficients(ws.out, f.Samples())
	return nil
}

// Placeholder returns a zero-magnitude spectrum used for degenerate input.
func Placeholder(probe float64) Spectrum {
	out := make(Spectrum, PlaceholderLen)
	for i := range out {
		out[i] = Point{X: probe + float64(i)*placeholderStep}
	}
	return out
}
