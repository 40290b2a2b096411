package baseline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
)

// DefaultBinSize is the number of spectrum points per bin.
const DefaultBinSize = 10

// DefaultRejectFactor rejects bins whose median exceeds this multiple of the
// median of bin medians.
const DefaultRejectFactor = 2.0

// ErrEstimationFailed reports that no baseline could be fitted.
var ErrEstimationFailed = errors.New("baseline: estimation failed")

// Options configures Estimate.
type Options struct {
	BinSize      int     `yaml:"bin_size"`
	RejectFactor float64 `yaml:"reject_factor"`
}

// DefaultOptions returns the default bin size and rejection factor.
func DefaultOptions() Options {
	return Options{BinSize: DefaultBinSize, RejectFactor: DefaultRejectFactor}
}

// Result is the baseline and noise model of a spectrum.
type Result struct {
	Baseline spectrum.Line
	Noise    spectrum.Line

	// NoiseFallback is set when the noise regression failed and Noise is a
	// copy of Baseline.
	NoiseFallback bool

	// Passes holds the surviving bin count before each rejection pass and
	// after the last one.
	Passes []int
}

// NoiseAt evaluates the noise model at x.
func (r Result) NoiseAt(x float64) float64 {
	return r.Noise.At(x)
}

// Bin holds the statistics of one contiguous group of points.
type Bin struct {
	MedianX  float64
	MedianY  float64
	Variance float64
	StdDev   float64
}

// Estimate computes the baseline and noise model of s. Point 0 (the blocked
// DC bin) is ignored.
func Estimate(s spectrum.Spectrum, opts Options) (Result, error) {
	if opts.BinSize <= 1 {
		opts.BinSize = DefaultBinSize
	}
	if !(opts.RejectFactor > 0) {
		opts.RejectFactor = DefaultRejectFactor
	}

	var data spectrum.Spectrum
	if len(s) > 1 {
		data = s[1:]
	}

	bins := MakeBins(data, opts.BinSize)
	if len(bins) < 2 {
		return Result{}, fmt.Errorf("%w: %d bins from %d points", ErrEstimationFailed, len(bins), len(data))
	}

	bins, passes := reject(bins, opts.RejectFactor)
	if len(bins) < 2 {
		return Result{}, fmt.Errorf("%w: only %d bins survived rejection", ErrEstimationFailed, len(bins))
	}

	n := len(bins)
	xs := make([]float64, n)
	ys := make([]float64, n)
	sd := make([]float64, n)
	ws := weights(bins)
	for i, b := range bins {
		xs[i] = b.MedianX
		ys[i] = b.MedianY
		sd[i] = b.StdDev
	}

	y0, slope := stat.LinearRegression(xs, ys, ws, false)
	if !finite(y0, slope) {
		return Result{}, fmt.Errorf("%w: singular baseline regression", ErrEstimationFailed)
	}

	res := Result{
		Baseline: spectrum.Line{Y0: y0, Slope: slope},
		Passes:   passes,
	}

	ny0, nslope := stat.LinearRegression(xs, sd, nil, false)
	if finite(ny0, nslope) {
		res.Noise = spectrum.Line{Y0: ny0, Slope: nslope}
	} else {
		res.Noise = res.Baseline
		res.NoiseFallback = true
	}

	return res, nil
}

// MakeBins partitions s into contiguous groups of size points, dropping a
// trailing partial group.
func MakeBins(s spectrum.Spectrum, size int) []Bin {
	if size <= 0 {
		return nil
	}

	count := len(s) / size
	bins := make([]Bin, 0, count)
	xs := make([]float64, size)
	ys := make([]float64, size)
	for b := 0; b < count; b++ {
		for i := 0; i < size; i++ {
			p := s[b*size+i]
			xs[i], ys[i] = p.X, p.Y
		}

		variance := stat.Variance(ys, nil)
		bins = append(bins, Bin{
			MedianX:  Median(xs),
			MedianY:  Median(ys),
			Variance: variance,
			StdDev:   math.Sqrt(variance),
		})
	}

	return bins
}

// reject drops bins above factor times the median of bin medians until no
// bin is dropped. The survivor count never grows between passes.
func reject(bins []Bin, factor float64) ([]Bin, []int) {
	passes := []int{len(bins)}
	medians := make([]float64, 0, len(bins))

	for len(bins) > 0 {
		medians = medians[:0]
		for _, b := range bins {
			medians = append(medians, b.MedianY)
		}
		limit := factor * Median(medians)

		kept := bins[:0:0]
		for _, b := range bins {
			if !(b.MedianY > limit) {
				kept = append(kept, b)
			}
		}

		passes = append(passes, len(kept))
		if len(kept) == len(bins) {
			break
		}
		bins = kept
	}

	return bins, passes
}

// weights returns 1/variance per bin. Zero variances are floored to the
// smallest positive variance in the set, or 1 if every variance is zero.
func weights(bins []Bin) []float64 {
	floor := math.Inf(1)
	for _, b := range bins {
		if b.Variance > 0 && b.Variance < floor {
			floor = b.Variance
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1
	}

	ws := make([]float64, len(bins))
	for i, b := range bins {
		v := b.Variance
		if !(v > 0) {
			v = floor
		}
		ws[i] = 1 / v
	}

	return ws
}

// Median returns the median of x without modifying it. Even-length input
// averages the two middle elements. Median of an empty slice is NaN.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
