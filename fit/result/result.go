package result

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/dsp/spectrum"
	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/fit/lm"
)

// ErrInconsistent is returned by Validate when the parameter vector does
// not match the recorded model.
var ErrInconsistent = errors.New("result: inconsistent parameters")

// Result is the outcome of one analysis. Params follow the lineshape.Model
// layout with centers stored as offsets from ProbeFreq.
type Result struct {
	Type       FitType
	Category   Category
	Shape      lineshape.Shape
	Status     lm.Status
	Iterations int
	Chisq      float64
	ProbeFreq  float64 // MHz

	Params        []float64
	Uncertainties []float64
	NumSingles    int

	Processing  fid.ProcessingConfig
	BufferGas   string
	Temperature float64 // K

	Log string
}

// New returns an empty result carrying the analysis provenance.
func New(probe float64, proc fid.ProcessingConfig, shape lineshape.Shape, gas string, tempK float64) Result {
	return Result{
		Type:        TypeNone,
		Category:    Invalid,
		Shape:       shape,
		Status:      lm.StatusSuccess,
		ProbeFreq:   probe,
		Processing:  proc,
		BufferGas:   gas,
		Temperature: tempK,
	}
}

// Model returns the parameter layout implied by Type, NumSingles and the
// parameter count.
func (r Result) Model() lineshape.Model {
	n := len(r.Params)
	switch r.Type {
	case TypeSinglePeaks:
		return lineshape.NewModel(r.Shape, 0, max((n-3)/2, 0))
	case TypeDopplerPairs:
		return lineshape.NewModel(r.Shape, max((n-4)/3, 0), 0)
	case TypeMixed:
		return lineshape.NewModel(r.Shape, max((n-4-2*r.NumSingles)/3, 0), r.NumSingles)
	default:
		return lineshape.NewModel(r.Shape, 0, 0)
	}
}

// Validate checks that the parameter vector matches the fit type exactly for
// a successful result, and that no parameters are present where no fit ran.
func (r Result) Validate() error {
	if len(r.Uncertainties) != len(r.Params) {
		return fmt.Errorf("%w: %d parameters, %d uncertainties", ErrInconsistent, len(r.Params), len(r.Uncertainties))
	}

	switch r.Category {
	case Invalid, Saturated:
		if len(r.Params) != 0 {
			return fmt.Errorf("%w: %s result carries %d parameters", ErrInconsistent, r.Category, len(r.Params))
		}
	case Success:
		if r.Type != TypeSinglePeaks && r.Type != TypeDopplerPairs && r.Type != TypeMixed {
			return fmt.Errorf("%w: success with fit type %s", ErrInconsistent, r.Type)
		}
		m := r.Model()
		if r.Type == TypeMixed && (m.Pairs == 0 || m.Singles == 0) {
			return fmt.Errorf("%w: mixed fit needs pairs and singles", ErrInconsistent)
		}
		if m.Kind == lineshape.Line {
			return fmt.Errorf("%w: %s fit without components", ErrInconsistent, r.Type)
		}
		if err := m.Check(r.Params); err != nil {
			return fmt.Errorf("%w: %w", ErrInconsistent, err)
		}
	case NoPeaksFound:
		if r.Type == TypeRobustLinear && len(r.Params) != lineshape.BaselineParams {
			return fmt.Errorf("%w: robust line needs 2 parameters, got %d", ErrInconsistent, len(r.Params))
		}
	}

	return nil
}

// HasFit reports whether the result carries a curve.
func (r Result) HasFit() bool {
	return len(r.Params) >= lineshape.BaselineParams && r.Model().Check(r.Params) == nil
}

func (r Result) value(i int) Value {
	v := Value{Value: r.Params[i], Uncertainty: math.NaN()}
	if i < len(r.Uncertainties) {
		v.Uncertainty = r.Uncertainties[i]
	}
	return v
}

// Baseline returns the fitted offset and slope (per MHz of probe offset).
func (r Result) Baseline() (y0, slope Value, ok bool) {
	if len(r.Params) < lineshape.BaselineParams {
		return Value{}, Value{}, false
	}
	return r.value(0), r.value(1), true
}

// Splitting returns the shared Doppler splitting of a pair model.
func (r Result) Splitting() (Value, bool) {
	m := r.Model()
	if !r.HasFit() || !m.HasPairs() {
		return Value{}, false
	}
	return r.value(m.SplittingIndex()), true
}

// Width returns the shared linewidth parameter of a line model.
func (r Result) Width() (Value, bool) {
	m := r.Model()
	if !r.HasFit() || m.WidthIndex() < 0 {
		return Value{}, false
	}
	return r.value(m.WidthIndex()), true
}

// Pairs returns the fitted Doppler pairs with absolute centers.
func (r Result) Pairs() []Pair {
	m := r.Model()
	if !r.HasFit() || m.Pairs == 0 {
		return nil
	}

	out := make([]Pair, m.Pairs)
	for i := range out {
		j := m.PairIndex(i)
		out[i] = Pair{Amplitude: r.value(j), Alpha: r.value(j + 1), Center: r.value(j + 2)}
		out[i].Center.Value += r.ProbeFreq
	}
	return out
}

// Singles returns the fitted single lines with absolute centers.
func (r Result) Singles() []Single {
	m := r.Model()
	if !r.HasFit() || m.Singles == 0 {
		return nil
	}

	out := make([]Single, m.Singles)
	for i := range out {
		j := m.SingleIndex(i)
		out[i] = Single{Amplitude: r.value(j), Center: r.value(j + 1)}
		out[i].Center.Value += r.ProbeFreq
	}
	return out
}

// Eval returns the fitted curve at absolute frequency f.
func (r Result) Eval(f float64) float64 {
	if !r.HasFit() {
		return math.NaN()
	}
	return r.Model().Eval(f-r.ProbeFreq, r.Params)
}

// ToXY evaluates the fitted curve at the given absolute frequencies. It
// returns nil when the result has no fit.
func (r Result) ToXY(freqs []float64) spectrum.Spectrum {
	if !r.HasFit() {
		return nil
	}

	m := r.Model()
	out := make(spectrum.Spectrum, len(freqs))
	for i, f := range freqs {
		out[i] = spectrum.Point{X: f, Y: m.Eval(f-r.ProbeFreq, r.Params)}
	}
	return out
}

// ToXYRange evaluates the fitted curve at n evenly spaced frequencies from
// start to end inclusive.
func (r Result) ToXYRange(start, end float64, n int) spectrum.Spectrum {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return r.ToXY([]float64{start})
	}

	freqs := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range freqs {
		freqs[i] = start + float64(i)*step
	}
	freqs[n-1] = end
	return r.ToXY(freqs)
}
