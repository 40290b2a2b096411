package lineshape

import (
	"errors"
	"fmt"
)

// Kind tags the fit variant.
type Kind int

const (
	// Line is a bare baseline y0 + slope*x.
	Line Kind = iota
	// SinglePeaks is a baseline plus independent lines sharing one width.
	SinglePeaks
	// DopplerPairs is a baseline plus Doppler doublets sharing splitting and width.
	DopplerPairs
	// Mixed combines Doppler pairs and single peaks.
	Mixed
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "Line"
	case SinglePeaks:
		return "SinglePeaks"
	case DopplerPairs:
		return "DopplerPairs"
	case Mixed:
		return "Mixed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Parameter counts.
const (
	BaselineParams = 2
	PairParams     = 3
	SingleParams   = 2
)

// ErrParamCount is returned when a parameter vector does not match a model.
var ErrParamCount = errors.New("lineshape: parameter count does not match model")

// Model is the parameter layout of one fit variant.
type Model struct {
	Kind    Kind
	Shape   Shape
	Pairs   int
	Singles int
}

// NewModel returns the variant implied by the component counts.
func NewModel(shape Shape, pairs, singles int) Model {
	m := Model{Shape: shape, Pairs: max(pairs, 0), Singles: max(singles, 0)}

	switch {
	case m.Pairs > 0 && m.Singles > 0:
		m.Kind = Mixed
	case m.Pairs > 0:
		m.Kind = DopplerPairs
	case m.Singles > 0:
		m.Kind = SinglePeaks
	default:
		m.Kind = Line
	}

	return m
}

// HasPairs reports whether the model carries a shared splitting.
func (m Model) HasPairs() bool {
	return m.Kind == DopplerPairs || m.Kind == Mixed
}

// NumParams returns the length of the parameter vector.
func (m Model) NumParams() int {
	switch m.Kind {
	case SinglePeaks:
		return BaselineParams + 1 + SingleParams*m.Singles
	case DopplerPairs:
		return BaselineParams + 2 + PairParams*m.Pairs
	case Mixed:
		return BaselineParams + 2 + PairParams*m.Pairs + SingleParams*m.Singles
	default:
		return BaselineParams
	}
}

// SplittingIndex returns the index of the shared splitting, or -1.
func (m Model) SplittingIndex() int {
	if m.HasPairs() {
		return 2
	}
	return -1
}

// WidthIndex returns the index of the shared width, or -1 for a bare line.
func (m Model) WidthIndex() int {
	switch m.Kind {
	case SinglePeaks:
		return 2
	case DopplerPairs, Mixed:
		return 3
	default:
		return -1
	}
}

// PairIndex returns the index of the amplitude of pair i. Alpha and center
// follow at +1 and +2.
func (m Model) PairIndex(i int) int {
	return BaselineParams + 2 + PairParams*i
}

// SingleIndex returns the index of the amplitude of single i. The center
// follows at +1.
func (m Model) SingleIndex(i int) int {
	switch m.Kind {
	case SinglePeaks:
		return BaselineParams + 1 + SingleParams*i
	default:
		return BaselineParams + 2 + PairParams*m.Pairs + SingleParams*i
	}
}

// Check verifies that p has the length the model expects.
func (m Model) Check(p []float64) error {
	if len(p) != m.NumParams() {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrParamCount, m.Kind, m.NumParams(), len(p))
	}
	return nil
}

// Eval returns the model value at x for parameters p.
func (m Model) Eval(x float64, p []float64) float64 {
	y := p[0] + p[1]*x
	if m.Kind == Line {
		return y
	}

	w := p[m.WidthIndex()]
	if m.HasPairs() {
		s := p[2]
		for i := 0; i < m.Pairs; i++ {
			j := m.PairIndex(i)
			a, alpha, c := p[j], p[j+1], p[j+2]
			lo := m.Shape.Value(x-(c-s/2), w)
			hi := m.Shape.Value(x-(c+s/2), w)
			y += 2 * a * (alpha*lo + (1-alpha)*hi)
		}
	}

	for i := 0; i < m.Singles; i++ {
		j := m.SingleIndex(i)
		y += p[j] * m.Shape.Value(x-p[j+1], w)
	}

	return y
}

// Gradient writes the partial derivatives of Eval at x with respect to every
// parameter into dst, which must have length NumParams.
func (m Model) Gradient(dst []float64, x float64, p []float64) {
	for i := range dst {
		dst[i] = 0
	}
	dst[0] = 1
	dst[1] = x
	if m.Kind == Line {
		return
	}

	wi := m.WidthIndex()
	w := p[wi]

	if m.HasPairs() {
		s := p[2]
		for i := 0; i < m.Pairs; i++ {
			j := m.PairIndex(i)
			a, alpha, c := p[j], p[j+1], p[j+2]
			fl, cl, wl := m.Shape.Unit(x-(c-s/2), w)
			fu, cu, wu := m.Shape.Unit(x-(c+s/2), w)

			dst[j] = 2 * (alpha*fl + (1-alpha)*fu)
			dst[j+1] = 2 * a * (fl - fu)
			dst[j+2] = 2 * a * (alpha*cl + (1-alpha)*cu)
			dst[2] += a * ((1-alpha)*cu - alpha*cl)
			dst[wi] += 2 * a * (alpha*wl + (1-alpha)*wu)
		}
	}

	for i := 0; i < m.Singles; i++ {
		j := m.SingleIndex(i)
		a := p[j]
		f, dc, dw := m.Shape.Unit(x-p[j+1], w)
		dst[j] = f
		dst[j+1] = a * dc
		dst[wi] += a * dw
	}
}
