package doppler

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	gasConstant   = 8.314462618 // J/(mol K)
	speedOfLight  = 299792458.0 // m/s
	widthFraction = 0.1
)

// BufferGas describes the carrier gas of the pulsed jet.
type BufferGas struct {
	Name      string  `yaml:"name"`
	MolarMass float64 `yaml:"molar_mass"` // g/mol
	Gamma     float64 `yaml:"gamma"`      // heat capacity ratio Cp/Cv
}

var knownGases = []BufferGas{
	{Name: "He", MolarMass: 4.002602, Gamma: 5.0 / 3.0},
	{Name: "Ne", MolarMass: 20.1797, Gamma: 5.0 / 3.0},
	{Name: "Ar", MolarMass: 39.948, Gamma: 5.0 / 3.0},
	{Name: "Kr", MolarMass: 83.798, Gamma: 5.0 / 3.0},
	{Name: "Xe", MolarMass: 131.293, Gamma: 5.0 / 3.0},
	{Name: "N2", MolarMass: 28.0134, Gamma: 1.4},
	{Name: "H2", MolarMass: 2.01588, Gamma: 1.41},
}

// DefaultGas is neon, the usual carrier for FTMW jets.
func DefaultGas() BufferGas {
	return knownGases[1]
}

// KnownGases returns the built-in gases sorted by name.
func KnownGases() []BufferGas {
	out := append([]BufferGas(nil), knownGases...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupGas returns the built-in gas with the given name (case-insensitive).
func LookupGas(name string) (BufferGas, bool) {
	for _, g := range knownGases {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return BufferGas{}, false
}

// Validate checks the gas parameters.
func (g BufferGas) Validate() error {
	if !(g.MolarMass > 0) {
		return fmt.Errorf("doppler: gas %q molar mass must be > 0: %v", g.Name, g.MolarMass)
	}
	if !(g.Gamma > 1) {
		return fmt.Errorf("doppler: gas %q gamma must be > 1: %v", g.Name, g.Gamma)
	}
	return nil
}

// JetVelocity returns the terminal velocity (m/s) of an ideal supersonic
// expansion from stagnation temperature tempK.
func (g BufferGas) JetVelocity(tempK float64) float64 {
	if g.Validate() != nil || !(tempK > 0) {
		return 0
	}
	m := g.MolarMass * 1e-3
	return math.Sqrt(2 * g.Gamma / (g.Gamma - 1) * gasConstant * tempK / m)
}

// Splitting returns the expected Doppler splitting (MHz) of a line at
// freqMHz for a jet travelling along the cavity axis.
func (g BufferGas) Splitting(freqMHz, tempK float64) float64 {
	return 2 * freqMHz * g.JetVelocity(tempK) / speedOfLight
}

// InitialWidth returns the starting linewidth guess (MHz) for a given
// splitting and FT bin spacing.
func InitialWidth(splitting, binSpacing float64) float64 {
	return math.Max(2*binSpacing, widthFraction*splitting)
}
