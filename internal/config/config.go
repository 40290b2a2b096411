// Package config loads analysis settings from a YAML file. Values present in
// the file overlay the built-in defaults; everything else keeps its default.
//
// Example:
//
//	processing:
//	  remove_dc: true
//	  zero_pad: true
//	  apply_window: false
//	fit:
//	  lineshape: lorentzian
//	  temperature_k: 298
//	gas:
//	  name: Ne
//	tolerances:
//	  saturation_limit: 0.6
//	  doppler:
//	    rel_tolerance: 0.35
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ftmw/dsp/fid"
	"github.com/cwbudde/algo-ftmw/fit/engine"
	"github.com/cwbudde/algo-ftmw/fit/lineshape"
	"github.com/cwbudde/algo-ftmw/measure/doppler"
)

// DefaultTemperatureK is the stagnation temperature used when none is set.
const DefaultTemperatureK = 298.0

// Fit selects the model. An empty Lineshape or a zero SNRThreshold means
// "follow the window policy".
type Fit struct {
	Lineshape    string  `yaml:"lineshape"`
	SNRThreshold float64 `yaml:"snr_threshold"`
	TemperatureK float64 `yaml:"temperature_k"`
}

// Gas names a built-in buffer gas or describes a custom one.
type Gas struct {
	Name      string  `yaml:"name"`
	MolarMass float64 `yaml:"molar_mass"` // g/mol, required for unknown names
	Gamma     float64 `yaml:"gamma"`
}

// File is the top-level configuration document.
type File struct {
	Processing fid.ProcessingConfig `yaml:"processing"`
	Fit        Fit                  `yaml:"fit"`
	Gas        Gas                  `yaml:"gas"`
	Tolerances engine.Config        `yaml:"tolerances"`
}

// Default returns the built-in settings.
func Default() File {
	return File{
		Processing: fid.DefaultProcessingConfig(),
		Fit:        Fit{TemperatureK: DefaultTemperatureK},
		Gas:        Gas{Name: doppler.DefaultGas().Name},
		Tolerances: engine.DefaultConfig(),
	}
}

// Load decodes a YAML document over the defaults. Unknown keys are errors.
func Load(r io.Reader) (File, error) {
	f := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// LoadFile reads and decodes path. An empty path yields the defaults.
func LoadFile(path string) (File, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Validate checks every section.
func (f File) Validate() error {
	if err := f.Processing.Validate(); err != nil {
		return fmt.Errorf("config: processing: %w", err)
	}
	if _, err := f.BufferGas(); err != nil {
		return err
	}
	if f.Fit.Lineshape != "" {
		if _, err := lineshape.ParseShape(f.Fit.Lineshape); err != nil {
			return fmt.Errorf("config: fit: %w", err)
		}
	}
	if f.Fit.SNRThreshold < 0 {
		return fmt.Errorf("config: fit: SNR threshold must be >= 0: %v", f.Fit.SNRThreshold)
	}
	if !(f.Fit.TemperatureK > 0) {
		return fmt.Errorf("config: fit: temperature must be > 0: %v", f.Fit.TemperatureK)
	}
	if err := f.Tolerances.Validate(); err != nil {
		return fmt.Errorf("config: tolerances: %w", err)
	}
	return nil
}

// defaultGamma is the heat capacity ratio assumed for a gas missing from
// the built-in table: a monatomic ideal gas.
const defaultGamma = 5.0 / 3.0

// BufferGas resolves the gas section. Explicit molar mass or gamma values
// override the built-in table; an unknown gas needs a molar mass and falls
// back to the monatomic gamma.
func (f File) BufferGas() (doppler.BufferGas, error) {
	g, ok := doppler.LookupGas(f.Gas.Name)
	if !ok {
		g = doppler.BufferGas{Name: strings.TrimSpace(f.Gas.Name), Gamma: defaultGamma}
	}
	if f.Gas.MolarMass != 0 {
		g.MolarMass = f.Gas.MolarMass
	}
	if f.Gas.Gamma != 0 {
		g.Gamma = f.Gas.Gamma
	}
	if err := g.Validate(); err != nil {
		return doppler.BufferGas{}, fmt.Errorf("config: gas: %w", err)
	}
	return g, nil
}

// FitConfig builds the engine settings, applying the window policy for any
// field the file leaves unset.
func (f File) FitConfig() (engine.FitConfig, error) {
	gas, err := f.BufferGas()
	if err != nil {
		return engine.FitConfig{}, err
	}

	fc := engine.DefaultFitConfig(f.Processing, gas, f.Fit.TemperatureK)
	if f.Fit.Lineshape != "" {
		shape, err := lineshape.ParseShape(f.Fit.Lineshape)
		if err != nil {
			return engine.FitConfig{}, fmt.Errorf("config: fit: %w", err)
		}
		fc.Lineshape = shape
	}
	if f.Fit.SNRThreshold > 0 {
		fc.SNRThreshold = f.Fit.SNRThreshold
	}
	return fc, nil
}
