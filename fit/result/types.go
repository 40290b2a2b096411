package result

import (
	"fmt"
	"strings"
)

// Category is the outcome class of an analysis.
type Category int

const (
	// Invalid marks a degenerate input record.
	Invalid Category = iota
	// NoPeaksFound means only the robust baseline line was fitted.
	NoPeaksFound
	// Saturated means the record exceeded the digitizer limit and was not fitted.
	Saturated
	// Success means a line model passed every validation rule.
	Success
	// Fail means even the baseline could not be fitted.
	Fail
)

var categoryNames = [...]string{
	Invalid:      "Invalid",
	NoPeaksFound: "NoPeaksFound",
	Saturated:    "Saturated",
	Success:      "Success",
	Fail:         "Fail",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory is the inverse of String.
func ParseCategory(s string) (Category, error) {
	for i, n := range categoryNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("result: unknown category %q", s)
}

// FitType is the model variant that produced the parameters.
type FitType int

const (
	TypeNone FitType = iota
	TypeRobustLinear
	TypeSinglePeaks
	TypeDopplerPairs
	TypeMixed
)

var typeNames = [...]string{
	TypeNone:         "None",
	TypeRobustLinear: "RobustLinear",
	TypeSinglePeaks:  "SinglePeaks",
	TypeDopplerPairs: "DopplerPairs",
	TypeMixed:        "Mixed",
}

func (t FitType) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("FitType(%d)", int(t))
}

// ParseFitType is the inverse of String.
func ParseFitType(s string) (FitType, error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return FitType(i), nil
		}
	}
	return 0, fmt.Errorf("result: unknown fit type %q", s)
}

// Value is a fitted quantity with its standard uncertainty.
type Value struct {
	Value       float64
	Uncertainty float64
}

// Pair is one fitted Doppler doublet. Center is absolute (MHz).
type Pair struct {
	Amplitude Value
	Alpha     Value
	Center    Value
}

// Single is one fitted unsplit line. Center is absolute (MHz).
type Single struct {
	Amplitude Value
	Center    Value
}
