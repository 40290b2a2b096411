// Package baseline estimates the baseline and noise floor of a magnitude
// spectrum.
//
// The spectrum is split into fixed-size bins. Bins whose median exceeds twice
// the median of all bin medians are assumed to contain lines and are rejected
// repeatedly until the set is stable. A weighted regression of the surviving
// medians gives the baseline, an unweighted regression of their standard
// deviations gives the noise model.
package baseline
