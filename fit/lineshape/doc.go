// Package lineshape evaluates the spectral line profiles and composite fit
// models used by the fit engine.
//
// A Model describes the parameter layout of one fit variant (baseline line,
// single peaks, Doppler pairs, or a mix). Evaluation and the analytic
// gradient operate on a flat parameter vector:
//
//	[0] baseline y0, [1] baseline slope
//	pairs/mixed:  [2] splitting, [3] width, (amplitude, alpha, center)...,
//	              then (amplitude, center)... for singles in a mixed model
//	singles only: [2] width, (amplitude, center)...
//
// Frequencies are offsets from the probe frequency in MHz.
package lineshape
