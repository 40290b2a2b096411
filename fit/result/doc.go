// Package result holds the outcome of one FID analysis: the outcome
// category, the fitted model and its parameters with uncertainties, solver
// statistics, the processing provenance and an audit log.
//
// Results persist as tab-separated key/value text. Load is tolerant: unknown
// keys are ignored and missing keys keep sentinel values. Only a missing
// ParameterList block is an error.
package result
