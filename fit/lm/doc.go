// Package lm implements a Levenberg-Marquardt least-squares solver on top of
// gonum's dense linear algebra, plus an iteratively reweighted robust line
// fit used when no spectral lines survive.
//
// Problems supply residuals and their Jacobian through the Problem
// interface. Solve reports the final parameters, covariance-derived
// standard errors, chi-square per degree of freedom, iteration count, and a
// Status describing why iteration stopped.
package lm
