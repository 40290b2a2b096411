// Package engine runs the automatic FID analysis pipeline: filtering and
// Fourier transform, baseline and noise estimation, peak detection, Doppler
// pair resolution and the iterative nonlinear fit with its prune/retry loop.
//
// An Engine is safe for concurrent use. It owns an FFT plan cache and a
// window cache shared by all calls.
package engine
