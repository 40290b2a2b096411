// Package spectrum turns filtered FIDs into magnitude spectra.
//
// The Fourier transform itself is delegated to algo-fft for power-of-two
// lengths and to gonum's real FFT otherwise. Plans and scratch buffers are
// cached per transform length inside a [Transformer], which is safe for
// concurrent use.
package spectrum
