// Package fid holds the time-domain free-induction-decay record captured by
// the spectrometer and the filters applied to it before the Fourier transform.
//
// A [Fid] is an immutable value: every operation returns a new record and the
// sample slice handed to [New] is copied.
package fid
