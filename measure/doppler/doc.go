// Package doppler estimates the Doppler splitting produced by a supersonic
// jet and groups candidate peaks into Doppler pairs.
package doppler
