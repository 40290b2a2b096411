package fid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig reports a processing setting outside its valid range.
	ErrInvalidConfig = errors.New("fid: invalid processing config")
	// ErrMalformed reports an unreadable text record.
	ErrMalformed = errors.New("fid: malformed record")
)

func invalidConfig(name string, v float64) error {
	return fmt.Errorf("%w: %s must be >= 0: %v", ErrInvalidConfig, name, v)
}
