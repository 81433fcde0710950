package partials

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by the engine. They are local, recoverable conditions: a
// caller is expected to fall back to a default view instead of aborting.
var (
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrNotFound         = errors.New("not found")
	ErrEmptyInput       = errors.New("not enough notes")
	ErrInvalidPitch     = errors.New("invalid pitch id")
	ErrInvalidProfile   = errors.New("invalid instrument profile")
)

// CheckFrequency returns an error wrapping ErrInvalidFrequency if f is not a
// finite, positive number of Hz.
func CheckFrequency(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fmt.Errorf("%w: %v Hz", ErrInvalidFrequency, f)
	}
	return nil
}

// CheckDuration returns an error wrapping ErrInvalidDuration if d is negative
// or not finite.
func CheckDuration(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("%w: %v s", ErrInvalidDuration, d)
	}
	return nil
}
