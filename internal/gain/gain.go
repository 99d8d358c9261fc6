// Package gain converts between gain representations and drives the
// closed-loop recompute on every gain change.
package gain

import (
	"errors"
	"math"
)

// ErrNonFinite indicates a NaN or Inf gain or decibel value.
var ErrNonFinite = errors.New("gain: value must be finite")

// FromDecibels converts an amplitude gain in dB to a linear factor.
func FromDecibels(db float64) float64 {
	return math.Pow(10, db/20)
}

// ToDecibels converts a linear gain to dB using its magnitude. Zero maps to
// -Inf.
func ToDecibels(g float64) float64 {
	return 20 * math.Log10(math.Abs(g))
}

// Invert returns -|current| when sign is set and |current| otherwise.
func Invert(sign bool, current float64) float64 {
	if sign {
		return -math.Abs(current)
	}
	return math.Abs(current)
}
