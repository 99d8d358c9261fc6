// Package stability classifies a continuous-time eigen-spectrum.
//
// A spectrum is stable when every eigenvalue has a strictly negative real
// part. Eigenvalues on the imaginary axis are treated as unstable.
package stability

import (
	"math"
)

type Status int

const (
	Stable Status = iota
	Unstable
)

func (s Status) String() string {
	if s == Stable {
		return "STABLE"
	}
	return "UNSTABLE"
}

// Verdict is the outcome of Classify.
type Verdict struct {
	Status Status
	// Offending holds the eigenvalues with non-negative (or NaN) real part,
	// in input order.
	Offending []complex128
	// MaxRealPart is the largest real part in the spectrum, the distance of
	// the slowest mode from the stability boundary. NaN for an empty input.
	MaxRealPart float64
}

func (v Verdict) Stable() bool {
	return v.Status == Stable
}

// Classify returns the stability verdict for a continuous-time spectrum.
func Classify(eigenvalues []complex128) Verdict {
	v := Verdict{Status: Stable, MaxRealPart: math.NaN()}
	for i, ev := range eigenvalues {
		re := real(ev)
		if i == 0 || re > v.MaxRealPart || math.IsNaN(re) {
			v.MaxRealPart = re
		}
		if re >= 0 || math.IsNaN(re) {
			v.Offending = append(v.Offending, ev)
		}
	}
	if len(v.Offending) > 0 {
		v.Status = Unstable
	}
	return v
}
