package closedloop

import (
	"errors"
	"fmt"
	"math/cmplx"
)

var (
	// ErrSingularFeedback is the sentinel matched by SingularFeedbackError.
	ErrSingularFeedback = errors.New("closedloop: 1 + g·D is zero, closed loop undefined")

	// ErrNotSISO indicates a plant with more than one input or output.
	ErrNotSISO = errors.New("closedloop: output feedback requires a SISO plant")

	// ErrInvalidSamplingRate indicates a non-positive or non-finite rate.
	ErrInvalidSamplingRate = errors.New("closedloop: sampling rate must be positive and finite")

	// ErrInvalidGain indicates a NaN or Inf gain.
	ErrInvalidGain = errors.New("closedloop: gain must be finite")

	// ErrLogarithmUndefined indicates a zero eigenvalue in A_cl.
	ErrLogarithmUndefined = errors.New("closedloop: discrete closed loop is singular, no logarithm exists")

	// ErrDegenerateBranch is the sentinel matched by DegenerateBranchWarning.
	ErrDegenerateBranch = errors.New("closedloop: eigenvalue on logarithm branch cut")
)

// SingularFeedbackError is returned when the chosen gain drives the feedback
// denominator 1 + g·D to (nearly) zero.
type SingularFeedbackError struct {
	Gain        float64
	Denominator float64
	Epsilon     float64
}

func (e *SingularFeedbackError) Error() string {
	return fmt.Sprintf("closedloop: gain %g gives |1 + g·D| = %g below %g", e.Gain, abs(e.Denominator), e.Epsilon)
}

func (e *SingularFeedbackError) Unwrap() error {
	return ErrSingularFeedback
}

// DegenerateBranchWarning flags a discrete eigenvalue on the negative real
// axis. The computation continues on the principal branch (argument π); the
// warning is diagnostic only.
type DegenerateBranchWarning struct {
	// Discrete is the eigenvalue of A_cl on the cut.
	Discrete complex128
	// Continuous is the value it was mapped to, Log(Discrete)·fs.
	Continuous complex128
}

func (w *DegenerateBranchWarning) Error() string {
	return fmt.Sprintf("closedloop: eigenvalue %v has argument π (|λ| = %g), mapped to %v on the principal branch",
		w.Discrete, cmplx.Abs(w.Discrete), w.Continuous)
}

func (w *DegenerateBranchWarning) Unwrap() error {
	return ErrDegenerateBranch
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
