package statespace

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMatrix indicates that one of A, B, C or D was not supplied.
	ErrNilMatrix = errors.New("statespace: nil matrix")

	// ErrNonFinite indicates a NaN or Inf entry in a plant matrix.
	ErrNonFinite = errors.New("statespace: NaN or Inf entry")

	// ErrDimension is the sentinel matched by every DimensionError.
	ErrDimension = errors.New("statespace: dimension mismatch")
)

// DimensionError reports a malformed or mismatched matrix shape.
type DimensionError struct {
	Matrix   string
	Rows     int
	Cols     int
	WantRows int
	WantCols int
	Reason   string
}

func (e *DimensionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("statespace: matrix %s is %dx%d: %s", e.Matrix, e.Rows, e.Cols, e.Reason)
	}
	return fmt.Sprintf("statespace: matrix %s is %dx%d, want %dx%d",
		e.Matrix, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimension
}
