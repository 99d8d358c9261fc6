package linalg

import "errors"

var (
	// ErrEigenFailed indicates the eigen-decomposition did not converge.
	ErrEigenFailed = errors.New("linalg: eigen decomposition failed")

	// ErrNotSquare indicates an operation that needs a square matrix.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrSingular indicates a matrix that cannot be inverted within tolerance.
	ErrSingular = errors.New("linalg: singular matrix")

	// ErrNoConvergence indicates an iteration that did not reach its
	// tolerance within the step limit.
	ErrNoConvergence = errors.New("linalg: iteration did not converge")

	// ErrLogZero indicates a zero eigenvalue, for which no logarithm exists.
	ErrLogZero = errors.New("linalg: logarithm of zero eigenvalue")
)
