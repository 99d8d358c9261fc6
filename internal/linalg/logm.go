package linalg

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// OnBranchCut reports whether z lies on the negative real axis, where the
// principal argument is exactly π. tol is relative to |z|.
func OnBranchCut(z complex128, tol float64) bool {
	return real(z) < 0 && math.Abs(imag(z)) <= tol*cmplx.Abs(z)
}

// PrincipalLog returns the principal logarithm of z with imaginary part in
// (-π, π]. Values on the branch cut are mapped to ln|z| + iπ and flagged.
func PrincipalLog(z complex128, tol float64) (w complex128, onCut bool, err error) {
	if z == 0 {
		return 0, false, ErrLogZero
	}
	if OnBranchCut(z, tol) {
		return complex(math.Log(cmplx.Abs(z)), math.Pi), true, nil
	}
	return cmplx.Log(z), false, nil
}

// LogResult is the output of Logm.
type LogResult struct {
	// Log is the principal matrix logarithm.
	Log *mat.CDense
	// Eigenvalues of the input matrix, in decomposition order.
	Eigenvalues []complex128
	// Cut lists indices into Eigenvalues that lie on the branch cut.
	Cut []int
}

// Logm computes the principal logarithm of a real matrix as
// V·diag(Log λ)·V⁻¹. When the eigenbasis cannot be inverted (a defective
// matrix) it falls back to inverse scaling and squaring.
func Logm(a mat.Matrix, tol float64) (*LogResult, error) {
	vals, vecs, err := EigenDecompose(a)
	if err != nil {
		return nil, err
	}
	logs := make([]complex128, len(vals))
	var cut []int
	for i, v := range vals {
		w, onCut, err := PrincipalLog(v, tol)
		if err != nil {
			return nil, err
		}
		if onCut {
			cut = append(cut, i)
		}
		logs[i] = w
	}
	inv, err := Inverse(vecs)
	if errors.Is(err, ErrSingular) {
		l, err := logmSquaring(toCDense(a), rotation(vals, cut))
		if err != nil {
			return nil, err
		}
		return &LogResult{Log: l, Eigenvalues: vals, Cut: cut}, nil
	}
	if err != nil {
		return nil, err
	}
	return &LogResult{
		Log:         MulDiag(vecs, logs, inv),
		Eigenvalues: vals,
		Cut:         cut,
	}, nil
}
