package linalg

import (
	"gonum.org/v1/gonum/mat"
)

// Eigenvalues returns the eigenvalues of a real square matrix.
func Eigenvalues(a mat.Matrix) ([]complex128, error) {
	r, c := a.Dims()
	if r != c {
		return nil, ErrNotSquare
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, ErrEigenFailed
	}
	return eig.Values(nil), nil
}

// EigenDecompose returns the eigenvalues of a and the matrix whose columns
// are the corresponding right eigenvectors.
func EigenDecompose(a mat.Matrix) ([]complex128, *mat.CDense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, nil, ErrNotSquare
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenRight); !ok {
		return nil, nil, ErrEigenFailed
	}
	vecs := mat.NewCDense(r, r, nil)
	eig.VectorsTo(vecs)
	return eig.Values(nil), vecs, nil
}
