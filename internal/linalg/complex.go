package linalg

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// pivotTolerance is the smallest pivot, relative to the largest entry of the
// matrix, accepted by Inverse.
const pivotTolerance = 1e-12

// Inverse returns the inverse of a square complex matrix using Gauss-Jordan
// elimination with partial pivoting.
func Inverse(a *mat.CDense) (*mat.CDense, error) {
	n, c := a.Dims()
	if n != c {
		return nil, ErrNotSquare
	}

	// Augmented [a | I] kept as row slices so pivoting is a slice swap.
	rows := make([][]complex128, n)
	scale := 0.0
	for i := range rows {
		rows[i] = make([]complex128, 2*n)
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			rows[i][j] = v
			scale = max(scale, cmplx.Abs(v))
		}
		rows[i][n+i] = 1
	}
	if scale == 0 {
		return nil, ErrSingular
	}

	for col := 0; col < n; col++ {
		piv := col
		best := cmplx.Abs(rows[col][col])
		for r := col + 1; r < n; r++ {
			if v := cmplx.Abs(rows[r][col]); v > best {
				piv, best = r, v
			}
		}
		if best <= pivotTolerance*scale {
			return nil, ErrSingular
		}
		rows[col], rows[piv] = rows[piv], rows[col]

		inv := 1 / rows[col][col]
		for j := range rows[col] {
			rows[col][j] *= inv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := rows[r][col]
			if f == 0 {
				continue
			}
			for j := range rows[r] {
				rows[r][j] -= f * rows[col][j]
			}
		}
	}

	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, rows[i][n+j])
		}
	}
	return out, nil
}

// MulDiag returns v * diag(d) * w for n×n matrices v, w.
func MulDiag(v *mat.CDense, d []complex128, w *mat.CDense) *mat.CDense {
	n, _ := v.Dims()
	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += v.At(i, k) * d[k] * w.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// ScaleC multiplies every entry of a in place by f.
func ScaleC(a *mat.CDense, f complex128) {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a.Set(i, j, a.At(i, j)*f)
		}
	}
}

func toCDense(a mat.Matrix) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, complex(a.At(i, j), 0))
		}
	}
	return out
}

func identityC(n int) *mat.CDense {
	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

func cloneC(a *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	return out
}

// combineC returns α·a + β·b.
func combineC(alpha float64, a *mat.CDense, beta float64, b *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	fa, fb := complex(alpha, 0), complex(beta, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, fa*a.At(i, j)+fb*b.At(i, j))
		}
	}
	return out
}

func mulC(a, b *mat.CDense) *mat.CDense {
	r, m := a.Dims()
	_, c := b.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			var sum complex128
			for k := 0; k < m; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// norm1C is the maximum absolute column sum.
func norm1C(a *mat.CDense) float64 {
	r, c := a.Dims()
	var best float64
	for j := 0; j < c; j++ {
		var s float64
		for i := 0; i < r; i++ {
			s += cmplx.Abs(a.At(i, j))
		}
		best = math.Max(best, s)
	}
	return best
}
