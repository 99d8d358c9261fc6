package linalg

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

const (
	// maxRoots bounds the square roots taken before the series.
	maxRoots = 64
	// maxSqrtIter bounds the Denman–Beavers iteration for one root.
	maxSqrtIter = 100
	// seriesRadius is the ‖X - I‖₁ below which log(I + E) is summed.
	seriesRadius = 0.25
	seriesTerms  = 80
)

// Sqrtm returns the principal square root of a by the Denman–Beavers
// iteration. a must have no eigenvalues on the closed negative real axis.
func Sqrtm(a *mat.CDense) (*mat.CDense, error) {
	n, c := a.Dims()
	if n != c {
		return nil, ErrNotSquare
	}
	y := cloneC(a)
	z := identityC(n)
	for i := 0; i < maxSqrtIter; i++ {
		yi, err := Inverse(y)
		if err != nil {
			return nil, err
		}
		zi, err := Inverse(z)
		if err != nil {
			return nil, err
		}
		ny := combineC(0.5, y, 0.5, zi)
		nz := combineC(0.5, z, 0.5, yi)
		delta := norm1C(combineC(1, ny, -1, y))
		y, z = ny, nz
		if delta <= 1e-13*norm1C(y) {
			return y, nil
		}
	}
	return nil, ErrNoConvergence
}

// logmSquaring is inverse scaling and squaring on a rotated matrix:
// log(A) = 2^k·log((e^{-iθ}A)^{1/2^k}) + iθ·I. The rotation moves eigenvalues
// off the negative real axis; θ = 0 when none lie there.
func logmSquaring(a *mat.CDense, theta float64) (*mat.CDense, error) {
	n, _ := a.Dims()
	x := cloneC(a)
	if theta != 0 {
		ScaleC(x, cmplx.Exp(complex(0, -theta)))
	}

	k := 0
	id := identityC(n)
	for ; norm1C(combineC(1, x, -1, id)) >= seriesRadius; k++ {
		if k == maxRoots {
			return nil, ErrNoConvergence
		}
		r, err := Sqrtm(x)
		if err != nil {
			return nil, err
		}
		x = r
	}

	// log(I + E) = E - E²/2 + E³/3 - ...
	e := combineC(1, x, -1, id)
	sum := mat.NewCDense(n, n, nil)
	term := cloneC(e)
	for j := 1; j <= seriesTerms; j++ {
		sign := 1.0
		if j%2 == 0 {
			sign = -1
		}
		sum = combineC(1, sum, sign/float64(j), term)
		if norm1C(term)/float64(j) <= 1e-17*math.Max(norm1C(sum), 1) {
			break
		}
		term = mulC(term, e)
	}

	ScaleC(sum, complex(math.Ldexp(1, k), 0))
	for i := 0; i < n; i++ {
		sum.Set(i, i, sum.At(i, i)+complex(0, theta))
	}
	return sum, nil
}

// rotation picks θ so that every eigenvalue listed in cut leaves the branch
// cut while no other eigenvalue crosses it.
func rotation(vals []complex128, cut []int) float64 {
	if len(cut) == 0 {
		return 0
	}
	onCut := make(map[int]bool, len(cut))
	for _, i := range cut {
		onCut[i] = true
	}
	theta := 0.5
	for i, v := range vals {
		if onCut[i] {
			continue
		}
		theta = math.Min(theta, (math.Pi+cmplx.Phase(v))/2)
	}
	return theta
}
