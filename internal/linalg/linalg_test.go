package linalg

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tol = 1e-9

func TestEigenvaluesDiagonal(t *testing.T) {
	vals, err := Eigenvalues(mat.NewDense(2, 2, []float64{0.5, 0, 0, -0.25}))
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 {
		t.Fatalf("expected 2 eigenvalues, got %d", len(vals))
	}
	sum := vals[0] + vals[1]
	if cmplx.Abs(sum-0.25) > tol {
		t.Errorf("expected trace 0.25, got %v", sum)
	}
}

func TestEigenvaluesNotSquare(t *testing.T) {
	if _, err := Eigenvalues(mat.NewDense(2, 3, nil)); !errors.Is(err, ErrNotSquare) {
		t.Errorf("expected ErrNotSquare, got %v", err)
	}
}

func TestPrincipalLog(t *testing.T) {
	tests := []struct {
		name  string
		z     complex128
		want  complex128
		onCut bool
	}{
		{"one", 1, 0, false},
		{"positive real", math.E, 1, false},
		{"unit circle", cmplx.Exp(complex(0, 1)), complex(0, 1), false},
		{"negative real", -1, complex(0, math.Pi), true},
		{"negative zero imag", complex(-2, math.Copysign(0, -1)), complex(math.Log(2), math.Pi), true},
	}

	for _, tt := range tests {
		got, onCut, err := PrincipalLog(tt.z, 1e-10)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if cmplx.Abs(got-tt.want) > tol {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
		if onCut != tt.onCut {
			t.Errorf("%s: expected onCut=%v", tt.name, tt.onCut)
		}
	}
}

func TestPrincipalLogZero(t *testing.T) {
	if _, _, err := PrincipalLog(0, 1e-10); !errors.Is(err, ErrLogZero) {
		t.Errorf("expected ErrLogZero, got %v", err)
	}
}

func TestInverse(t *testing.T) {
	a := mat.NewCDense(2, 2, []complex128{
		complex(1, 1), 2,
		0, complex(0, -1),
	})
	inv, err := Inverse(a)
	if err != nil {
		t.Fatal(err)
	}
	id := MulDiag(a, []complex128{1, 1}, inv)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := complex128(0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(id.At(i, j)-want) > tol {
				t.Errorf("a*inv[%d][%d] = %v, want %v", i, j, id.At(i, j), want)
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {
	a := mat.NewCDense(2, 2, []complex128{1, 2, 2, 4})
	if _, err := Inverse(a); !errors.Is(err, ErrSingular) {
		t.Errorf("expected ErrSingular, got %v", err)
	}
}

func TestLogmRotation(t *testing.T) {
	theta := 0.3
	a := mat.NewDense(2, 2, []float64{
		math.Cos(theta), -math.Sin(theta),
		math.Sin(theta), math.Cos(theta),
	})
	res, err := Logm(a, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]complex128{{0, complex(-theta, 0)}, {complex(theta, 0), 0}}
	for i := range want {
		for j := range want[i] {
			if cmplx.Abs(res.Log.At(i, j)-want[i][j]) > tol {
				t.Errorf("log[%d][%d] = %v, want %v", i, j, res.Log.At(i, j), want[i][j])
			}
		}
	}
	if len(res.Cut) != 0 {
		t.Errorf("unexpected branch cut indices %v", res.Cut)
	}
}

func TestLogmBranchCut(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{-0.5, 0, 0, 0.5})
	res, err := Logm(a, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cut) != 1 {
		t.Fatalf("expected one eigenvalue on the cut, got %v", res.Cut)
	}
	if got := res.Log.At(0, 0); cmplx.Abs(got-complex(math.Log(0.5), math.Pi)) > tol {
		t.Errorf("expected ln(0.5)+iπ, got %v", got)
	}
}

func TestLogmDefective(t *testing.T) {
	// log(λI + N) = ln(λ)·I + N/λ for a 2×2 Jordan block.
	tests := []struct {
		name   string
		lambda float64
		cut    int
	}{
		{"positive", 0.5, 0},
		{"on branch cut", -0.5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mat.NewDense(2, 2, []float64{tt.lambda, 1, 0, tt.lambda})
			res, err := Logm(a, 1e-10)
			if err != nil {
				t.Fatal(err)
			}
			diag, _, _ := PrincipalLog(complex(tt.lambda, 0), 1e-10)
			want := [][]complex128{{diag, complex(1/tt.lambda, 0)}, {0, diag}}
			for i := range want {
				for j := range want[i] {
					if cmplx.Abs(res.Log.At(i, j)-want[i][j]) > 1e-8 {
						t.Errorf("log[%d][%d] = %v, want %v", i, j, res.Log.At(i, j), want[i][j])
					}
				}
			}
			if len(res.Cut) != tt.cut {
				t.Errorf("expected %d eigenvalues on the cut, got %v", tt.cut, res.Cut)
			}
		})
	}
}

func TestLogmSquaringMatchesEigenbasis(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		0.9, 0.2, 0,
		-0.3, 0.7, 0.1,
		0, 0.05, -0.4,
	})
	res, err := Logm(a, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	got, err := logmSquaring(toCDense(a), rotation(res.Eigenvalues, res.Cut))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if cmplx.Abs(got.At(i, j)-res.Log.At(i, j)) > 1e-8 {
				t.Errorf("log[%d][%d]: squaring %v, eigenbasis %v", i, j, got.At(i, j), res.Log.At(i, j))
			}
		}
	}
}

func TestSqrtm(t *testing.T) {
	a := toCDense(mat.NewDense(2, 2, []float64{4, 1, 0, 4}))
	r, err := Sqrtm(a)
	if err != nil {
		t.Fatal(err)
	}
	// sqrt(4I + N) = 2I + N/4
	want := [][]complex128{{2, 0.25}, {0, 2}}
	for i := range want {
		for j := range want[i] {
			if cmplx.Abs(r.At(i, j)-want[i][j]) > tol {
				t.Errorf("sqrt[%d][%d] = %v, want %v", i, j, r.At(i, j), want[i][j])
			}
		}
	}
}

func TestLogmZeroEigenvalue(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0, 0, 0, 0.5})
	if _, err := Logm(a, 1e-10); !errors.Is(err, ErrLogZero) {
		t.Errorf("expected ErrLogZero, got %v", err)
	}
}
