package statespace

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func siso2() (a, b, c, d *mat.Dense) {
	a = mat.NewDense(2, 2, []float64{0, 1, -1, -0.1})
	b = mat.NewDense(2, 1, []float64{0, 1})
	c = mat.NewDense(1, 2, []float64{1, 0})
	d = mat.NewDense(1, 1, []float64{0})
	return
}

func TestNewPlant(t *testing.T) {
	a, b, c, d := siso2()
	p, err := NewPlant(a, b, c, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Order() != 2 {
		t.Errorf("expected order 2, got %d", p.Order())
	}
	if !p.IsSISO() {
		t.Error("expected SISO plant")
	}
}

func TestNewPlantCopiesInput(t *testing.T) {
	a, b, c, d := siso2()
	p, err := NewPlant(a, b, c, d)
	if err != nil {
		t.Fatal(err)
	}
	a.Set(0, 0, 42)
	if got := p.A().At(0, 0); got != 0 {
		t.Errorf("plant changed with caller matrix: A[0][0] = %f", got)
	}
	p.A().Set(0, 0, 7)
	if got := p.A().At(0, 0); got != 0 {
		t.Errorf("accessor leaked internal storage: A[0][0] = %f", got)
	}
}

func TestNewPlantDimensions(t *testing.T) {
	_, b, c, d := siso2()
	tests := []struct {
		name   string
		a      *mat.Dense
		b      *mat.Dense
		c      *mat.Dense
		d      *mat.Dense
		matrix string
	}{
		{"non-square A", mat.NewDense(3, 4, nil), b, c, d, "A"},
		{"B rows", mat.NewDense(2, 2, nil), mat.NewDense(3, 1, nil), c, d, "B"},
		{"C cols", mat.NewDense(2, 2, nil), b, mat.NewDense(1, 3, nil), d, "C"},
		{"D shape", mat.NewDense(2, 2, nil), b, c, mat.NewDense(2, 1, nil), "D"},
	}

	for _, tt := range tests {
		_, err := NewPlant(tt.a, tt.b, tt.c, tt.d)
		var dimErr *DimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("%s: expected DimensionError, got %v", tt.name, err)
			continue
		}
		if dimErr.Matrix != tt.matrix {
			t.Errorf("%s: expected matrix %s, got %s", tt.name, tt.matrix, dimErr.Matrix)
		}
		if !errors.Is(err, ErrDimension) {
			t.Errorf("%s: expected errors.Is ErrDimension", tt.name)
		}
	}
}

func TestNewPlantNil(t *testing.T) {
	a, b, c, _ := siso2()
	if _, err := NewPlant(a, b, c, nil); !errors.Is(err, ErrNilMatrix) {
		t.Errorf("expected ErrNilMatrix, got %v", err)
	}
}

func TestNewPlantNonFinite(t *testing.T) {
	a, b, c, d := siso2()
	a.Set(1, 1, math.NaN())
	if _, err := NewPlant(a, b, c, d); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestFromRows(t *testing.T) {
	p, err := FromRows(
		[][]float64{{0.5, 0}, {0, 0.25}},
		[][]float64{{1}, {0}},
		[][]float64{{1, 1}},
		[][]float64{{0.1}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _, _, d := p.Rows()
	if a[1][1] != 0.25 || d[0][0] != 0.1 {
		t.Errorf("unexpected rows: A=%v D=%v", a, d)
	}
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows(
		[][]float64{{1, 0}, {0}},
		[][]float64{{1}, {0}},
		[][]float64{{1, 0}},
		[][]float64{{0}},
	)
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) || dimErr.Matrix != "A" {
		t.Errorf("expected DimensionError on A, got %v", err)
	}
}
