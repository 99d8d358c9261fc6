package statespace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Plant is an immutable discrete-time state-space description.
type Plant struct {
	a, b, c, d *mat.Dense
}

// NewPlant validates the shapes of A (n×n), B (n×m), C (p×n) and D (p×m)
// and returns a plant holding private copies of them.
func NewPlant(a, b, c, d mat.Matrix) (*Plant, error) {
	for _, m := range []struct {
		name string
		m    mat.Matrix
	}{{"A", a}, {"B", b}, {"C", c}, {"D", d}} {
		if isNil(m.m) {
			return nil, fmt.Errorf("%w: %s", ErrNilMatrix, m.name)
		}
	}

	ar, ac := a.Dims()
	if ar != ac {
		return nil, &DimensionError{Matrix: "A", Rows: ar, Cols: ac, Reason: "system matrix must be square"}
	}
	n := ar
	if n == 0 {
		return nil, &DimensionError{Matrix: "A", Reason: "system order must be positive"}
	}

	br, m := b.Dims()
	if br != n || m == 0 {
		return nil, &DimensionError{Matrix: "B", Rows: br, Cols: m, WantRows: n, WantCols: max(m, 1)}
	}
	p, cc := c.Dims()
	if cc != n || p == 0 {
		return nil, &DimensionError{Matrix: "C", Rows: p, Cols: cc, WantRows: max(p, 1), WantCols: n}
	}
	dr, dc := d.Dims()
	if dr != p || dc != m {
		return nil, &DimensionError{Matrix: "D", Rows: dr, Cols: dc, WantRows: p, WantCols: m}
	}

	pl := &Plant{
		a: mat.DenseCopyOf(a),
		b: mat.DenseCopyOf(b),
		c: mat.DenseCopyOf(c),
		d: mat.DenseCopyOf(d),
	}
	for i, m := range []*mat.Dense{pl.a, pl.b, pl.c, pl.d} {
		if !isFinite(m) {
			return nil, fmt.Errorf("%w in matrix %c", ErrNonFinite, "ABCD"[i])
		}
	}
	return pl, nil
}

// FromRows builds a plant from row-major slices, as produced by loaders.
func FromRows(a, b, c, d [][]float64) (*Plant, error) {
	var ms [4]*mat.Dense
	for i, rows := range [][][]float64{a, b, c, d} {
		name := string("ABCD"[i])
		m, err := denseFromRows(name, rows)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return NewPlant(ms[0], ms[1], ms[2], ms[3])
}

// A returns a copy of the system matrix.
func (p *Plant) A() *mat.Dense { return mat.DenseCopyOf(p.a) }

// B returns a copy of the input matrix.
func (p *Plant) B() *mat.Dense { return mat.DenseCopyOf(p.b) }

// C returns a copy of the output matrix.
func (p *Plant) C() *mat.Dense { return mat.DenseCopyOf(p.c) }

// D returns a copy of the feedthrough matrix.
func (p *Plant) D() *mat.Dense { return mat.DenseCopyOf(p.d) }

// Order is the system order n.
func (p *Plant) Order() int {
	n, _ := p.a.Dims()
	return n
}

func (p *Plant) Inputs() int {
	_, m := p.b.Dims()
	return m
}

func (p *Plant) Outputs() int {
	r, _ := p.c.Dims()
	return r
}

// IsSISO reports whether the plant has a single input and a single output.
func (p *Plant) IsSISO() bool {
	return p.Inputs() == 1 && p.Outputs() == 1
}

// Rows returns the matrices as row-major slices in A, B, C, D order.
func (p *Plant) Rows() (a, b, c, d [][]float64) {
	return rowsOf(p.a), rowsOf(p.b), rowsOf(p.c), rowsOf(p.d)
}

func denseFromRows(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &DimensionError{Matrix: name, Reason: "matrix is empty"}
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, &DimensionError{
				Matrix: name, Rows: len(rows), Cols: cols,
				Reason: fmt.Sprintf("row %d has %d columns", i, len(r)),
			}
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func rowsOf(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

func isFinite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	if d, ok := m.(*mat.Dense); ok && d == nil {
		return true
	}
	return false
}
