package plantio

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/howlsim/internal/statespace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `A
0,1
-1,-0.1
B
0
1
C
1,0
D
0
`

func TestRead(t *testing.T) {
	p, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 2, p.Order())
	assert.True(t, p.IsSISO())
	a, b, c, d := p.Rows()
	assert.Equal(t, [][]float64{{0, 1}, {-1, -0.1}}, a)
	assert.Equal(t, [][]float64{{0}, {1}}, b)
	assert.Equal(t, [][]float64{{1, 0}}, c)
	assert.Equal(t, [][]float64{{0}}, d)
}

func TestReadSkipsNonNumericRows(t *testing.T) {
	in := `# identified with SRIM
A
col1,col2
0.5, 0
0,0.25,
B
1
n/a
0
C
1,1
D
0.1
`
	p, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	a, b, _, d := p.Rows()
	assert.Equal(t, [][]float64{{0.5, 0}, {0, 0.25}}, a)
	assert.Equal(t, [][]float64{{1}, {0}}, b)
	assert.Equal(t, 0.1, d[0][0])
}

func TestReadMissingMatrix(t *testing.T) {
	in := "A\n1\nB\n1\nC\n1\n"
	_, err := Read(strings.NewReader(in))
	assert.True(t, errors.Is(err, ErrMissingMatrix), "got %v", err)
}

func TestReadRaggedBlock(t *testing.T) {
	in := "A\n1,0\n0\nB\n1\n0\nC\n1,0\nD\n0\n"
	_, err := Read(strings.NewReader(in))
	var dimErr *statespace.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "A", dimErr.Matrix)
}

func TestReadShapeMismatch(t *testing.T) {
	in := "A\n1,0\n0,1\nB\n1\nC\n1,0\nD\n0\n"
	_, err := Read(strings.NewReader(in))
	var dimErr *statespace.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "B", dimErr.Matrix)
}

func TestWriteRoundTrip(t *testing.T) {
	p, err := statespace.FromRows(
		[][]float64{{0.1 + 0.2, -1e-300}, {3.5, 1.0 / 3}},
		[][]float64{{1}, {2}},
		[][]float64{{0.25, -0.75}},
		[][]float64{{0.5}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p))

	back, err := Read(&buf)
	require.NoError(t, err)
	a1, b1, c1, d1 := p.Rows()
	a2, b2, c2, d2 := back.Rows()
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, c1, c2)
	assert.Equal(t, d1, d2)
}

func TestSaveLoad(t *testing.T) {
	p, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plant.csv")
	require.NoError(t, Save(path, p))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Order(), back.Order())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
