// Package plantio reads and writes plant matrices in the labelled block CSV
// layout produced by the identification tooling:
//
//	A
//	0.9,0.1
//	0,0.8
//	B
//	1
//	0
//	C
//	1,0
//	D
//	0
//
// A row whose first cell is A, B, C or D starts that matrix. Rows that do not
// parse as all-numeric are skipped.
package plantio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/howlsim/internal/statespace"
)

// ErrMissingMatrix indicates that a block had no numeric rows.
var ErrMissingMatrix = errors.New("plantio: missing matrix")

var labels = []string{"A", "B", "C", "D"}

// Load reads a plant from a CSV file.
func Load(path string) (*statespace.Plant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Read parses the labelled block layout.
func Read(r io.Reader) (*statespace.Plant, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	blocks := make(map[string][][]float64, len(labels))
	current := ""
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}

		first := strings.TrimSpace(record[0])
		if isLabel(first) {
			current = first
			continue
		}
		if first == "" || current == "" {
			continue
		}

		row, ok := parseRow(record)
		if !ok {
			continue
		}
		blocks[current] = append(blocks[current], row)
	}

	for _, l := range labels {
		if len(blocks[l]) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingMatrix, l)
		}
	}
	return statespace.FromRows(blocks["A"], blocks["B"], blocks["C"], blocks["D"])
}

// Save writes a plant to a CSV file.
func Save(path string, p *statespace.Plant) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write emits the plant in the labelled block layout. Values are written
// with the shortest representation that reads back exactly.
func Write(w io.Writer, p *statespace.Plant) error {
	cw := csv.NewWriter(w)
	a, b, c, d := p.Rows()
	for i, rows := range [][][]float64{a, b, c, d} {
		if err := cw.Write([]string{labels[i]}); err != nil {
			return err
		}
		for _, row := range rows {
			rec := make([]string, len(row))
			for j, v := range row {
				rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func isLabel(s string) bool {
	for _, l := range labels {
		if s == l {
			return true
		}
	}
	return false
}

func parseRow(record []string) ([]float64, bool) {
	// Spreadsheet exports pad rows with empty trailing cells.
	end := len(record)
	for end > 0 && strings.TrimSpace(record[end-1]) == "" {
		end--
	}
	row := make([]float64, 0, end)
	for _, cell := range record[:end] {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, false
		}
		row = append(row, v)
	}
	return row, len(row) > 0
}
