package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultGainType is the label the tuning tool writes its gain under.
const DefaultGainType = "State Feedback Gain (F)"

var (
	// ErrGainNotFound indicates no row with the requested gain type.
	ErrGainNotFound = errors.New("storage: gain type not found")

	// ErrInvalidRecord indicates a row that does not follow the gain layout.
	ErrInvalidRecord = errors.New("storage: invalid gain record")
)

var header = []string{"Gain Type", "Continuous/Discrete", "Values"}

type Domain string

const (
	Discrete   Domain = "Discrete"
	Continuous Domain = "Continuous"
)

// Record is one persisted gain row.
type Record struct {
	GainType string
	Domain   Domain
	Values   []float64
}

// GainStore persists gain records to a CSV file.
type GainStore struct {
	path string
}

func NewGainStore(path string) *GainStore {
	return &GainStore{path: path}
}

func (s *GainStore) Path() string {
	return s.path
}

// Save replaces the file with a single row holding rec.
func (s *GainStore) Save(rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll([][]string{header, {rec.GainType, string(rec.Domain), FormatValues(rec.Values)}}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveGain stores a scalar discrete gain under DefaultGainType.
func (s *GainStore) SaveGain(g float64) error {
	return s.Save(Record{GainType: DefaultGainType, Domain: Discrete, Values: []float64{g}})
}

// Load returns the first row whose gain type matches.
func (s *GainStore) Load(gainType string) (Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("%w: empty file", ErrInvalidRecord)
	}

	cols, err := columns(records[0])
	if err != nil {
		return Record{}, err
	}
	for _, row := range records[1:] {
		if len(row) <= max(cols[0], cols[1], cols[2]) || row[cols[0]] != gainType {
			continue
		}
		values, err := ParseValues(row[cols[2]])
		if err != nil {
			return Record{}, err
		}
		rec := Record{GainType: row[cols[0]], Domain: Domain(row[cols[1]]), Values: values}
		if err := validate(rec); err != nil {
			return Record{}, err
		}
		return rec, nil
	}
	return Record{}, fmt.Errorf("%w: %q", ErrGainNotFound, gainType)
}

// LoadGain reads the scalar gain stored under DefaultGainType.
func (s *GainStore) LoadGain() (float64, error) {
	rec, err := s.Load(DefaultGainType)
	if err != nil {
		return 0, err
	}
	if len(rec.Values) != 1 {
		return 0, fmt.Errorf("%w: expected one value, got %d", ErrInvalidRecord, len(rec.Values))
	}
	return rec.Values[0], nil
}

// FormatValues renders values as "[v1, v2, ...]".
func FormatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseValues parses the "[v1, v2, ...]" list literal.
func ParseValues(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: values %q are not a list", ErrInvalidRecord, s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, fmt.Errorf("%w: empty value list", ErrInvalidRecord)
	}
	fields := strings.Split(body, ",")
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		values[i] = v
	}
	return values, nil
}

func columns(h []string) ([3]int, error) {
	var idx [3]int
	for i, name := range header {
		idx[i] = -1
		for j, col := range h {
			if strings.TrimSpace(col) == name {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return idx, fmt.Errorf("%w: missing column %q", ErrInvalidRecord, name)
		}
	}
	return idx, nil
}

func validate(rec Record) error {
	if rec.GainType == "" {
		return fmt.Errorf("%w: empty gain type", ErrInvalidRecord)
	}
	if rec.Domain != Discrete && rec.Domain != Continuous {
		return fmt.Errorf("%w: domain %q", ErrInvalidRecord, rec.Domain)
	}
	if len(rec.Values) == 0 {
		return fmt.Errorf("%w: no values", ErrInvalidRecord)
	}
	return nil
}
