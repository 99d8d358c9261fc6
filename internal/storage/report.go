package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/gain"
)

// Eigenvalue is a continuous-time mode as written to reports.
type Eigenvalue struct {
	Real        float64 `json:"real"`
	Imag        float64 `json:"imag"`
	FrequencyHz float64 `json:"frequency_hz"`
}

type Report struct {
	Plant        string       `json:"plant,omitempty"`
	SamplingRate float64      `json:"sampling_rate"`
	Gain         float64      `json:"gain"`
	GainDB       float64      `json:"gain_db"`
	Status       string       `json:"status"`
	MaxRealPart  float64      `json:"max_real_part"`
	Eigenvalues  []Eigenvalue `json:"eigenvalues"`
	Offending    []Eigenvalue `json:"offending"`
	Warnings     []string     `json:"warnings,omitempty"`
}

// NewReport converts a snapshot to its serialisable form.
func NewReport(plant string, samplingRate float64, snap closedloop.Snapshot) Report {
	r := Report{
		Plant:        plant,
		SamplingRate: samplingRate,
		Gain:         snap.Gain,
		GainDB:       finiteOrZero(gain.ToDecibels(snap.Gain)),
		Status:       snap.Verdict.Status.String(),
		MaxRealPart:  finiteOrZero(snap.Verdict.MaxRealPart),
		Eigenvalues:  toEigenvalues(snap.Eigenvalues),
		Offending:    toEigenvalues(snap.Verdict.Offending),
	}
	for _, w := range snap.Warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	return r
}

// ExportJSON writes the report to path.
func ExportJSON(path string, r Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, r); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func WriteJSON(w io.Writer, r Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

func toEigenvalues(vals []complex128) []Eigenvalue {
	out := make([]Eigenvalue, len(vals))
	for i, v := range vals {
		out[i] = Eigenvalue{Real: real(v), Imag: imag(v), FrequencyHz: imag(v) / (2 * math.Pi)}
	}
	return out
}

// JSON has no encoding for NaN or Inf.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
