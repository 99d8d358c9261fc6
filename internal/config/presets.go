package config

import (
	"sort"

	"github.com/san-kum/howlsim/internal/statespace"
)

// PlantRows is a plant in row-major form.
type PlantRows struct {
	A, B, C, D [][]float64
}

// Presets are small reference plants for trying the tool without an
// identified model.
var Presets = map[string]PlantRows{
	// Undamped discrete oscillator: both modes on the unit circle at g = 0.
	"oscillator": {
		A: [][]float64{{0, 1}, {-1, -0.1}},
		B: [][]float64{{0}, {1}},
		C: [][]float64{{1, 0}},
		D: [][]float64{{0}},
	},
	// First-order loop, stable for -0.5 < g < 1.5.
	"first_order": {
		A: [][]float64{{0.5}},
		B: [][]float64{{1}},
		C: [][]float64{{1}},
		D: [][]float64{{0}},
	},
	// Lightly damped room resonance at fs/8 with a direct acoustic path.
	"room_mode": {
		A: [][]float64{{0.6923, -0.6923}, {0.6923, 0.6923}},
		B: [][]float64{{1}, {0}},
		C: [][]float64{{0.3, 0.2}},
		D: [][]float64{{0.05}},
	},
}

// GetPreset returns the named plant, or nil when it does not exist.
func GetPreset(name string) (*statespace.Plant, error) {
	rows, ok := Presets[name]
	if !ok {
		return nil, nil
	}
	return statespace.FromRows(rows.A, rows.B, rows.C, rows.D)
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
