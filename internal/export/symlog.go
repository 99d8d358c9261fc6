package export

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
)

// DefaultLinThreshold is used when a scale or ticker has no positive threshold.
const DefaultLinThreshold = 10

// SymLogScale is linear within ±LinThreshold and logarithmic outside it,
// keeping the sign.
type SymLogScale struct {
	LinThreshold float64
}

func linThreshold(v float64) float64 {
	if v > 0 && !math.IsInf(v, 0) {
		return v
	}
	return DefaultLinThreshold
}

func (s SymLogScale) transform(x float64) float64 {
	return math.Copysign(math.Log10(1+math.Abs(x)/linThreshold(s.LinThreshold)), x)
}

// Normalize implements plot.Normalizer.
func (s SymLogScale) Normalize(min, max, x float64) float64 {
	lo, hi := s.transform(min), s.transform(max)
	if hi == lo {
		return 0.5
	}
	return (s.transform(x) - lo) / (hi - lo)
}

// SymLogTicks places major ticks at 0 and ±Base^k outside the linear region.
type SymLogTicks struct {
	LinThreshold float64
	Base         float64
}

// Ticks implements plot.Ticker.
func (t SymLogTicks) Ticks(min, max float64) []plot.Tick {
	base := t.Base
	if !(base > 1) || math.IsInf(base, 0) {
		base = 10
	}
	var ticks []plot.Tick
	if min <= 0 && max >= 0 {
		ticks = append(ticks, plot.Tick{Value: 0, Label: "0"})
	}
	limit := math.Max(math.Abs(min), math.Abs(max))
	if math.IsInf(limit, 0) || math.IsNaN(limit) {
		return ticks
	}
	for v := linThreshold(t.LinThreshold); v <= limit; v *= base {
		if v <= max {
			ticks = append(ticks, plot.Tick{Value: v, Label: FormatAxis(v)})
		}
		if -v >= min {
			ticks = append(ticks, plot.Tick{Value: -v, Label: FormatAxis(-v)})
		}
	}
	return ticks
}

// FormatAxis shows magnitudes of 1000 and above in k units.
func FormatAxis(v float64) string {
	a := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	if a >= 1e3 {
		return fmt.Sprintf("%s%.1fk", sign, a/1e3)
	}
	return fmt.Sprintf("%s%.0f", sign, a)
}
