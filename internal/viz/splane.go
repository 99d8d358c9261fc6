package viz

import (
	"math"

	"github.com/san-kum/howlsim/internal/export"
)

// SPlane maps continuous eigenvalues onto a canvas with the same symmetric
// log axes as the exported plot. The imaginary axis is in Hz.
type SPlane struct {
	MinReal, MaxReal float64
	MaxHz            float64
	Scale            export.SymLogScale
}

func DefaultSPlane() SPlane {
	cfg := export.DefaultPlotConfig()
	return SPlane{
		MinReal: cfg.MinReal,
		MaxReal: cfg.MaxReal,
		MaxHz:   cfg.MaxHz,
		Scale:   export.SymLogScale{LinThreshold: cfg.LinThreshold},
	}
}

// Fit widens the bounds so every finite eigenvalue is visible.
func (p SPlane) Fit(eigs []complex128) SPlane {
	for _, ev := range eigs {
		re, hz := real(ev), imag(ev)/(2*math.Pi)
		if !finite(re) || !finite(hz) {
			continue
		}
		p.MinReal = math.Min(p.MinReal, re)
		p.MaxReal = math.Max(p.MaxReal, re)
		p.MaxHz = math.Max(p.MaxHz, math.Abs(hz))
	}
	return p
}

// Dot returns the canvas dot for ev.
func (p SPlane) Dot(c *Canvas, ev complex128) (x, y int) {
	nx := p.Scale.Normalize(p.MinReal, p.MaxReal, real(ev))
	ny := p.Scale.Normalize(-p.MaxHz, p.MaxHz, imag(ev)/(2*math.Pi))
	x = int(math.Round(nx * float64(c.DotsX()-1)))
	y = int(math.Round((1 - ny) * float64(c.DotsY()-1)))
	return x, y
}

// Draw renders both axes and marks stable eigenvalues with '•' and the others
// with '×'.
func (p SPlane) Draw(c *Canvas, eigs []complex128) {
	c.Clear()
	ox, oy := p.Dot(c, 0)
	c.Line(0, oy, c.DotsX()-1, oy)
	c.Line(ox, 0, ox, c.DotsY()-1)
	for _, ev := range eigs {
		if !finite(real(ev)) || !finite(imag(ev)) {
			continue
		}
		x, y := p.Dot(c, ev)
		if real(ev) < 0 {
			c.Mark(x, y, '•')
		} else {
			c.Mark(x, y, '×')
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
