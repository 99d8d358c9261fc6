package response

import "math"

// Peak is the largest |y|.
type Peak struct {
	peak float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak" }

func (p *Peak) Observe(k int, y float64) { p.peak = math.Max(p.peak, math.Abs(y)) }

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }

// Energy is the sum of y².
type Energy struct {
	sum float64
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(k int, y float64) { e.sum += y * y }

func (e *Energy) Value() float64 { return e.sum }

func (e *Energy) Reset() { e.sum = 0 }

// Growth is the peak |y| from sample Split on divided by the peak before it.
// Values above 1 mean the ring is building up.
type Growth struct {
	Split        int
	early, later float64
}

func NewGrowth(split int) *Growth { return &Growth{Split: split} }

func (g *Growth) Name() string { return "growth" }

func (g *Growth) Observe(k int, y float64) {
	if k < g.Split {
		g.early = math.Max(g.early, math.Abs(y))
	} else {
		g.later = math.Max(g.later, math.Abs(y))
	}
}

func (g *Growth) Value() float64 {
	if g.early == 0 {
		return 0
	}
	return g.later / g.early
}

func (g *Growth) Reset() { g.early, g.later = 0, 0 }
