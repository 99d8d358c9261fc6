// Package export renders closed-loop eigenvalues on the s-plane.
//
// Both axes use a symmetric log scale so that the fast, heavily damped modes
// (real parts down to -1e6) and the slow modes near the stability boundary
// fit on one figure. The imaginary axis is shown in Hz.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/san-kum/howlsim/internal/closedloop"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	stableColor   = color.RGBA{R: 0x00, G: 0xa0, B: 0x40, A: 0xff}
	unstableColor = color.RGBA{R: 0xe0, G: 0x20, B: 0x20, A: 0xff}
)

type PlotConfig struct {
	Title         string
	Width, Height vg.Length
	// LinThreshold is the half-width of the linear region of both axes.
	LinThreshold float64
	// Axis limits before they are widened to fit the data.
	MinReal, MaxReal float64
	MaxHz            float64
}

func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		Title:        "Closed-loop eigenvalues",
		Width:        8 * vg.Inch,
		Height:       6 * vg.Inch,
		LinThreshold: 10,
		MinReal:      -1e6,
		MaxReal:      1e3,
		MaxHz:        48e3,
	}
}

// SpectrumPlot builds an s-plane scatter of the snapshot's eigenvalues,
// green for Re < 0 and red otherwise.
func SpectrumPlot(snap closedloop.Snapshot, cfg PlotConfig) (*plot.Plot, error) {
	if cfg.LinThreshold <= 0 {
		cfg.LinThreshold = DefaultLinThreshold
	}

	var stable, unstable plotter.XYs
	minRe, maxRe, maxHz := cfg.MinReal, cfg.MaxReal, cfg.MaxHz
	for _, ev := range snap.Eigenvalues {
		re, hz := real(ev), imag(ev)/(2*math.Pi)
		if math.IsNaN(re) || math.IsInf(re, 0) || math.IsNaN(hz) || math.IsInf(hz, 0) {
			continue
		}
		pt := plotter.XY{X: re, Y: hz}
		if re < 0 {
			stable = append(stable, pt)
		} else {
			unstable = append(unstable, pt)
		}
		minRe, maxRe = math.Min(minRe, re), math.Max(maxRe, re)
		maxHz = math.Max(maxHz, math.Abs(hz))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (g = %.4g, %s)", cfg.Title, snap.Gain, snap.Verdict.Status)
	p.X.Label.Text = "Real part"
	p.Y.Label.Text = "Imaginary part [Hz]"
	p.X.Min, p.X.Max = minRe, maxRe
	p.Y.Min, p.Y.Max = -maxHz, maxHz

	scale := SymLogScale{LinThreshold: cfg.LinThreshold}
	p.X.Scale = scale
	p.Y.Scale = scale
	p.X.Tick.Marker = SymLogTicks{LinThreshold: cfg.LinThreshold, Base: 10}
	p.Y.Tick.Marker = SymLogTicks{LinThreshold: cfg.LinThreshold, Base: 10}
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		name string
		pts  plotter.XYs
		col  color.Color
	}{{"stable", stable, stableColor}, {"unstable", unstable, unstableColor}} {
		if len(s.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(s.pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = s.col
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(s.name, sc)
	}
	return p, nil
}

// SaveSpectrum writes the plot to path; the format follows the extension
// (.svg, .png, .pdf, .eps).
func SaveSpectrum(path string, snap closedloop.Snapshot, cfg PlotConfig) error {
	p, err := SpectrumPlot(snap, cfg)
	if err != nil {
		return err
	}
	return p.Save(cfg.Width, cfg.Height, path)
}

// WriteSpectrum writes the plot to w in the given format.
func WriteSpectrum(w io.Writer, format string, snap closedloop.Snapshot, cfg PlotConfig) error {
	p, err := SpectrumPlot(snap, cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(cfg.Width, cfg.Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
