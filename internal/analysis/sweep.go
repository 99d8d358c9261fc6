package analysis

import (
	"context"
	"errors"
	"runtime"

	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/gain"
	"github.com/san-kum/howlsim/internal/stability"
	"github.com/san-kum/howlsim/internal/statespace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidRange = errors.New("analysis: invalid gain range")

// Point is the closed-loop outcome for one gain of a sweep.
type Point struct {
	GainDB      float64
	Gain        float64
	Status      stability.Status
	MaxRealPart float64
	Offending   int
	Warnings    int
	// Err is set when the gain could not be evaluated, for instance when it
	// makes 1 + g·D vanish. The other fields are then zero.
	Err error
}

type SweepConfig struct {
	MinDB, MaxDB float64
	Steps        int
	// Inverted sweeps negative gains -10^(dB/20).
	Inverted     bool
	SamplingRate float64
	Options      []closedloop.Option
	// Workers bounds the number of concurrent evaluations; zero means
	// GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// Sweep evaluates evenly spaced dB gains from MinDB to MaxDB inclusive.
// Every point is computed from scratch on its own goroutine; no state is
// shared between evaluations.
func Sweep(ctx context.Context, plant *statespace.Plant, cfg SweepConfig) ([]Point, error) {
	if cfg.Steps < 2 || !(cfg.MaxDB > cfg.MinDB) {
		return nil, ErrInvalidRange
	}
	if cfg.SamplingRate == 0 {
		cfg.SamplingRate = closedloop.DefaultSamplingRate
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	step := (cfg.MaxDB - cfg.MinDB) / float64(cfg.Steps-1)
	points := make([]Point, cfg.Steps)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range points {
		db := cfg.MinDB + float64(i)*step
		if i == cfg.Steps-1 {
			db = cfg.MaxDB
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i] = evaluatePoint(plant, db, cfg)
			if points[i].Err != nil {
				logger.Debug("sweep point failed", zap.Float64("gain_db", db), zap.Error(points[i].Err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func evaluatePoint(plant *statespace.Plant, db float64, cfg SweepConfig) Point {
	g := gain.Invert(cfg.Inverted, gain.FromDecibels(db))
	p := Point{GainDB: db, Gain: g}
	snap, err := closedloop.Evaluate(plant, g, cfg.SamplingRate, cfg.Options...)
	if err != nil {
		p.Err = err
		return p
	}
	p.Status = snap.Verdict.Status
	p.MaxRealPart = snap.Verdict.MaxRealPart
	p.Offending = len(snap.Verdict.Offending)
	p.Warnings = len(snap.Warnings)
	return p
}

// Transitions returns the points whose verdict differs from the previous
// successfully evaluated point.
func Transitions(points []Point) []Point {
	var out []Point
	var prev *Point
	for i := range points {
		p := &points[i]
		if p.Err != nil {
			continue
		}
		if prev != nil && prev.Status != p.Status {
			out = append(out, *p)
		}
		prev = p
	}
	return out
}
