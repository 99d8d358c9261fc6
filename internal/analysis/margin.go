package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/gain"
	"github.com/san-kum/howlsim/internal/stability"
	"github.com/san-kum/howlsim/internal/statespace"
)

const (
	DefaultMarginTolerance = 0.01
	DefaultMarginMaxIter   = 100
)

// ErrNotBracketed indicates the range does not go from stable to unstable.
var ErrNotBracketed = errors.New("analysis: gain range does not bracket the stability boundary")

type MarginConfig struct {
	// LowDB must give a stable loop and HighDB an unstable one.
	LowDB, HighDB float64
	Inverted      bool
	// Tolerance is the bracket width in dB at which the search stops.
	Tolerance    float64
	MaxIter      int
	SamplingRate float64
	Options      []closedloop.Option
}

type Margin struct {
	// CriticalDB is the largest gain found stable, in dB.
	CriticalDB   float64
	CriticalGain float64
	// UnstableDB is the smallest gain found unstable; the boundary lies in
	// (CriticalDB, UnstableDB].
	UnstableDB float64
	Iterations int
}

// FindMargin bisects the dB range for the stability boundary.
func FindMargin(ctx context.Context, plant *statespace.Plant, cfg MarginConfig) (Margin, error) {
	if !(cfg.HighDB > cfg.LowDB) {
		return Margin{}, ErrInvalidRange
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultMarginTolerance
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultMarginMaxIter
	}
	if cfg.SamplingRate == 0 {
		cfg.SamplingRate = closedloop.DefaultSamplingRate
	}

	stable := func(db float64) (bool, error) {
		g := gain.Invert(cfg.Inverted, gain.FromDecibels(db))
		snap, err := closedloop.Evaluate(plant, g, cfg.SamplingRate, cfg.Options...)
		if err != nil {
			return false, fmt.Errorf("analysis: %.4f dB: %w", db, err)
		}
		return snap.Verdict.Status == stability.Stable, nil
	}

	lo, hi := cfg.LowDB, cfg.HighDB
	if ok, err := stable(lo); err != nil {
		return Margin{}, err
	} else if !ok {
		return Margin{}, fmt.Errorf("%w: %.2f dB is unstable", ErrNotBracketed, lo)
	}
	if ok, err := stable(hi); err != nil {
		return Margin{}, err
	} else if ok {
		return Margin{}, fmt.Errorf("%w: %.2f dB is stable", ErrNotBracketed, hi)
	}

	iter := 0
	for ; iter < cfg.MaxIter && hi-lo > cfg.Tolerance; iter++ {
		if err := ctx.Err(); err != nil {
			return Margin{}, err
		}
		mid := (lo + hi) / 2
		ok, err := stable(mid)
		if err != nil {
			return Margin{}, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}

	return Margin{
		CriticalDB:   lo,
		CriticalGain: gain.Invert(cfg.Inverted, gain.FromDecibels(lo)),
		UnstableDB:   hi,
		Iterations:   iter,
	}, nil
}
