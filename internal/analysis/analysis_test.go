package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/gain"
	"github.com/san-kum/howlsim/internal/stability"
	"github.com/san-kum/howlsim/internal/statespace"
	"go.uber.org/goleak"
)

// firstOrder is stable for -0.5 < g < 1.5.
func firstOrder(t *testing.T, d float64) *statespace.Plant {
	t.Helper()
	p, err := statespace.FromRows([][]float64{{0.5}}, [][]float64{{1}}, [][]float64{{1}}, [][]float64{{d}})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	points, err := Sweep(context.Background(), firstOrder(t, 0), SweepConfig{
		MinDB: -20, MaxDB: 10, Steps: 31, SamplingRate: 1000, Workers: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 31 {
		t.Fatalf("expected 31 points, got %d", len(points))
	}
	if points[0].GainDB != -20 || points[30].GainDB != 10 {
		t.Errorf("range endpoints wrong: %f..%f", points[0].GainDB, points[30].GainDB)
	}

	critical := gain.ToDecibels(1.5)
	for _, p := range points {
		if p.Err != nil {
			t.Errorf("%f dB: unexpected error %v", p.GainDB, p.Err)
			continue
		}
		want := stability.Stable
		if p.GainDB > critical {
			want = stability.Unstable
		}
		if p.Status != want {
			t.Errorf("%f dB: expected %s, got %s", p.GainDB, want, p.Status)
		}
	}

	tr := Transitions(points)
	if len(tr) != 1 {
		t.Fatalf("expected one transition, got %d", len(tr))
	}
	if tr[0].GainDB != 4 || tr[0].Status != stability.Unstable {
		t.Errorf("unexpected transition %+v", tr[0])
	}
}

func TestSweepRecordsSingularPoints(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Inverted gain 2 cancels 1 + 0.5g at the middle point.
	points, err := Sweep(context.Background(), firstOrder(t, 0.5), SweepConfig{
		MinDB: 0, MaxDB: 2 * gain.ToDecibels(2), Steps: 3, Inverted: true, SamplingRate: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(points[1].Err, closedloop.ErrSingularFeedback) {
		t.Errorf("expected singular feedback at middle point, got %v", points[1].Err)
	}
	if points[0].Err != nil || points[2].Err != nil {
		t.Errorf("unexpected errors at endpoints: %v / %v", points[0].Err, points[2].Err)
	}
	if points[0].Gain != -1 {
		t.Errorf("expected inverted gain -1, got %f", points[0].Gain)
	}
}

func TestSweepInvalidRange(t *testing.T) {
	_, err := Sweep(context.Background(), firstOrder(t, 0), SweepConfig{MinDB: 5, MaxDB: 5, Steps: 10})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSweepCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, firstOrder(t, 0), SweepConfig{MinDB: -10, MaxDB: 10, Steps: 50})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFindMargin(t *testing.T) {
	m, err := FindMargin(context.Background(), firstOrder(t, 0), MarginConfig{
		LowDB: -20, HighDB: 10, Tolerance: 1e-4, SamplingRate: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := gain.ToDecibels(1.5)
	if math.Abs(m.CriticalDB-want) > 1e-3 {
		t.Errorf("expected critical %f dB, got %f", want, m.CriticalDB)
	}
	if m.UnstableDB < m.CriticalDB || m.UnstableDB-m.CriticalDB > 1e-4 {
		t.Errorf("bracket not converged: %f..%f", m.CriticalDB, m.UnstableDB)
	}
	if m.Iterations == 0 {
		t.Error("expected at least one bisection step")
	}
}

func TestFindMarginInverted(t *testing.T) {
	m, err := FindMargin(context.Background(), firstOrder(t, 0), MarginConfig{
		LowDB: -20, HighDB: 10, Inverted: true, Tolerance: 1e-4, SamplingRate: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.CriticalDB-gain.ToDecibels(0.5)) > 1e-3 {
		t.Errorf("expected critical %f dB, got %f", gain.ToDecibels(0.5), m.CriticalDB)
	}
	if m.CriticalGain >= 0 {
		t.Errorf("expected negative critical gain, got %f", m.CriticalGain)
	}
}

func TestFindMarginNotBracketed(t *testing.T) {
	_, err := FindMargin(context.Background(), firstOrder(t, 0), MarginConfig{LowDB: 5, HighDB: 10})
	if !errors.Is(err, ErrNotBracketed) {
		t.Errorf("expected ErrNotBracketed, got %v", err)
	}
	_, err = FindMargin(context.Background(), firstOrder(t, 0), MarginConfig{LowDB: -20, HighDB: -10})
	if !errors.Is(err, ErrNotBracketed) {
		t.Errorf("expected ErrNotBracketed, got %v", err)
	}
}
