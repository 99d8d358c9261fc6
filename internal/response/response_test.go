package response

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/statespace"
)

func firstOrder(t *testing.T, d float64) *statespace.Plant {
	t.Helper()
	p, err := statespace.FromRows([][]float64{{0.5}}, [][]float64{{1}}, [][]float64{{1}}, [][]float64{{d}})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunDecays(t *testing.T) {
	s, err := New(firstOrder(t, 0), 1, closedloop.DefaultEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	s.AddMetric(NewPeak())
	s.AddMetric(NewEnergy())
	s.AddMetric(NewGrowth(8))

	res, err := s.Run(context.Background(), Config{Samples: 64})
	if err != nil {
		t.Fatal(err)
	}
	if res.Diverged {
		t.Fatalf("stable loop diverged at %d", res.DivergedAt)
	}
	if len(res.Output) != 64 {
		t.Fatalf("expected 64 samples, got %d", len(res.Output))
	}

	// A_cl = -0.5: y[0] = 0, y[k] = (-0.5)^(k-1)
	for k, want := range []float64{0, 1, -0.5, 0.25, -0.125} {
		if math.Abs(res.Output[k]-want) > 1e-12 {
			t.Errorf("y[%d] = %f, want %f", k, res.Output[k], want)
		}
	}
	if got := res.Metrics["peak"]; got != 1 {
		t.Errorf("expected peak 1, got %f", got)
	}
	if got := res.Metrics["energy"]; math.Abs(got-4.0/3) > 1e-9 {
		t.Errorf("expected energy 4/3, got %f", got)
	}
	if got := res.Metrics["growth"]; got >= 1 {
		t.Errorf("expected decaying ring, growth %f", got)
	}
}

func TestRunFeedthrough(t *testing.T) {
	// h = 1 + g·D = 1.5, so y[0] = D/h and y[1] = C·B/h².
	s, err := New(firstOrder(t, 0.5), 1, closedloop.DefaultEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), Config{Samples: 2})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Output[0]-0.5/1.5) > 1e-12 {
		t.Errorf("y[0] = %f", res.Output[0])
	}
	if math.Abs(res.Output[1]-1/2.25) > 1e-12 {
		t.Errorf("y[1] = %f", res.Output[1])
	}
}

func TestRunDiverges(t *testing.T) {
	s, err := New(firstOrder(t, 0), 2, closedloop.DefaultEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), Config{Samples: 1000, Threshold: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Diverged {
		t.Fatal("expected divergence for A_cl = -1.5")
	}
	// |y[k]| = 1.5^(k-1) first exceeds 100 at k = 13
	if res.DivergedAt != 13 {
		t.Errorf("expected divergence at sample 13, got %d", res.DivergedAt)
	}
}

func TestNewSingular(t *testing.T) {
	_, err := New(firstOrder(t, 0.5), -2, closedloop.DefaultEpsilon)
	if !errors.Is(err, closedloop.ErrSingularFeedback) {
		t.Errorf("expected singular feedback, got %v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	s, err := New(firstOrder(t, 0), 1, closedloop.DefaultEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, Config{Samples: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.Output) != 0 {
		t.Errorf("expected no samples, got %d", len(res.Output))
	}
}

func TestRunInvalidConfig(t *testing.T) {
	s, err := New(firstOrder(t, 0), 1, closedloop.DefaultEpsilon)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(context.Background(), Config{Samples: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
