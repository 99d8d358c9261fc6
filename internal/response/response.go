// Package response simulates the discrete closed loop in the time domain.
//
// The loop is driven by a unit impulse at the reference input r with
// u = r - g·y, so an unstable gain shows up as a growing ring instead of a
// decaying one.
package response

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/statespace"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultSamples   = 4096
	DefaultThreshold = 1e6
)

var ErrInvalidConfig = errors.New("response: invalid config")

type Config struct {
	Samples int
	// Threshold stops the run once |y| exceeds it.
	Threshold float64
}

type Metric interface {
	Name() string
	Observe(k int, y float64)
	Value() float64
	Reset()
}

type Result struct {
	Output  []float64
	Metrics map[string]float64
	// Diverged is set when the output crossed the threshold or stopped being
	// finite; DivergedAt is that sample.
	Diverged   bool
	DivergedAt int
}

// Simulator steps x[k+1] = A_cl·x[k] + B·r[k]/(1+g·D) with
// y[k] = (C·x[k] + D·r[k])/(1+g·D).
type Simulator struct {
	acl     *mat.Dense
	b       *mat.VecDense
	c       *mat.VecDense
	d       float64
	metrics []Metric
}

func New(plant *statespace.Plant, g, eps float64) (*Simulator, error) {
	acl, err := closedloop.DiscreteClosedLoop(plant, g, eps)
	if err != nil {
		return nil, err
	}
	h := 1 + g*plant.D().At(0, 0)
	n := plant.Order()
	b := mat.NewVecDense(n, nil)
	c := mat.NewVecDense(n, nil)
	pb, pc := plant.B(), plant.C()
	for i := 0; i < n; i++ {
		b.SetVec(i, pb.At(i, 0)/h)
		c.SetVec(i, pc.At(0, i)/h)
	}
	return &Simulator{acl: acl, b: b, c: c, d: plant.D().At(0, 0) / h}, nil
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Run returns the impulse response. On cancellation the samples computed so
// far are returned with the context error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Samples == 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Samples < 0 || !(cfg.Threshold > 0) {
		return nil, fmt.Errorf("%w: %d samples, threshold %g", ErrInvalidConfig, cfg.Samples, cfg.Threshold)
	}

	result := &Result{
		Output:     make([]float64, 0, cfg.Samples),
		Metrics:    make(map[string]float64),
		DivergedAt: -1,
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	x := mat.NewVecDense(s.acl.RawMatrix().Rows, nil)
	next := mat.NewVecDense(x.Len(), nil)
	for k := 0; k < cfg.Samples; k++ {
		if k%256 == 0 {
			if err := ctx.Err(); err != nil {
				s.collect(result)
				return result, err
			}
		}

		y := mat.Dot(s.c, x)
		if k == 0 {
			y += s.d
		}
		if math.IsNaN(y) || math.IsInf(y, 0) || math.Abs(y) > cfg.Threshold {
			result.Diverged, result.DivergedAt = true, k
			break
		}
		result.Output = append(result.Output, y)
		for _, m := range s.metrics {
			m.Observe(k, y)
		}

		next.MulVec(s.acl, x)
		if k == 0 {
			next.AddVec(next, s.b)
		}
		x, next = next, x
	}
	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
