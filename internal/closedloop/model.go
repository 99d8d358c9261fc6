package closedloop

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/howlsim/internal/linalg"
	"github.com/san-kum/howlsim/internal/stability"
	"github.com/san-kum/howlsim/internal/statespace"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultEpsilon bounds |1 + g·D| away from zero.
	DefaultEpsilon = 1e-9

	// DefaultBranchTolerance is the relative imaginary part below which a
	// negative eigenvalue is considered to sit on the branch cut.
	DefaultBranchTolerance = 1e-10

	// DefaultSamplingRate is the audio rate the plants are identified at.
	DefaultSamplingRate = 44100.0
)

type options struct {
	epsilon   float64
	branchTol float64
}

type Option func(*options)

// WithEpsilon sets the singular-feedback threshold.
func WithEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

// WithBranchTolerance sets the relative branch-cut tolerance.
func WithBranchTolerance(tol float64) Option {
	return func(o *options) { o.branchTol = tol }
}

func buildOptions(opts []Option) options {
	o := options{epsilon: DefaultEpsilon, branchTol: DefaultBranchTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Snapshot is the closed-loop state derived from a plant and one gain.
type Snapshot struct {
	Gain float64
	// Discrete is A_cl.
	Discrete *mat.Dense
	// DiscreteEigenvalues are the eigenvalues of A_cl, paired index by index
	// with Eigenvalues.
	DiscreteEigenvalues []complex128
	// Eigenvalues is the continuous-time spectrum, sorted by descending real
	// part, then descending imaginary part.
	Eigenvalues []complex128
	Verdict     stability.Verdict
	Warnings    []*DegenerateBranchWarning
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Discrete != nil {
		c.Discrete = mat.DenseCopyOf(s.Discrete)
	}
	c.DiscreteEigenvalues = slices.Clone(s.DiscreteEigenvalues)
	c.Eigenvalues = slices.Clone(s.Eigenvalues)
	c.Verdict.Offending = slices.Clone(s.Verdict.Offending)
	c.Warnings = slices.Clone(s.Warnings)
	return c
}

// Model owns a plant and a feedback gain and keeps the closed-loop state for
// the last gain that was accepted.
type Model struct {
	plant *statespace.Plant
	fs    float64
	opts  options
	snap  Snapshot
}

// New validates the plant matrices and computes the closed loop for the
// initial gain.
func New(a, b, c, d mat.Matrix, gain, samplingRate float64, opts ...Option) (*Model, error) {
	plant, err := statespace.NewPlant(a, b, c, d)
	if err != nil {
		return nil, err
	}
	return NewFromPlant(plant, gain, samplingRate, opts...)
}

// NewFromPlant builds a model on an already validated plant.
func NewFromPlant(plant *statespace.Plant, gain, samplingRate float64, opts ...Option) (*Model, error) {
	if plant == nil {
		return nil, statespace.ErrNilMatrix
	}
	if !plant.IsSISO() {
		dimErr := &statespace.DimensionError{
			Matrix: "D", Rows: plant.Outputs(), Cols: plant.Inputs(),
			WantRows: 1, WantCols: 1,
		}
		return nil, fmt.Errorf("%w: %w", ErrNotSISO, dimErr)
	}
	if samplingRate <= 0 || math.IsNaN(samplingRate) || math.IsInf(samplingRate, 0) {
		return nil, ErrInvalidSamplingRate
	}

	m := &Model{plant: plant, fs: samplingRate, opts: buildOptions(opts)}
	snap, err := evaluate(plant, gain, samplingRate, m.opts)
	if err != nil {
		return nil, err
	}
	m.snap = snap
	return m, nil
}

// SetGain replaces the gain and recomputes the closed loop. If the gain is
// rejected the model keeps its previous gain and results.
func (m *Model) SetGain(g float64) error {
	snap, err := evaluate(m.plant, g, m.fs, m.opts)
	if err != nil {
		return err
	}
	m.snap = snap
	return nil
}

// Recompute runs the full chain again from the plant and the current gain.
func (m *Model) Recompute() (Snapshot, error) {
	snap, err := evaluate(m.plant, m.snap.Gain, m.fs, m.opts)
	if err != nil {
		return m.snap.Clone(), err
	}
	m.snap = snap
	return snap.Clone(), nil
}

func (m *Model) Gain() float64 { return m.snap.Gain }

func (m *Model) SamplingRate() float64 { return m.fs }

func (m *Model) Order() int { return m.plant.Order() }

func (m *Model) Plant() *statespace.Plant { return m.plant }

// ClosedLoopDiscrete returns A - g·B·C/(1 + g·D) for the current gain.
func (m *Model) ClosedLoopDiscrete() (*mat.Dense, error) {
	return DiscreteClosedLoop(m.plant, m.snap.Gain, m.opts.epsilon)
}

// ClosedLoopContinuous returns Log(A_cl)·fs, the principal matrix logarithm
// of the discrete closed loop divided by the control period. Eigenvalues on
// the branch cut are reported as warnings alongside the result.
func (m *Model) ClosedLoopContinuous() (*mat.CDense, []*DegenerateBranchWarning, error) {
	acl, err := m.ClosedLoopDiscrete()
	if err != nil {
		return nil, nil, err
	}
	res, err := linalg.Logm(acl, m.opts.branchTol)
	switch {
	case errors.Is(err, linalg.ErrLogZero):
		return nil, nil, ErrLogarithmUndefined
	case err != nil:
		return nil, nil, fmt.Errorf("closedloop: gain %g: %w", m.snap.Gain, err)
	}

	linalg.ScaleC(res.Log, complex(m.fs, 0))
	var warnings []*DegenerateBranchWarning
	for _, i := range res.Cut {
		ev := res.Eigenvalues[i]
		w, _, _ := linalg.PrincipalLog(ev, m.opts.branchTol)
		warnings = append(warnings, &DegenerateBranchWarning{Discrete: ev, Continuous: w * complex(m.fs, 0)})
	}
	return res.Log, warnings, nil
}

// EigenSpectrum returns the continuous-time spectrum for the current gain.
func (m *Model) EigenSpectrum() []complex128 {
	return slices.Clone(m.snap.Eigenvalues)
}

func (m *Model) Verdict() stability.Verdict {
	v := m.snap.Verdict
	v.Offending = slices.Clone(v.Offending)
	return v
}

// Warnings returns the branch-cut warnings raised by the last recompute.
func (m *Model) Warnings() []*DegenerateBranchWarning {
	return slices.Clone(m.snap.Warnings)
}

func (m *Model) Snapshot() Snapshot {
	return m.snap.Clone()
}

// DiscreteClosedLoop computes A - g·B·C/(1 + g·D) for a SISO plant.
func DiscreteClosedLoop(plant *statespace.Plant, g, eps float64) (*mat.Dense, error) {
	if !plant.IsSISO() {
		return nil, ErrNotSISO
	}
	den := 1 + g*plant.D().At(0, 0)
	if math.Abs(den) < eps || math.IsNaN(den) {
		return nil, &SingularFeedbackError{Gain: g, Denominator: den, Epsilon: eps}
	}

	var bc mat.Dense
	bc.Mul(plant.B(), plant.C())
	bc.Scale(g/den, &bc)

	var acl mat.Dense
	acl.Sub(plant.A(), &bc)
	return &acl, nil
}

// Evaluate computes the snapshot for one gain without keeping any state.
func Evaluate(plant *statespace.Plant, g, samplingRate float64, opts ...Option) (Snapshot, error) {
	if plant == nil {
		return Snapshot{}, statespace.ErrNilMatrix
	}
	if !plant.IsSISO() {
		return Snapshot{}, ErrNotSISO
	}
	if samplingRate <= 0 || math.IsNaN(samplingRate) || math.IsInf(samplingRate, 0) {
		return Snapshot{}, ErrInvalidSamplingRate
	}
	return evaluate(plant, g, samplingRate, buildOptions(opts))
}

type mode struct {
	discrete   complex128
	continuous complex128
	onCut      bool
}

func evaluate(plant *statespace.Plant, g, fs float64, o options) (Snapshot, error) {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return Snapshot{}, ErrInvalidGain
	}
	acl, err := DiscreteClosedLoop(plant, g, o.epsilon)
	if err != nil {
		return Snapshot{}, err
	}
	vals, err := linalg.Eigenvalues(acl)
	if err != nil {
		return Snapshot{}, fmt.Errorf("closedloop: gain %g: %w", g, err)
	}

	// The eigenvalues of the principal logarithm are the principal logarithms
	// of the eigenvalues, so the spectrum needs no complex eigensolver.
	modes := make([]mode, len(vals))
	for i, v := range vals {
		w, onCut, err := linalg.PrincipalLog(v, o.branchTol)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w (gain %g)", ErrLogarithmUndefined, g)
		}
		modes[i] = mode{discrete: v, continuous: w * complex(fs, 0), onCut: onCut}
	}
	slices.SortStableFunc(modes, func(a, b mode) int {
		if c := cmp.Compare(real(b.continuous), real(a.continuous)); c != 0 {
			return c
		}
		return cmp.Compare(imag(b.continuous), imag(a.continuous))
	})

	snap := Snapshot{
		Gain:                g,
		Discrete:            acl,
		DiscreteEigenvalues: make([]complex128, len(modes)),
		Eigenvalues:         make([]complex128, len(modes)),
	}
	for i, md := range modes {
		snap.DiscreteEigenvalues[i] = md.discrete
		snap.Eigenvalues[i] = md.continuous
		if md.onCut {
			snap.Warnings = append(snap.Warnings, &DegenerateBranchWarning{Discrete: md.discrete, Continuous: md.continuous})
		}
	}
	snap.Verdict = stability.Classify(snap.Eigenvalues)
	return snap, nil
}
