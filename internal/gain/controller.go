package gain

import (
	"math"
	"sync"
	"time"

	"github.com/san-kum/howlsim/internal/closedloop"
	"go.uber.org/zap"
)

// Controller is the single owner of a closed-loop model. Each mutation runs
// the full recompute before returning, so the snapshot it hands back always
// belongs to the gain that is currently set.
type Controller struct {
	mu       sync.Mutex
	model    *closedloop.Model
	inverted bool
	logger   *zap.Logger
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController takes ownership of m. The sign flag starts from the sign of
// the model's gain.
func NewController(m *closedloop.Model, opts ...Option) *Controller {
	c := &Controller{
		model:    m,
		inverted: math.Signbit(m.Gain()),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDecibels sets the gain magnitude from a dB value, keeping the current
// sign.
func (c *Controller) SetDecibels(db float64) (closedloop.Snapshot, error) {
	if math.IsNaN(db) || math.IsInf(db, 0) {
		return c.Snapshot(), ErrNonFinite
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(Invert(c.inverted, FromDecibels(db)), c.inverted)
}

// SetLinear sets the signed linear gain. The sign flag follows the value.
func (c *Controller) SetLinear(g float64) (closedloop.Snapshot, error) {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return c.Snapshot(), ErrNonFinite
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(g, math.Signbit(g))
}

// Invert sets the gain to -|g| when sign is true and |g| otherwise. The flag
// only changes if the resulting gain is accepted.
func (c *Controller) Invert(sign bool) (closedloop.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(Invert(sign, c.model.Gain()), sign)
}

// Recompute reruns the full chain for the current gain.
func (c *Controller) Recompute() (closedloop.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Recompute()
}

func (c *Controller) apply(g float64, inverted bool) (closedloop.Snapshot, error) {
	start := time.Now()
	if err := c.model.SetGain(g); err != nil {
		c.logger.Debug("gain rejected",
			zap.Float64("gain", g),
			zap.Float64("kept", c.model.Gain()),
			zap.Error(err))
		return c.model.Snapshot(), err
	}
	c.inverted = inverted
	snap := c.model.Snapshot()
	c.logger.Debug("closed loop recomputed",
		zap.Float64("gain", g),
		zap.Stringer("status", snap.Verdict.Status),
		zap.Int("offending", len(snap.Verdict.Offending)),
		zap.Int("branch_warnings", len(snap.Warnings)),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

func (c *Controller) Snapshot() closedloop.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Snapshot()
}

func (c *Controller) Gain() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Gain()
}

// Decibels is the gain magnitude in dB.
func (c *Controller) Decibels() float64 {
	return ToDecibels(c.Gain())
}

func (c *Controller) Inverted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverted
}
