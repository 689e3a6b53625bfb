package mcs

import (
	"log/slog"
	"math"
)

// ConvergenceConfig defines when a run counts as stalled
type ConvergenceConfig struct {
	// Patience is the number of sweeps with no significant improvement before stopping
	Patience int

	// Threshold is the minimum improvement, relative to max(|best|, 1), that counts as progress
	Threshold float64
}

// DefaultConvergenceConfig returns the stall criterion for an n-dimensional run
func DefaultConvergenceConfig(n int) ConvergenceConfig {
	return ConvergenceConfig{
		Patience:  3 * n,
		Threshold: 1e-9,
	}
}

// ConvergenceTracker tracks the best value per sweep and detects stalls
type ConvergenceTracker struct {
	config          ConvergenceConfig
	history         []float64
	best            float64 // Best value ever seen
	lastSignificant float64 // Last value that was a significant improvement
	staleCount      int     // Sweeps without significant improvement
}

// NewConvergenceTracker creates a new convergence tracker with the given config
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config:          config,
		best:            math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Update records the best value after a sweep and returns true once the run has stalled
func (c *ConvergenceTracker) Update(value float64) bool {
	c.history = append(c.history, value)

	if value < c.best {
		c.best = value
	}

	if len(c.history) == 1 {
		c.lastSignificant = value
		return false
	}

	improvement := c.lastSignificant - value
	scale := math.Max(math.Abs(c.lastSignificant), 1)
	if math.IsInf(c.lastSignificant, 1) && !math.IsInf(value, 1) {
		// Any finite value beats an infinite one
		improvement, scale = 1, 1
	}

	if improvement/scale > c.config.Threshold {
		c.lastSignificant = value
		c.staleCount = 0
		return false
	}

	c.staleCount++
	if c.staleCount >= c.config.Patience {
		slog.Debug("Sweep progress stalled",
			"stale_count", c.staleCount,
			"patience", c.config.Patience,
			"best", c.best,
		)
		return true
	}
	return false
}

// Best returns the best value seen so far
func (c *ConvergenceTracker) Best() float64 {
	return c.best
}

// History returns the per-sweep best values
func (c *ConvergenceTracker) History() []float64 {
	return append([]float64{}, c.history...)
}

// StaleCount returns the current number of sweeps without improvement
func (c *ConvergenceTracker) StaleCount() int {
	return c.staleCount
}
