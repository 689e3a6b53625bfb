package opt

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"github.com/cwbudde/mcsbridge/internal/mcs"
)

// minPopulation is the smallest population mayfly v0.1.0 accepts
const minPopulation = 20

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	popSize int
	seed    int64
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(popSize int, seed int64) Optimizer {
	if popSize < minPopulation {
		popSize = minPopulation
	}
	return &MayflyAdapter{
		popSize: popSize,
		seed:    seed,
	}
}

// Run executes the Mayfly optimization using the external library.
// The library only supports scalar bounds, so the search runs on the unit
// cube and every position is mapped onto [lower, upper] before evaluation.
// MaxSweeps becomes the iteration limit; MaxEvals caps objective calls.
func (m *MayflyAdapter) Run(f mcs.Objective, lower, upper []float64, p mcs.Params) (*mcs.Result, error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return nil, fmt.Errorf("%w: lower has %d entries, upper has %d", mcs.ErrInvalidBounds, len(lower), len(upper))
	}
	for i := range lower {
		if !(lower[i] <= upper[i]) {
			return nil, fmt.Errorf("%w: coordinate %d has lower %g > upper %g", mcs.ErrInvalidBounds, i, lower[i], upper[i])
		}
	}
	if p.MaxEvals < 1 {
		return nil, fmt.Errorf("%w: max evals must be positive, got %d", mcs.ErrInvalidParams, p.MaxEvals)
	}

	dim := len(lower)
	x := make([]float64, dim)
	best := make([]float64, dim)
	fbest := math.Inf(1)
	ncall := 0
	capped := false

	eval := func(t []float64) float64 {
		if ncall >= p.MaxEvals {
			capped = true
			return math.Inf(1)
		}
		for i := range x {
			u := math.Max(0, math.Min(1, t[i]))
			x[i] = lower[i] + u*(upper[i]-lower[i])
		}
		ncall++
		v := f(x)
		if math.IsNaN(v) {
			v = math.Inf(1)
		}
		if v < fbest || ncall == 1 {
			fbest = v
			copy(best, x)
		}
		return v
	}

	// Create config for external Mayfly library
	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = max(p.MaxSweeps, 1)
	config.NPop = m.popSize
	config.LowerBound = 0
	config.UpperBound = 1

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	slog.Debug("Starting Mayfly run", "dim", dim, "iterations", config.MaxIterations, "population", m.popSize, "max_evals", p.MaxEvals)

	if _, err := mayfly.Optimize(config); err != nil {
		return nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	flag := mcs.StopSweepLimitExceeded
	if capped || ncall >= p.MaxEvals {
		flag = mcs.StopEvalLimitExceeded
	}

	// The library has no per-iteration hook; report the final state once.
	if p.Progress != nil {
		p.Progress(mcs.Sweep{
			Index:     config.MaxIterations,
			BestValue: fbest,
			BestPoint: append([]float64(nil), best...),
			NCall:     ncall,
		})
	}

	return &mcs.Result{
		BestPoint:    best,
		BestValue:    fbest,
		MinimaPoints: [][]float64{append([]float64(nil), best...)},
		MinimaValues: []float64{fbest},
		NCall:        ncall,
		Flag:         flag,
		Sweeps:       config.MaxIterations,
	}, nil
}
