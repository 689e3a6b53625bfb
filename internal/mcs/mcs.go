// Package mcs implements a bound-constrained global minimizer in the style of
// Multilevel Coordinate Search: a box partitioning phase organized in sweeps
// over box levels, combined with a local quadratic-model search started from
// improving points.
package mcs

import (
	"fmt"
	"log/slog"
	"math"
)

// run is the state of one invocation.
type run struct {
	lower, upper []float64
	width        []float64
	params       Params
	eval         *evaluator
	boxes        *boxList

	minimaPoints [][]float64
	minimaValues []float64
	lastLocal    float64
}

// Run minimizes f over the box [lower, upper].
func Run(f Objective, lower, upper []float64, p Params) (*Result, error) {
	if err := validate(lower, upper, p); err != nil {
		return nil, err
	}

	n := len(lower)
	r := &run{
		lower:     lower,
		upper:     upper,
		width:     make([]float64, n),
		params:    p,
		eval:      newEvaluator(f, n, p.MaxEvals),
		boxes:     newBoxList(p.SMax),
		lastLocal: math.Inf(1),
	}
	for i := range r.width {
		r.width[i] = upper[i] - lower[i]
	}

	slog.Debug("Starting MCS run", "n", n, "smax", p.SMax, "max_sweeps", p.MaxSweeps, "max_evals", p.MaxEvals, "local", p.Local)

	flag, sweeps := r.search()

	res := &Result{
		BestPoint:    append([]float64(nil), r.eval.best...),
		BestValue:    r.eval.fbest,
		MinimaPoints: r.minimaPoints,
		MinimaValues: r.minimaValues,
		NCall:        r.eval.ncall,
		NCloc:        r.eval.ncloc,
		Flag:         flag,
		Sweeps:       sweeps,
	}

	slog.Debug("MCS run complete", "flag", flag, "fbest", res.BestValue, "ncall", res.NCall, "ncloc", res.NCloc, "sweeps", sweeps)
	return res, nil
}

func (r *run) search() (ExitFlag, int) {
	if !r.initialize() {
		return StopEvalLimitExceeded, 0
	}

	tracker := NewConvergenceTracker(DefaultConvergenceConfig(len(r.lower)))
	sweeps := 0
	for {
		if sweeps >= r.params.MaxSweeps {
			return StopSweepLimitExceeded, sweeps
		}
		if !r.boxes.open() {
			return NormalShutdown, sweeps
		}

		ok := r.sweep()
		sweeps++
		if !ok {
			return StopEvalLimitExceeded, sweeps
		}

		if r.params.Local > 0 && r.eval.fbest < r.lastLocal {
			if !r.localPhase() {
				return StopEvalLimitExceeded, sweeps
			}
		}

		if r.params.Progress != nil {
			r.params.Progress(Sweep{
				Index:     sweeps,
				BestValue: r.eval.fbest,
				BestPoint: append([]float64(nil), r.eval.best...),
				NCall:     r.eval.ncall,
				Boxes:     r.boxes.count,
			})
		}

		if tracker.Update(r.eval.fbest) {
			return NormalShutdown, sweeps
		}
	}
}

// initialize evaluates the root center and, coordinate by coordinate, the
// two bound values, moving the current point to the best of the three.
func (r *run) initialize() bool {
	n := len(r.lower)
	root := &box{
		lo:     append([]float64(nil), r.lower...),
		hi:     append([]float64(nil), r.upper...),
		x:      make([]float64, n),
		level:  1,
		nsplit: make([]int, n),
	}
	for i := range root.x {
		root.x[i] = r.lower[i] + r.width[i]/2
	}
	f, ok := r.eval.eval(root.x)
	if !ok {
		return false
	}
	root.f = f
	r.boxes.add(root)

	x := append([]float64(nil), root.x...)
	fx := f
	for i := 0; i < n; i++ {
		if r.width[i] == 0 {
			continue
		}
		center := x[i]
		for _, t := range []float64{r.lower[i], r.upper[i]} {
			x[i] = t
			ft, ok := r.eval.eval(x)
			if !ok {
				return false
			}
			if ft < fx {
				fx, center = ft, t
			}
		}
		x[i] = center
	}
	return true
}

// sweep splits, level by level, the lowest box of every non-final level.
func (r *run) sweep() bool {
	for s := 1; s < r.boxes.smax; s++ {
		b := r.boxes.lowest(s)
		if b == nil {
			continue
		}
		i := b.splitCoordinate(r.width)
		if i < 0 {
			r.boxes.finalize(b)
			continue
		}
		if !r.boxes.split(b, i, r.eval) {
			return false
		}
	}
	return true
}

// localPhase starts a local search from the current best point and records
// the result as a local minimum.
func (r *run) localPhase() bool {
	start := append([]float64(nil), r.eval.best...)
	r.lastLocal = r.eval.fbest

	x, f, ok := r.localSearch(start, r.eval.fbest)
	r.addMinimum(x, f)
	r.lastLocal = r.eval.fbest
	return ok
}

// addMinimum appends x unless it coincides with a known minimum, in which
// case the better of the two is kept.
func (r *run) addMinimum(x []float64, f float64) {
	for k, m := range r.minimaPoints {
		if r.same(m, x) {
			if f < r.minimaValues[k] {
				r.minimaPoints[k] = x
				r.minimaValues[k] = f
			}
			return
		}
	}
	r.minimaPoints = append(r.minimaPoints, x)
	r.minimaValues = append(r.minimaValues, f)
}

func (r *run) same(a, b []float64) bool {
	for i := range a {
		tol := 1e-6 * math.Max(r.width[i], 1e-12)
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func validate(lower, upper []float64, p Params) error {
	n := len(lower)
	if n == 0 || len(upper) != n {
		return fmt.Errorf("%w: lower has %d entries, upper has %d", ErrInvalidBounds, n, len(upper))
	}
	for i := range lower {
		if math.IsNaN(lower[i]) || math.IsNaN(upper[i]) || math.IsInf(lower[i], 0) || math.IsInf(upper[i], 0) {
			return fmt.Errorf("%w: coordinate %d is not finite", ErrInvalidBounds, i)
		}
		if lower[i] > upper[i] {
			return fmt.Errorf("%w: coordinate %d has lower %g > upper %g", ErrInvalidBounds, i, lower[i], upper[i])
		}
	}
	if p.SMax < 1 {
		return fmt.Errorf("%w: smax must be at least 1, got %d", ErrInvalidParams, p.SMax)
	}
	if p.MaxEvals < 1 {
		return fmt.Errorf("%w: max evals must be positive, got %d", ErrInvalidParams, p.MaxEvals)
	}
	if p.MaxSweeps < 0 || p.Local < 0 {
		return fmt.Errorf("%w: sweep and local limits cannot be negative", ErrInvalidParams)
	}
	if math.IsNaN(p.Gamma) || p.Gamma < 0 {
		return fmt.Errorf("%w: gamma must be non-negative, got %g", ErrInvalidParams, p.Gamma)
	}
	if len(p.Hessian) != 0 && len(p.Hessian) != n*n {
		return fmt.Errorf("%w: hessian has %d entries, want %d", ErrInvalidParams, len(p.Hessian), n*n)
	}
	return nil
}
