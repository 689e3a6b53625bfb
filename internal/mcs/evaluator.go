package mcs

import "math"

// evaluator enforces the evaluation budget and tracks the best point seen.
type evaluator struct {
	f       Objective
	max     int
	ncall   int
	ncloc   int
	inLocal bool
	scratch []float64
	best    []float64
	fbest   float64
}

func newEvaluator(f Objective, n, max int) *evaluator {
	return &evaluator{
		f:       f,
		max:     max,
		scratch: make([]float64, n),
		best:    make([]float64, n),
		fbest:   math.Inf(1),
	}
}

// eval calls the objective once. It returns false without calling it when
// the budget is spent.
func (e *evaluator) eval(x []float64) (float64, bool) {
	if e.ncall >= e.max {
		return math.Inf(1), false
	}
	e.ncall++
	if e.inLocal {
		e.ncloc++
	}

	copy(e.scratch, x)
	v := sanitize(e.f(e.scratch))
	if v < e.fbest || e.ncall == 1 {
		e.fbest = v
		copy(e.best, x)
	}
	return v, true
}

