package mcs

import "math"

// localSearch runs a coordinate-wise quadratic model search from x0. Each
// iteration fits a parabola through three points along every coordinate and
// tries its vertex. It returns false when the budget ran out.
func (r *run) localSearch(x0 []float64, f0 float64) ([]float64, float64, bool) {
	r.eval.inLocal = true
	defer func() { r.eval.inLocal = false }()

	n := len(x0)
	x := append([]float64(nil), x0...)
	f := f0

	h := make([]float64, n)
	for i := range h {
		h[i] = 0.1 * r.width[i]
	}

	for it := 0; it < r.params.Local; it++ {
		fStart := f
		for i := 0; i < n; i++ {
			if h[i] <= r.width[i]*1e-15 {
				continue
			}
			xi, fi, ok := r.lineStep(x, f, i, h[i])
			if !ok {
				return x, f, false
			}
			moved := math.Abs(xi - x[i])
			if fi < f {
				x[i], f = xi, fi
				h[i] = math.Min(math.Max(moved, 0.5*h[i]), 0.5*r.width[i])
			} else {
				h[i] *= 0.25
			}
		}
		if fStart-f <= r.params.Gamma*math.Max(math.Abs(fStart), 1) {
			break
		}
	}
	return x, f, true
}

// lineStep probes coordinate i around x at distance h and returns the best
// coordinate value found with its objective value.
func (r *run) lineStep(x []float64, f float64, i int, h float64) (float64, float64, bool) {
	lo, hi := r.lower[i], r.upper[i]
	xi := x[i]
	a := math.Max(lo, xi-h)
	b := math.Min(hi, xi+h)

	probe := append([]float64(nil), x...)
	at := func(t float64) (float64, bool) {
		if t == xi {
			return f, true
		}
		probe[i] = t
		return r.eval.eval(probe)
	}

	fa, ok := at(a)
	if !ok {
		return xi, f, false
	}
	fb, ok := at(b)
	if !ok {
		return xi, f, false
	}

	bestX, bestF := xi, f
	if fa < bestF {
		bestX, bestF = a, fa
	}
	if fb < bestF {
		bestX, bestF = b, fb
	}

	if v, ok := r.vertex(i, a, fa, xi, f, b, fb); ok && v != a && v != b && v != xi {
		fv, ok := at(v)
		if !ok {
			return bestX, bestF, false
		}
		if fv < bestF {
			bestX, bestF = v, fv
		}
	}
	return bestX, bestF, true
}

// vertex returns the minimizer of the parabola through the three points,
// clamped to the bounds. When the fitted curvature is not positive the
// Hessian diagonal is used for a Newton step instead.
func (r *run) vertex(i int, x1, f1, x2, f2, x3, f3 float64) (float64, bool) {
	if x1 == x2 || x2 == x3 || x1 == x3 {
		return 0, false
	}
	if math.IsInf(f1, 0) || math.IsInf(f2, 0) || math.IsInf(f3, 0) {
		return 0, false
	}
	denom := (x1 - x2) * (x1 - x3) * (x2 - x3)
	A := (x3*(f2-f1) + x2*(f1-f3) + x1*(f3-f2)) / denom
	B := (x3*x3*(f1-f2) + x2*x2*(f3-f1) + x1*x1*(f2-f3)) / denom

	var v float64
	switch {
	case A > 0:
		v = -B / (2 * A)
	case r.curvature(i) > 0:
		slope := 2*A*x2 + B
		v = x2 - slope/r.curvature(i)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return math.Max(r.lower[i], math.Min(r.upper[i], v)), true
}

func (r *run) curvature(i int) float64 {
	if len(r.params.Hessian) == 0 {
		return 0
	}
	return r.params.Hessian[i*len(r.lower)+i]
}
