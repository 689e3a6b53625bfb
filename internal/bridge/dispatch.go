// Package bridge routes a run request to the specialization registered for
// its shape and flattens the optimizer's result for transport.
package bridge

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/mcsbridge/internal/mcs"
	"github.com/cwbudde/mcsbridge/internal/opt"
)

// Request is one optimization run as received from a caller.
type Request struct {
	Objective mcs.Objective

	// Lower and Upper need at least N entries. Hessian needs at least N*N
	// entries in row-major order, or none at all.
	Lower, Upper []float64
	Hessian      []float64

	MaxSweeps int
	MaxEvals  int
	Local     int
	Gamma     float64

	SMax int
	N    int

	Progress func(mcs.Sweep)
}

// specialization runs requests of one dimension. A zero smax means the box
// capacity comes from the request.
type specialization struct {
	n    int
	smax int
	opt  opt.Optimizer
}

// run copies the inputs into buffers of exactly n (and n*n) entries, calls the
// optimizer and flattens its result.
func (s *specialization) run(req Request) (flat *Flat, err error) {
	n := s.n
	if req.Objective == nil {
		return nil, fmt.Errorf("%w: objective is nil", ErrInvalidInput)
	}
	if len(req.Lower) < n || len(req.Upper) < n {
		return nil, fmt.Errorf("%w: bounds need %d entries, got lower=%d upper=%d", ErrInvalidInput, n, len(req.Lower), len(req.Upper))
	}
	if len(req.Hessian) != 0 && len(req.Hessian) < n*n {
		return nil, fmt.Errorf("%w: hessian needs %d entries, got %d", ErrInvalidInput, n*n, len(req.Hessian))
	}

	lower := make([]float64, n)
	upper := make([]float64, n)
	copy(lower, req.Lower)
	copy(upper, req.Upper)
	var hess []float64
	if len(req.Hessian) != 0 {
		hess = make([]float64, n*n)
		copy(hess, req.Hessian)
	}

	smax := s.smax
	if smax == 0 {
		smax = req.SMax
	}

	params := mcs.Params{
		SMax:      smax,
		MaxSweeps: req.MaxSweeps,
		MaxEvals:  req.MaxEvals,
		Local:     req.Local,
		Gamma:     req.Gamma,
		Hessian:   hess,
		Progress:  req.Progress,
	}

	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			slog.Error("Optimizer panicked", "n", n, "smax", smax, "error", perr)
			flat, err = nil, &OptimizerError{Err: perr, Panic: true}
		}
	}()

	res, err := s.opt.Run(req.Objective, lower, upper, params)
	if err != nil {
		return nil, &OptimizerError{Err: err}
	}
	return Marshal(res, n)
}

// Dispatcher maps (SMax, N) to a specialization.
type Dispatcher struct {
	menu   Menu
	pairs  map[Shape]*specialization
	ranged map[int]*specialization
}

// NewDispatcher builds one specialization per menu pair and one per
// dimension in the menu range.
func NewDispatcher(menu Menu, o opt.Optimizer) (*Dispatcher, error) {
	if err := menu.Validate(); err != nil {
		return nil, fmt.Errorf("invalid menu: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("optimizer cannot be nil")
	}

	d := &Dispatcher{
		menu:   menu,
		pairs:  make(map[Shape]*specialization, len(menu.Pairs)),
		ranged: make(map[int]*specialization),
	}
	for _, p := range menu.Pairs {
		d.pairs[p] = &specialization{n: p.N, smax: p.SMax, opt: o}
	}
	if r := menu.Range; r != nil {
		for n := r.MinN; n <= r.MaxN; n++ {
			d.ranged[n] = &specialization{n: n, opt: o}
		}
	}
	return d, nil
}

// lookup returns the specialization for (smax, n). Explicit pairs win over
// the range.
func (d *Dispatcher) lookup(smax, n int) (*specialization, error) {
	if s, ok := d.pairs[Shape{SMax: smax, N: n}]; ok {
		return s, nil
	}
	if s, ok := d.ranged[n]; ok {
		r := d.menu.Range
		if smax >= r.MinSMax && smax <= r.MaxSMax {
			return s, nil
		}
	}
	return nil, &UnsupportedConfigError{SMax: smax, N: n}
}

// Supports reports whether (smax, n) is on the menu.
func (d *Dispatcher) Supports(smax, n int) bool {
	_, err := d.lookup(smax, n)
	return err == nil
}

// SupportsDimension reports whether any entry accepts dimension n.
func (d *Dispatcher) SupportsDimension(n int) bool {
	if _, ok := d.ranged[n]; ok {
		return true
	}
	for p := range d.pairs {
		if p.N == n {
			return true
		}
	}
	return false
}

// Run dispatches req. Unsupported shapes are rejected before the objective
// is called.
func (d *Dispatcher) Run(req Request) (*Flat, error) {
	s, err := d.lookup(req.SMax, req.N)
	if err != nil {
		slog.Warn("Rejected run", "smax", req.SMax, "n", req.N, "error", err)
		return nil, err
	}

	slog.Debug("Dispatching run", "smax", req.SMax, "n", req.N, "max_sweeps", req.MaxSweeps, "max_evals", req.MaxEvals)

	flat, err := s.run(req)
	if err != nil {
		return nil, err
	}

	slog.Debug("Run finished", "n", req.N, "flag", flat.Flag, "fbest", flat.BestValue, "ncall", flat.NCall)
	return flat, nil
}

// Entry describes one dispatch table row.
type Entry struct {
	N int
	// SMax is fixed for pairs. For range rows it is zero and MinSMax/MaxSMax
	// give the accepted interval.
	SMax    int
	MinSMax int
	MaxSMax int
}

func (e Entry) String() string {
	if e.SMax != 0 {
		return fmt.Sprintf("n=%d smax=%d", e.N, e.SMax)
	}
	return fmt.Sprintf("n=%d smax=%d..%d", e.N, e.MinSMax, e.MaxSMax)
}

// Shapes lists the table, pairs first.
func (d *Dispatcher) Shapes() []Entry {
	var entries []Entry
	for _, p := range d.menu.sortedPairs() {
		entries = append(entries, Entry{N: p.N, SMax: p.SMax})
	}
	if r := d.menu.Range; r != nil {
		for n := r.MinN; n <= r.MaxN; n++ {
			entries = append(entries, Entry{N: n, MinSMax: r.MinSMax, MaxSMax: r.MaxSMax})
		}
	}
	return entries
}
