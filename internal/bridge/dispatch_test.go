package bridge

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/mcsbridge/internal/callback"
	"github.com/cwbudde/mcsbridge/internal/mcs"
	"github.com/cwbudde/mcsbridge/internal/opt"
)

func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func bounds(n int, lo, hi float64) ([]float64, []float64) {
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i] = lo
		upper[i] = hi
	}
	return lower, upper
}

func identity(n int) []float64 {
	h := make([]float64, n*n)
	for i := 0; i < n; i++ {
		h[i*n+i] = 1
	}
	return h
}

func newTestDispatcher(t *testing.T, menu Menu) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(menu, opt.NewMCS())
	if err != nil {
		t.Fatalf("NewDispatcher failed: %v", err)
	}
	return d
}

type failingOptimizer struct {
	err error
}

func (f failingOptimizer) Run(mcs.Objective, []float64, []float64, mcs.Params) (*mcs.Result, error) {
	return nil, f.err
}

func TestDispatchConstantEveryPair(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())

	for _, p := range DefaultMenu().Pairs {
		t.Run(p.String(), func(t *testing.T) {
			lower, upper := bounds(p.N, -3, 3)
			calls := 0
			flat, err := d.Run(Request{
				Objective: func([]float64) float64 { calls++; return 4.2 },
				Lower:     lower,
				Upper:     upper,
				Hessian:   identity(p.N),
				MaxSweeps: 50,
				MaxEvals:  2000,
				Local:     5,
				Gamma:     1e-8,
				SMax:      p.SMax,
				N:         p.N,
			})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(flat.BestPoint) != p.N {
				t.Errorf("Expected %d coordinates, got %d", p.N, len(flat.BestPoint))
			}
			if flat.Flag != ExitNormalShutdown && flat.Flag != ExitStopNFExceeded && flat.Flag != ExitStopNSweepsExceeded {
				t.Errorf("Unexpected exit flag %v", flat.Flag)
			}
			if calls > 2000 || calls != flat.NCall {
				t.Errorf("Objective called %d times, NCall %d, limit 2000", calls, flat.NCall)
			}
		})
	}
}

func TestDispatchSphereSixDims(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())
	lower, upper := bounds(6, -1, 1)

	flat, err := d.Run(Request{
		Objective: sphere,
		Lower:     lower,
		Upper:     upper,
		Hessian:   identity(6),
		MaxSweeps: 1000,
		MaxEvals:  100000,
		Local:     50,
		Gamma:     1e-12,
		SMax:      20,
		N:         6,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if flat.Flag != ExitNormalShutdown {
		t.Errorf("Expected NormalShutdown, got %v", flat.Flag)
	}
	if math.Abs(flat.BestValue) > 1e-10 {
		t.Errorf("Expected best value near 0, got %g", flat.BestValue)
	}
	for i, v := range flat.BestPoint {
		if math.Abs(v) > 1e-6 {
			t.Errorf("Coordinate %d = %g, expected near 0", i, v)
		}
	}
	if len(flat.MinimaPoints) != flat.Count*6 || len(flat.MinimaValues) != flat.Count {
		t.Errorf("Minima buffers do not match count %d", flat.Count)
	}
}

func TestDispatchUnsupported(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())

	tests := []struct {
		smax, n int
	}{
		{20, 5},
		{23, 6},
		{21, 8},
		{0, 0},
		{-1, 6},
	}

	for _, tt := range tests {
		calls := 0
		lower, upper := bounds(max(tt.n, 1), -1, 1)
		_, err := d.Run(Request{
			Objective: func([]float64) float64 { calls++; return 0 },
			Lower:     lower,
			Upper:     upper,
			MaxSweeps: 10,
			MaxEvals:  100,
			SMax:      tt.smax,
			N:         tt.n,
		})
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("smax=%d n=%d: expected ErrUnsupported, got %v", tt.smax, tt.n, err)
		}
		var uerr *UnsupportedConfigError
		if errors.As(err, &uerr) && (uerr.SMax != tt.smax || uerr.N != tt.n) {
			t.Errorf("Error names smax=%d n=%d, want smax=%d n=%d", uerr.SMax, uerr.N, tt.smax, tt.n)
		}
		if calls != 0 {
			t.Errorf("smax=%d n=%d: objective called %d times", tt.smax, tt.n, calls)
		}
	}
}

func TestDispatchRange(t *testing.T) {
	menu := Menu{Range: &Range{MinN: 1, MaxN: 4, MinSMax: 2, MaxSMax: 30}}
	d := newTestDispatcher(t, menu)

	lower, upper := bounds(3, -1, 1)
	flat, err := d.Run(Request{
		Objective: sphere,
		Lower:     lower,
		Upper:     upper,
		MaxSweeps: 20,
		MaxEvals:  5000,
		SMax:      17,
		N:         3,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(flat.BestPoint) != 3 {
		t.Errorf("Expected 3 coordinates, got %d", len(flat.BestPoint))
	}

	if _, err := d.Run(Request{Objective: sphere, Lower: lower, Upper: upper, MaxEvals: 10, SMax: 31, N: 3}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected smax outside range to be rejected, got %v", err)
	}
	if d.SupportsDimension(5) {
		t.Error("Dimension 5 should not be supported")
	}
	if !d.SupportsDimension(4) {
		t.Error("Dimension 4 should be supported")
	}
}

func TestDispatchPairsBeforeRange(t *testing.T) {
	menu := Menu{
		Pairs: []Shape{{SMax: 50, N: 2}},
		Range: &Range{MinN: 1, MaxN: 3, MinSMax: 2, MaxSMax: 10},
	}
	d := newTestDispatcher(t, menu)

	if !d.Supports(50, 2) {
		t.Error("Pair (50, 2) should be supported")
	}
	if !d.Supports(5, 2) {
		t.Error("Range should accept (5, 2)")
	}
	if d.Supports(11, 1) {
		t.Error("(11, 1) is outside both forms")
	}

	shapes := d.Shapes()
	if len(shapes) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(shapes))
	}
	if shapes[0].SMax != 50 || shapes[0].N != 2 {
		t.Errorf("Expected pair first, got %v", shapes[0])
	}
	if shapes[1].String() != "n=1 smax=2..10" {
		t.Errorf("Unexpected range entry %q", shapes[1].String())
	}
}

func TestDispatchShortInput(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())

	tests := []struct {
		name string
		req  Request
	}{
		{"short lower", Request{Objective: sphere, Lower: make([]float64, 5), Upper: make([]float64, 6)}},
		{"short upper", Request{Objective: sphere, Lower: make([]float64, 6), Upper: make([]float64, 2)}},
		{"short hessian", Request{Objective: sphere, Lower: make([]float64, 6), Upper: make([]float64, 6), Hessian: make([]float64, 35)}},
		{"nil objective", Request{Lower: make([]float64, 6), Upper: make([]float64, 6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.SMax, req.N, req.MaxEvals = 20, 6, 10
			if _, err := d.Run(req); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDispatchCopiesInputs(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())

	// Longer buffers are truncated to N entries
	lower, upper := bounds(10, -1, 1)
	flat, err := d.Run(Request{
		Objective: func(x []float64) float64 {
			if len(x) != 6 {
				panic("wrong length")
			}
			return sphere(x)
		},
		Lower:     lower,
		Upper:     upper,
		MaxSweeps: 3,
		MaxEvals:  500,
		SMax:      20,
		N:         6,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if flat.N != 6 {
		t.Errorf("Expected N 6, got %d", flat.N)
	}
}

func TestDispatchCallbackPanic(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())
	lower, upper := bounds(6, -1, 1)

	var slot callback.Slot[mcs.Objective]
	trampoline := func(x []float64) float64 {
		fn, err := slot.Get()
		if err != nil {
			panic(err)
		}
		return fn(x)
	}

	_, err := d.Run(Request{
		Objective: trampoline,
		Lower:     lower,
		Upper:     upper,
		MaxSweeps: 10,
		MaxEvals:  100,
		SMax:      20,
		N:         6,
	})
	if !errors.Is(err, ErrOptimizer) {
		t.Errorf("Expected OptimizerError, got %v", err)
	}
	if !errors.Is(err, callback.ErrNotSet) {
		t.Errorf("Expected the error to wrap ErrNotSet, got %v", err)
	}
}

func TestDispatchOptimizerError(t *testing.T) {
	cause := errors.New("diverged")
	d, err := NewDispatcher(DefaultMenu(), failingOptimizer{err: cause})
	if err != nil {
		t.Fatalf("NewDispatcher failed: %v", err)
	}

	lower, upper := bounds(8, 0, 1)
	_, err = d.Run(Request{Objective: sphere, Lower: lower, Upper: upper, MaxEvals: 10, SMax: 25, N: 8})
	if !errors.Is(err, ErrOptimizer) || !errors.Is(err, cause) {
		t.Errorf("Expected OptimizerError wrapping the cause, got %v", err)
	}
}

func TestDispatchInvalidParams(t *testing.T) {
	d := newTestDispatcher(t, DefaultMenu())
	lower, upper := bounds(6, 1, 0)

	_, err := d.Run(Request{Objective: sphere, Lower: lower, Upper: upper, MaxEvals: 10, SMax: 20, N: 6})
	if !errors.Is(err, ErrOptimizer) || !errors.Is(err, mcs.ErrInvalidBounds) {
		t.Errorf("Expected OptimizerError wrapping ErrInvalidBounds, got %v", err)
	}
}

func TestNewDispatcherRejectsBadMenu(t *testing.T) {
	tests := []struct {
		name string
		menu Menu
	}{
		{"empty", Menu{}},
		{"zero n", Menu{Pairs: []Shape{{SMax: 5, N: 0}}}},
		{"duplicate", Menu{Pairs: []Shape{{SMax: 5, N: 2}, {SMax: 5, N: 2}}}},
		{"inverted range", Menu{Range: &Range{MinN: 4, MaxN: 2, MinSMax: 1, MaxSMax: 3}}},
		{"bad smax range", Menu{Range: &Range{MinN: 1, MaxN: 2, MinSMax: 0, MaxSMax: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDispatcher(tt.menu, opt.NewMCS()); err == nil {
				t.Error("Expected error for invalid menu")
			}
		})
	}

	if _, err := NewDispatcher(DefaultMenu(), nil); err == nil {
		t.Error("Expected error for nil optimizer")
	}
}
