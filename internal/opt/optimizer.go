package opt

import "github.com/cwbudde/mcsbridge/internal/mcs"

// Optimizer defines a bound-constrained minimizer
type Optimizer interface {
	// Run minimizes f over [lower, upper]
	// p carries the sweep/evaluation limits, local search settings and Hessian
	// Returns the best point, local minima, counters and exit flag
	Run(f mcs.Objective, lower, upper []float64, p mcs.Params) (*mcs.Result, error)
}

// Engine names accepted by New
const (
	EngineMCS    = "mcs"
	EngineMayfly = "mayfly"
)

// New returns the optimizer registered under name
func New(name string, popSize int, seed int64) (Optimizer, error) {
	switch name {
	case "", EngineMCS:
		return NewMCS(), nil
	case EngineMayfly:
		return NewMayfly(popSize, seed), nil
	default:
		return nil, &UnknownEngineError{Name: name}
	}
}

// UnknownEngineError is returned by New for unregistered engine names
type UnknownEngineError struct {
	Name string
}

func (e *UnknownEngineError) Error() string {
	return "unknown optimizer engine: " + e.Name
}
