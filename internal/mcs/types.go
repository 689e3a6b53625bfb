package mcs

import (
	"errors"
	"fmt"
)

// Objective is the function being minimized. It must not retain x.
type Objective func(x []float64) float64

// ExitFlag reports why a run stopped.
type ExitFlag int

const (
	// NormalShutdown means the run ended by its own convergence criterion.
	NormalShutdown ExitFlag = iota
	// StopEvalLimitExceeded means MaxEvals objective calls were spent.
	StopEvalLimitExceeded
	// StopSweepLimitExceeded means MaxSweeps sweeps were completed.
	StopSweepLimitExceeded
)

func (f ExitFlag) String() string {
	switch f {
	case NormalShutdown:
		return "NormalShutdown"
	case StopEvalLimitExceeded:
		return "StopEvalLimitExceeded"
	case StopSweepLimitExceeded:
		return "StopSweepLimitExceeded"
	default:
		return fmt.Sprintf("ExitFlag(%d)", int(f))
	}
}

// Sweep is reported to Params.Progress after every completed sweep.
type Sweep struct {
	Index     int
	BestValue float64
	BestPoint []float64
	NCall     int
	Boxes     int
}

// Params holds the run parameters besides the bounds.
type Params struct {
	// SMax is the number of box levels; boxes at level SMax are not split further.
	SMax int

	MaxSweeps int
	MaxEvals  int

	// Local is the iteration limit of each local search (0 disables it).
	Local int

	// Gamma is the relative improvement below which a local search stops.
	Gamma float64

	// Hessian is an optional row-major N×N curvature estimate.
	Hessian []float64

	Progress func(Sweep)
}

// Result is the outcome of a run.
type Result struct {
	BestPoint    []float64
	BestValue    float64
	MinimaPoints [][]float64
	MinimaValues []float64
	NCall        int
	NCloc        int
	Flag         ExitFlag
	Sweeps       int
}

// Errors returned for invalid input.
var (
	ErrInvalidBounds = errors.New("mcs: invalid bounds")
	ErrInvalidParams = errors.New("mcs: invalid parameters")
)
