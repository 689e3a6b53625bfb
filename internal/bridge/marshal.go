package bridge

import (
	"fmt"

	"github.com/cwbudde/mcsbridge/internal/mcs"
)

// ExitCode is the ABI form of mcs.ExitFlag.
type ExitCode int32

const (
	ExitNormalShutdown      ExitCode = 0
	ExitStopNFExceeded      ExitCode = 1
	ExitStopNSweepsExceeded ExitCode = 2
)

func (c ExitCode) String() string {
	switch c {
	case ExitNormalShutdown:
		return "NormalShutdown"
	case ExitStopNFExceeded:
		return "StopEvalLimitExceeded"
	case ExitStopNSweepsExceeded:
		return "StopSweepLimitExceeded"
	default:
		return fmt.Sprintf("ExitCode(%d)", int32(c))
	}
}

// exitCode translates an optimizer flag.
func exitCode(f mcs.ExitFlag) (ExitCode, error) {
	switch f {
	case mcs.NormalShutdown:
		return ExitNormalShutdown, nil
	case mcs.StopEvalLimitExceeded:
		return ExitStopNFExceeded, nil
	case mcs.StopSweepLimitExceeded:
		return ExitStopNSweepsExceeded, nil
	default:
		return 0, fmt.Errorf("unknown exit flag %d", int(f))
	}
}

// Flat is a result laid out for transport: contiguous buffers plus the sizes
// needed to reclaim them.
type Flat struct {
	N int

	BestPoint []float64 // N entries
	BestValue float64

	// MinimaPoints holds Count rows of N entries, row-major.
	MinimaPoints []float64
	MinimaValues []float64
	Count        int

	NCall int
	NCloc int
	Flag  ExitCode
}

// Marshal flattens res for dimension n.
func Marshal(res *mcs.Result, n int) (*Flat, error) {
	if res == nil {
		return nil, &OptimizerError{Err: fmt.Errorf("nil result")}
	}
	if len(res.BestPoint) != n {
		return nil, &OptimizerError{Err: fmt.Errorf("best point has %d entries, want %d", len(res.BestPoint), n)}
	}
	if len(res.MinimaPoints) != len(res.MinimaValues) {
		return nil, &OptimizerError{Err: fmt.Errorf("%d minima points but %d values", len(res.MinimaPoints), len(res.MinimaValues))}
	}
	flag, err := exitCode(res.Flag)
	if err != nil {
		return nil, &OptimizerError{Err: err}
	}

	count := len(res.MinimaPoints)
	flat := &Flat{
		N:            n,
		BestPoint:    append(make([]float64, 0, n), res.BestPoint...),
		BestValue:    res.BestValue,
		MinimaValues: append(make([]float64, 0, count), res.MinimaValues...),
		Count:        count,
		NCall:        res.NCall,
		NCloc:        res.NCloc,
		Flag:         flag,
	}
	flat.MinimaPoints = make([]float64, 0, count*n)
	for k, p := range res.MinimaPoints {
		if len(p) != n {
			return nil, &OptimizerError{Err: fmt.Errorf("minimum %d has %d entries, want %d", k, len(p), n)}
		}
		flat.MinimaPoints = append(flat.MinimaPoints, p...)
	}
	return flat, nil
}

// Minimum returns row k of the flattened minima.
func (f *Flat) Minimum(k int) []float64 {
	return f.MinimaPoints[k*f.N : (k+1)*f.N]
}
