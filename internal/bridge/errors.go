package bridge

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a shape is not on the menu.
// Use errors.Is(err, ErrUnsupported) to check for this error.
var ErrUnsupported = &UnsupportedConfigError{}

// ErrInvalidInput is returned when input buffers are shorter than the shape requires.
var ErrInvalidInput = errors.New("invalid input")

// ErrOptimizer matches every *OptimizerError.
var ErrOptimizer = &OptimizerError{}

// UnsupportedConfigError names a (SMax, N) combination that has no specialization.
// SMax is zero when only the dimension was checked.
type UnsupportedConfigError struct {
	SMax int
	N    int
}

func (e *UnsupportedConfigError) Error() string {
	switch {
	case e.N == 0 && e.SMax == 0:
		return "unsupported dimension"
	case e.SMax == 0:
		return fmt.Sprintf("unsupported dimension: n=%d", e.N)
	default:
		return fmt.Sprintf("unsupported dimension: smax=%d n=%d", e.SMax, e.N)
	}
}

func (e *UnsupportedConfigError) Is(target error) bool {
	_, ok := target.(*UnsupportedConfigError)
	return ok
}

// OptimizerError wraps a failure of the wrapped optimizer, including a panic
// raised while it was running.
type OptimizerError struct {
	Err   error
	Panic bool
}

func (e *OptimizerError) Error() string {
	if e.Err == nil {
		return "optimizer failed"
	}
	if e.Panic {
		return "optimizer panicked: " + e.Err.Error()
	}
	return "optimizer failed: " + e.Err.Error()
}

func (e *OptimizerError) Unwrap() error {
	return e.Err
}

func (e *OptimizerError) Is(target error) bool {
	_, ok := target.(*OptimizerError)
	return ok
}
