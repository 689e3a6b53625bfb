package capi

import (
	"errors"
	"fmt"

	"github.com/cwbudde/mcsbridge/internal/bridge"
	"github.com/cwbudde/mcsbridge/internal/callback"
	"github.com/cwbudde/mcsbridge/internal/mcs"
)

// Status mirrors mcs_status in mcs_types.h.
type Status int32

const (
	StatusOK                Status = 0
	StatusUnsupported       Status = 1
	StatusNullPointer       Status = 2
	StatusBusy              Status = 3
	StatusCallbackNotSet    Status = 4
	StatusOptimizer         Status = 5
	StatusUnknownResult     Status = 6
	StatusDimensionMismatch Status = 7
	StatusAlloc             Status = 8
	StatusInvalidArgument   Status = 9
)

var statusNames = map[Status]string{
	StatusOK:                "ok",
	StatusUnsupported:       "unsupported dimension",
	StatusNullPointer:       "null pointer",
	StatusBusy:              "callback slot busy",
	StatusCallbackNotSet:    "callback not set",
	StatusOptimizer:         "optimizer failed",
	StatusUnknownResult:     "unknown result",
	StatusDimensionMismatch: "dimension mismatch",
	StatusAlloc:             "allocation failed",
	StatusInvalidArgument:   "invalid argument",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

var (
	// ErrNullPointer is returned when a required pointer argument is NULL.
	ErrNullPointer = errors.New("null pointer")
	// ErrUnknownResult is returned for a result that is not live: never
	// produced by this library, or already released.
	ErrUnknownResult = errors.New("unknown or already released result")
	// ErrAlloc is returned when C memory could not be allocated.
	ErrAlloc = errors.New("allocation failed")
)

// DimensionMismatchError is returned when a result is released with a
// different n than it was built with. Nothing is released in that case.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: result has n=%d, got n=%d", e.Want, e.Got)
}

// StatusOf maps an error to the status code returned across the C ABI.
func StatusOf(err error) Status {
	var mismatch *DimensionMismatchError
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, bridge.ErrUnsupported):
		return StatusUnsupported
	case errors.Is(err, ErrNullPointer):
		return StatusNullPointer
	case errors.Is(err, callback.ErrBusy):
		return StatusBusy
	case errors.Is(err, callback.ErrNotSet):
		return StatusCallbackNotSet
	case errors.Is(err, ErrUnknownResult):
		return StatusUnknownResult
	case errors.As(err, &mismatch):
		return StatusDimensionMismatch
	case errors.Is(err, ErrAlloc):
		return StatusAlloc
	case errors.Is(err, bridge.ErrInvalidInput),
		errors.Is(err, mcs.ErrInvalidBounds),
		errors.Is(err, mcs.ErrInvalidParams):
		return StatusInvalidArgument
	default:
		return StatusOptimizer
	}
}
