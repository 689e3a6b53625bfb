package capi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cwbudde/mcsbridge/internal/bridge"
	"github.com/cwbudde/mcsbridge/internal/callback"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusOK},
		{&bridge.UnsupportedConfigError{SMax: 1, N: 2}, StatusUnsupported},
		{fmt.Errorf("wrapped: %w", ErrNullPointer), StatusNullPointer},
		{callback.ErrBusy, StatusBusy},
		{&bridge.OptimizerError{Err: callback.ErrNotSet, Panic: true}, StatusCallbackNotSet},
		{&bridge.OptimizerError{Err: errors.New("boom")}, StatusOptimizer},
		{ErrUnknownResult, StatusUnknownResult},
		{&DimensionMismatchError{Want: 6, Got: 8}, StatusDimensionMismatch},
		{ErrAlloc, StatusAlloc},
		{bridge.ErrInvalidInput, StatusInvalidArgument},
		{errors.New("other"), StatusOptimizer},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}

	if Status(42).String() != "status(42)" {
		t.Errorf("Unexpected name for unknown status: %q", Status(42).String())
	}
}
