//go:build cgo

package capi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "mcs_types.h"

static inline double call_objective(mcs_objective f, const double *x, size_t n) {
    return f(x, n);
}

static inline double call_objective_ctx(mcs_objective_ctx f, const double *x, size_t n, void *user_data) {
    return f(x, n, user_data);
}
*/
import "C"

import (
	"unsafe"

	"github.com/cwbudde/mcsbridge/internal/mcs"
)

// closureObjective binds a context-carrying C objective to user_data.
func closureObjective(fn C.mcs_objective_ctx, userData unsafe.Pointer) mcs.Objective {
	return func(x []float64) float64 {
		return float64(C.call_objective_ctx(fn, (*C.double)(unsafe.Pointer(&x[0])), C.size_t(len(x)), userData))
	}
}

// slotObjective reads the process-wide slot on every evaluation. An empty
// slot panics with callback.ErrNotSet; the dispatcher turns that into an
// error.
func (b *Bridge) slotObjective(x []float64) float64 {
	fn, err := b.slot.Get()
	if err != nil {
		panic(err)
	}
	return float64(C.call_objective(fn, (*C.double)(unsafe.Pointer(&x[0])), C.size_t(len(x))))
}
