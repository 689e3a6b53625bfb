//go:build cgo

// Package ctest provides C objectives and C-allocated storage for tests of
// the C entry points. Test files cannot use cgo directly.
package ctest

/*
#cgo CFLAGS: -I${SRCDIR}/../../../include
#include <stdlib.h>
#include "mcs_types.h"

static size_t ctest_calls;

static double ctest_sphere(const double *x, size_t n) {
    double sum = 0;
    ctest_calls++;
    for (size_t i = 0; i < n; i++) {
        sum += x[i] * x[i];
    }
    return sum;
}

static double ctest_constant(const double *x, size_t n) {
    (void)x;
    (void)n;
    ctest_calls++;
    return -3.5;
}

typedef struct {
    double *center;
    size_t n;
    size_t calls;
} ctest_shift;

static double ctest_shifted(const double *x, size_t n, void *user_data) {
    ctest_shift *s = (ctest_shift *)user_data;
    double sum = 0;
    s->calls++;
    for (size_t i = 0; i < n && i < s->n; i++) {
        double d = x[i] - s->center[i];
        sum += d * d;
    }
    return sum;
}

static size_t ctest_get_calls(void) { return ctest_calls; }
static void ctest_reset_calls(void) { ctest_calls = 0; }

static mcs_objective ctest_sphere_ptr(void) { return ctest_sphere; }
static mcs_objective ctest_constant_ptr(void) { return ctest_constant; }
static mcs_objective_ctx ctest_shifted_ptr(void) { return ctest_shifted; }
*/
import "C"

import "unsafe"

// Sphere returns an mcs_objective computing sum(x_i^2).
func Sphere() unsafe.Pointer {
	return unsafe.Pointer(C.ctest_sphere_ptr())
}

// Constant returns an mcs_objective that always returns -3.5.
func Constant() unsafe.Pointer {
	return unsafe.Pointer(C.ctest_constant_ptr())
}

// Calls returns how often Sphere and Constant were called since the last Reset.
func Calls() int {
	return int(C.ctest_get_calls())
}

// Reset clears the call counter of Sphere and Constant.
func Reset() {
	C.ctest_reset_calls()
}

// Shifted returns an mcs_objective_ctx computing sum((x_i-c_i)^2) for the
// center held by a Shift passed as user data.
func Shifted() unsafe.Pointer {
	return unsafe.Pointer(C.ctest_shifted_ptr())
}

// Shift is C-allocated user data for Shifted. It counts its own calls.
type Shift struct {
	p *C.ctest_shift
}

// NewShift copies center into C memory.
func NewShift(center []float64) *Shift {
	s := (*C.ctest_shift)(C.calloc(1, C.sizeof_ctest_shift))
	s.center = (*C.double)(C.calloc(C.size_t(len(center)), C.sizeof_double))
	s.n = C.size_t(len(center))
	copy(unsafe.Slice((*float64)(unsafe.Pointer(s.center)), len(center)), center)
	return &Shift{p: s}
}

// UserData returns the pointer to pass as user_data.
func (s *Shift) UserData() unsafe.Pointer {
	return unsafe.Pointer(s.p)
}

// Calls returns how often Shifted was called with this Shift.
func (s *Shift) Calls() int {
	return int(s.p.calls)
}

// Free releases the C memory.
func (s *Shift) Free() {
	C.free(unsafe.Pointer(s.p.center))
	C.free(unsafe.Pointer(s.p))
	s.p = nil
}

// Doubles copies values into a C buffer. Release it with FreeBuffer.
func Doubles(values ...float64) unsafe.Pointer {
	p := C.calloc(C.size_t(len(values)), C.sizeof_double)
	copy(unsafe.Slice((*float64)(p), len(values)), values)
	return p
}

// Fill returns a C buffer of n copies of v.
func Fill(n int, v float64) unsafe.Pointer {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return Doubles(values...)
}

// Identity returns a C buffer holding the n×n identity, row-major.
func Identity(n int) unsafe.Pointer {
	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		values[i*n+i] = 1
	}
	return Doubles(values...)
}

// FreeBuffer releases a buffer from Doubles, Fill, Identity or NewResult.
func FreeBuffer(p unsafe.Pointer) {
	C.free(p)
}

// NewResult returns zeroed C storage for one mcs_result, standing in for
// a caller's stack variable.
func NewResult() unsafe.Pointer {
	return C.calloc(1, C.sizeof_mcs_result)
}

// CopyResult copies the mcs_result at src into new C storage, as a caller
// copying a returned struct would.
func CopyResult(src unsafe.Pointer) unsafe.Pointer {
	dst := NewResult()
	*(*C.mcs_result)(dst) = *(*C.mcs_result)(src)
	return dst
}
