//go:build cgo

package capi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include <stdlib.h>
#include "mcs_types.h"
*/
import "C"

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"
)

// Stats reports allocation accounting for results handed to callers.
type Stats struct {
	// Results counts results whose buffers are still held.
	Results int
	// Structs counts heap result structs not yet destroyed.
	Structs int
	// Bytes is the size of all held buffers.
	Bytes int64
}

// allocation records the buffers behind one handle.
type allocation struct {
	n     int
	xbest unsafe.Pointer
	xmin  unsafe.Pointer
	fmi   unsafe.Pointer
	bytes int64
}

// registry tracks every live result. Handles start at 1; a zero handle marks
// a struct that never owned buffers.
type registry struct {
	mu      sync.Mutex
	next    uint64
	allocs  map[uint64]*allocation
	structs map[uintptr]struct{}
	bytes   int64
}

func newRegistry() *registry {
	return &registry{
		allocs:  make(map[uint64]*allocation),
		structs: make(map[uintptr]struct{}),
	}
}

// register records the buffers written into res and returns their handle.
func (r *registry) register(a *allocation) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.allocs[r.next] = a
	r.bytes += a.bytes
	return r.next
}

// dropStruct frees a heap struct that was never handed out.
func (r *registry) dropStruct(p *C.mcs_result) {
	r.mu.Lock()
	delete(r.structs, uintptr(unsafe.Pointer(p)))
	r.mu.Unlock()
	C.free(unsafe.Pointer(p))
}

// release frees the buffers of res after checking that they are live and
// were built for dimension n.
func (r *registry) release(res *C.mcs_result, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releaseLocked(res, n)
}

func (r *registry) releaseLocked(res *C.mcs_result, n int) error {
	h := uint64(res.handle)
	if h == 0 {
		if res.xbest == nil && res.xmin == nil && res.fmi == nil {
			// Error results carry no buffers.
			return nil
		}
		return fmt.Errorf("%w: buffers without a handle", ErrUnknownResult)
	}

	a, ok := r.allocs[h]
	if !ok {
		return fmt.Errorf("%w: handle %d", ErrUnknownResult, h)
	}
	if a.n != n {
		return &DimensionMismatchError{Want: a.n, Got: n}
	}
	if a.xbest != unsafe.Pointer(res.xbest) || a.xmin != unsafe.Pointer(res.xmin) || a.fmi != unsafe.Pointer(res.fmi) {
		return fmt.Errorf("%w: handle %d does not match its buffers", ErrUnknownResult, h)
	}

	C.free(a.xbest)
	C.free(a.xmin)
	C.free(a.fmi)
	delete(r.allocs, h)
	r.bytes -= a.bytes

	// The handle stays so a second release is reported.
	res.xbest = nil
	res.xmin = nil
	res.xmin_size = 0
	res.fmi = nil
	res.fmi_size = 0

	slog.Debug("Released result buffers", "handle", h, "n", n, "bytes", a.bytes)
	return nil
}

// destroy releases the buffers of a heap struct, if still held, and the
// struct itself. p is not dereferenced unless it is a live heap struct.
func (r *registry) destroy(p unsafe.Pointer, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := uintptr(p)
	if _, ok := r.structs[key]; !ok {
		return fmt.Errorf("%w: %p is not a live result struct", ErrUnknownResult, p)
	}

	res := (*C.mcs_result)(p)
	if int(res.n) != n {
		return &DimensionMismatchError{Want: int(res.n), Got: n}
	}
	if _, live := r.allocs[uint64(res.handle)]; live || res.handle == 0 {
		if err := r.releaseLocked(res, n); err != nil {
			return err
		}
	}

	delete(r.structs, key)
	C.free(p)
	slog.Debug("Destroyed result", "n", n)
	return nil
}

func (r *registry) stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Results: len(r.allocs),
		Structs: len(r.structs),
		Bytes:   r.bytes,
	}
}
