//go:build cgo

// Package capi adapts C callers to the dispatcher: it turns C function
// pointers into objectives, copies results into C memory and checks every
// release of that memory.
package capi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "mcs_types.h"
*/
import "C"

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/cwbudde/mcsbridge/internal/bridge"
	"github.com/cwbudde/mcsbridge/internal/callback"
)

// Input holds the run arguments as received from C. Lower and Upper point
// to N doubles, Hessian to N*N doubles or NULL.
type Input struct {
	Lower   unsafe.Pointer
	Upper   unsafe.Pointer
	Hessian unsafe.Pointer

	MaxSweeps int
	MaxEvals  int
	Local     int
	Gamma     float64

	SMax int
	N    int
}

// Bridge serves the C entry points of one process.
type Bridge struct {
	dispatcher *bridge.Dispatcher
	results    *registry
	slot       callback.Slot[C.mcs_objective]
}

// New creates a Bridge around d.
func New(d *bridge.Dispatcher) *Bridge {
	return &Bridge{
		dispatcher: d,
		results:    newRegistry(),
	}
}

// request checks in and views its C buffers as slices. The dispatcher
// copies them before the run starts.
func (b *Bridge) request(in Input) (bridge.Request, error) {
	if !b.dispatcher.Supports(in.SMax, in.N) {
		return bridge.Request{}, &bridge.UnsupportedConfigError{SMax: in.SMax, N: in.N}
	}
	if in.Lower == nil || in.Upper == nil {
		return bridge.Request{}, fmt.Errorf("%w: bounds", ErrNullPointer)
	}
	if in.MaxSweeps < 0 || in.MaxEvals < 0 || in.Local < 0 {
		return bridge.Request{}, fmt.Errorf("%w: negative limit", bridge.ErrInvalidInput)
	}

	n := in.N
	req := bridge.Request{
		Lower:     unsafe.Slice((*float64)(in.Lower), n),
		Upper:     unsafe.Slice((*float64)(in.Upper), n),
		MaxSweeps: in.MaxSweeps,
		MaxEvals:  in.MaxEvals,
		Local:     in.Local,
		Gamma:     in.Gamma,
		SMax:      in.SMax,
		N:         n,
	}
	if in.Hessian != nil {
		req.Hessian = unsafe.Slice((*float64)(in.Hessian), n*n)
	}
	return req, nil
}

// Run optimizes with fn bound to userData and returns a heap mcs_result
// owned by the caller. fn is an mcs_objective_ctx. Concurrent calls are safe.
func (b *Bridge) Run(fn, userData unsafe.Pointer, in Input) (unsafe.Pointer, error) {
	req, err := b.request(in)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: objective", ErrNullPointer)
	}
	req.Objective = closureObjective(C.mcs_objective_ctx(fn), userData)

	flat, err := b.dispatcher.Run(req)
	if err != nil {
		return nil, err
	}

	res, err := b.results.newStruct()
	if err != nil {
		return nil, err
	}
	if err := b.results.export(flat, res); err != nil {
		b.results.dropStruct(res)
		return nil, err
	}
	return unsafe.Pointer(res), nil
}

// RunLegacy optimizes through the process-wide callback slot and writes the
// result into the mcs_result at out. fn is an mcs_objective. On error the
// result is zeroed and carries the status code; the error is returned too.
func (b *Bridge) RunLegacy(fn unsafe.Pointer, in Input, out unsafe.Pointer) error {
	if out == nil {
		return fmt.Errorf("%w: result", ErrNullPointer)
	}
	dst := (*C.mcs_result)(out)
	err := b.runLegacy(fn, in, dst)
	if err != nil {
		*dst = C.mcs_result{status: C.int32_t(StatusOf(err))}
	}
	return err
}

func (b *Bridge) runLegacy(fn unsafe.Pointer, in Input, dst *C.mcs_result) error {
	req, err := b.request(in)
	if err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: objective", ErrNullPointer)
	}

	release, err := b.slot.Bind(C.mcs_objective(fn))
	if err != nil {
		slog.Warn("Rejected concurrent legacy run", "n", in.N, "error", err)
		return err
	}
	defer release()

	req.Objective = b.slotObjective
	flat, err := b.dispatcher.Run(req)
	if err != nil {
		return err
	}
	return b.results.export(flat, dst)
}

// Free releases the buffers of the result at p, built for dimension n.
func (b *Bridge) Free(p unsafe.Pointer, n int) error {
	if p == nil {
		return nil
	}
	if !b.dispatcher.SupportsDimension(n) {
		return &bridge.UnsupportedConfigError{N: n}
	}
	return b.results.release((*C.mcs_result)(p), n)
}

// Destroy releases the buffers of a result returned by Run, then the result
// itself.
func (b *Bridge) Destroy(p unsafe.Pointer, n int) error {
	if p == nil {
		return nil
	}
	if !b.dispatcher.SupportsDimension(n) {
		return &bridge.UnsupportedConfigError{N: n}
	}
	return b.results.destroy(p, n)
}

// Live returns the allocation accounting.
func (b *Bridge) Live() Stats {
	return b.results.stats()
}
