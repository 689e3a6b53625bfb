//go:build cgo

package capi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include <stdlib.h>
#include "mcs_types.h"

static inline double *mcs_alloc_doubles(size_t count) {
    return (double *)calloc(count, sizeof(double));
}

static inline mcs_result *mcs_alloc_result(void) {
    return (mcs_result *)calloc(1, sizeof(mcs_result));
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/cwbudde/mcsbridge/internal/bridge"
)

// allocDoubles copies src into a new C buffer. Empty input yields NULL.
func allocDoubles(src []float64) (*C.double, error) {
	if len(src) == 0 {
		return nil, nil
	}
	p := C.mcs_alloc_doubles(C.size_t(len(src)))
	if p == nil {
		return nil, fmt.Errorf("%w: %d doubles", ErrAlloc, len(src))
	}
	copy(unsafe.Slice((*float64)(unsafe.Pointer(p)), len(src)), src)
	return p, nil
}

// newStruct allocates a zeroed heap result struct.
func (r *registry) newStruct() (*C.mcs_result, error) {
	p := C.mcs_alloc_result()
	if p == nil {
		return nil, fmt.Errorf("%w: result struct", ErrAlloc)
	}
	r.mu.Lock()
	r.structs[uintptr(unsafe.Pointer(p))] = struct{}{}
	r.mu.Unlock()
	return p, nil
}

// export copies flat into C memory, registers the buffers and fills dst.
func (r *registry) export(flat *bridge.Flat, dst *C.mcs_result) error {
	xbest, err := allocDoubles(flat.BestPoint)
	if err != nil {
		return err
	}
	xmin, err := allocDoubles(flat.MinimaPoints)
	if err != nil {
		C.free(unsafe.Pointer(xbest))
		return err
	}
	fmi, err := allocDoubles(flat.MinimaValues)
	if err != nil {
		C.free(unsafe.Pointer(xbest))
		C.free(unsafe.Pointer(xmin))
		return err
	}

	const doubleSize = int64(C.sizeof_double)
	h := r.register(&allocation{
		n:     flat.N,
		xbest: unsafe.Pointer(xbest),
		xmin:  unsafe.Pointer(xmin),
		fmi:   unsafe.Pointer(fmi),
		bytes: doubleSize * int64(len(flat.BestPoint)+len(flat.MinimaPoints)+len(flat.MinimaValues)),
	})

	*dst = C.mcs_result{
		xbest:     xbest,
		fbest:     C.double(flat.BestValue),
		xmin:      xmin,
		xmin_size: C.size_t(len(flat.MinimaPoints)),
		fmi:       fmi,
		fmi_size:  C.size_t(len(flat.MinimaValues)),
		ncall:     C.size_t(flat.NCall),
		ncloc:     C.size_t(flat.NCloc),
		flag:      C.mcs_exit_flag(flat.Flag),
		status:    C.int32_t(StatusOK),
		n:         C.size_t(flat.N),
		handle:    C.uint64_t(h),
	}
	return nil
}

// ResultView is a Go copy of a C result.
type ResultView struct {
	BestPoint    []float64
	BestValue    float64
	MinimaPoints []float64
	MinimaValues []float64
	NCall        int
	NCloc        int
	Flag         bridge.ExitCode
	Status       Status
	N            int
	Handle       uint64
}

// View copies the result at p. Released buffers show up as nil slices.
func View(p unsafe.Pointer) ResultView {
	res := (*C.mcs_result)(p)
	v := ResultView{
		BestValue: float64(res.fbest),
		NCall:     int(res.ncall),
		NCloc:     int(res.ncloc),
		Flag:      bridge.ExitCode(res.flag),
		Status:    Status(res.status),
		N:         int(res.n),
		Handle:    uint64(res.handle),
	}
	v.BestPoint = copyDoubles(res.xbest, int(res.n))
	v.MinimaPoints = copyDoubles(res.xmin, int(res.xmin_size))
	v.MinimaValues = copyDoubles(res.fmi, int(res.fmi_size))
	return v
}

func copyDoubles(p *C.double, n int) []float64 {
	if p == nil || n == 0 {
		return nil
	}
	return append([]float64(nil), unsafe.Slice((*float64)(unsafe.Pointer(p)), n)...)
}
