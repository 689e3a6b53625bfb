// Command libmcs is the C shared library exposing the optimizer.
//
//	go build -buildmode=c-shared -o libmcs.so ./cmd/libmcs
//
// The exported functions are declared in include/mcs_bridge.h.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "mcs_types.h"
*/
import "C"

import (
	"log/slog"
	"math"
	"os"
	"sync"
	"unsafe"

	"github.com/cwbudde/mcsbridge/internal/bridge"
	"github.com/cwbudde/mcsbridge/internal/capi"
	"github.com/cwbudde/mcsbridge/internal/config"
	"github.com/cwbudde/mcsbridge/internal/logging"
)

var (
	initOnce sync.Once
	shared   *capi.Bridge
)

// library returns the process-wide bridge, loading $MCSBRIDGE_CONFIG on
// first use. A config that fails to load is logged and replaced by the
// defaults.
func library() *capi.Bridge {
	initOnce.Do(func() {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			logging.Setup("warn", "json", os.Stderr)
			slog.Error("Failed to load config, using defaults", "env", config.EnvVar, "error", err)
			cfg = config.Default()
		} else {
			logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		}

		d, err := cfg.Dispatcher()
		if err != nil {
			slog.Error("Failed to build dispatcher, using defaults", "error", err)
			d, err = config.Default().Dispatcher()
			if err != nil {
				panic(err)
			}
		}

		shared = capi.New(d)
		slog.Info("mcsbridge loaded", "version", config.Version, "engine", cfg.Engine, "shapes", len(d.Shapes()))
	})
	return shared
}

func toInt(v C.size_t) int {
	if uint64(v) > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}

func input(u, v *C.double, nsweeps, nf, local C.size_t, gamma C.double, hess *C.double, smax, n C.size_t) capi.Input {
	return capi.Input{
		Lower:     unsafe.Pointer(u),
		Upper:     unsafe.Pointer(v),
		Hessian:   unsafe.Pointer(hess),
		MaxSweeps: toInt(nsweeps),
		MaxEvals:  toInt(nf),
		Local:     toInt(local),
		Gamma:     float64(gamma),
		SMax:      toInt(smax),
		N:         toInt(n),
	}
}

// recoverStatus turns a panic escaping the bridge into MCS_ERR_OPTIMIZER.
func recoverStatus(status *C.int) {
	if r := recover(); r != nil {
		slog.Error("Recovered panic at C boundary", "panic", r)
		*status = C.int(capi.StatusOptimizer)
	}
}

func logFailure(op string, err error) {
	slog.Warn("Call failed", "op", op, "status", capi.StatusOf(err).String(), "error", err)
}

//export mcs_c
func mcs_c(f C.mcs_objective, u, v *C.double, nsweeps, nf, local C.size_t, gamma C.double, hess *C.double, smax, n C.size_t) (res C.mcs_result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered panic at C boundary", "panic", r)
			res = C.mcs_result{status: C.int32_t(capi.StatusOptimizer)}
		}
	}()

	in := input(u, v, nsweeps, nf, local, gamma, hess, smax, n)
	if err := library().RunLegacy(unsafe.Pointer(f), in, unsafe.Pointer(&res)); err != nil {
		logFailure("mcs_c", err)
	}
	return res
}

//export mcs_run
func mcs_run(f C.mcs_objective_ctx, userData unsafe.Pointer, u, v *C.double, nsweeps, nf, local C.size_t, gamma C.double, hess *C.double, smax, n C.size_t, out **C.mcs_result) (status C.int) {
	defer recoverStatus(&status)

	if out == nil {
		return C.int(capi.StatusNullPointer)
	}
	*out = nil

	in := input(u, v, nsweeps, nf, local, gamma, hess, smax, n)
	p, err := library().Run(unsafe.Pointer(f), userData, in)
	if err != nil {
		logFailure("mcs_run", err)
		return C.int(capi.StatusOf(err))
	}
	*out = (*C.mcs_result)(p)
	return C.int(capi.StatusOK)
}

//export free_mcs_result
func free_mcs_result(r *C.mcs_result, n C.size_t) (status C.int) {
	defer recoverStatus(&status)

	if err := library().Free(unsafe.Pointer(r), toInt(n)); err != nil {
		logFailure("free_mcs_result", err)
		return C.int(capi.StatusOf(err))
	}
	return C.int(capi.StatusOK)
}

//export destroy_mcs_result
func destroy_mcs_result(r *C.mcs_result, n C.size_t) (status C.int) {
	defer recoverStatus(&status)

	if err := library().Destroy(unsafe.Pointer(r), toInt(n)); err != nil {
		logFailure("destroy_mcs_result", err)
		return C.int(capi.StatusOf(err))
	}
	return C.int(capi.StatusOK)
}

//export mcs_status_string
func mcs_status_string(status C.int) *C.char {
	return cstring(capi.Status(status).String())
}

//export mcs_exit_flag_string
func mcs_exit_flag_string(flag C.int) *C.char {
	return cstring(bridge.ExitCode(flag).String())
}

//export mcs_live_results
func mcs_live_results() C.size_t {
	return C.size_t(library().Live().Results)
}

//export mcs_version
func mcs_version() *C.char {
	return cstring(config.Version)
}

var (
	cstringsMu sync.Mutex
	cstrings   = map[string]*C.char{}
)

// cstring returns a C copy of s that lives for the rest of the process.
func cstring(s string) *C.char {
	cstringsMu.Lock()
	defer cstringsMu.Unlock()
	if p, ok := cstrings[s]; ok {
		return p
	}
	p := C.CString(s)
	cstrings[s] = p
	return p
}

func main() {}
