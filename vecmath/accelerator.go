package vecmath

import (
	"log/slog"
	"runtime"

	"github.com/ebitengine/purego"
)

// accelerator wraps a dynamically loaded BLAS-shaped sdot symbol,
// used to offload the per-row dot product of batch cosine scoring to
// native vectorized code. This is the "GPU/accelerator" path spec 4.2
// describes; on platforms or builds where no compatible library can be
// dlopen'd, loadAccelerator returns nil and callers fall back to the
// pure-Go CPU path without error.
//
// The candidate libraries mirror the teacher's own purego usage
// (cmd/purego-test, internal/embed/mlx.go): Accelerate.framework on
// Darwin, libopenblas/libcblas on Linux.
type accelerator struct {
	handle uintptr
	sdot   func(n int32, x *float32, incx int32, y *float32, incy int32) float32
}

var acceleratorLibraryCandidates = map[string][]string{
	"darwin": {"/System/Library/Frameworks/Accelerate.framework/Accelerate"},
	"linux":  {"libopenblas.so.0", "libcblas.so.3", "libblas.so.3"},
}

func loadAccelerator() *accelerator {
	candidates := acceleratorLibraryCandidates[runtime.GOOS]
	if len(candidates) == 0 {
		return nil
	}

	for _, path := range candidates {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			continue
		}

		a := &accelerator{handle: handle}
		// cblas_sdot(int n, const float *x, int incx, const float *y, int incy) -> float
		var sdot func(n int32, x *float32, incx int32, y *float32, incy int32) float32
		if regErr := registerSafely(handle, &sdot, "cblas_sdot"); regErr != nil {
			purego.Dlclose(handle)
			continue
		}
		a.sdot = sdot
		return a
	}

	slog.Debug("vecmath: no native accelerator available, using CPU kernel",
		slog.String("os", runtime.GOOS))
	return nil
}

// registerSafely calls purego.RegisterLibFunc, recovering from the
// panic purego raises when a symbol is missing so a bad candidate
// library degrades to "try the next one" instead of crashing the
// process.
func registerSafely(handle uintptr, fptr interface{}, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errSymbolNotFound
		}
	}()
	purego.RegisterLibFunc(fptr, handle, name)
	return nil
}

var errSymbolNotFound = &acceleratorError{"symbol not found"}

type acceleratorError struct{ msg string }

func (e *acceleratorError) Error() string { return e.msg }

// batchCosine computes cosine similarity for every row of stored
// against query using the native sdot symbol, returning false if the
// accelerator cannot service the request (caller falls back to CPU).
func (a *accelerator) batchCosine(query []float32, stored []float32, dims int, out []float32) bool {
	if a == nil || a.sdot == nil || len(query) != dims || dims == 0 {
		return false
	}

	queryMag := Magnitude(query)
	if queryMag < epsilon || !allFinite(query) {
		return true // all-zero result is correct per spec; handled by caller's defaults
	}

	n := len(stored) / dims
	for i := 0; i < n; i++ {
		row := stored[i*dims : (i+1)*dims]
		if !allFinite(row) {
			out[i] = 0
			continue
		}
		rowMag := Magnitude(row)
		if rowMag < epsilon {
			out[i] = 0
			continue
		}
		dot := a.sdot(int32(dims), &query[0], 1, &row[0], 1)
		out[i] = dot / (queryMag * rowMag)
	}
	return true
}

// Close releases the dynamically loaded library, if any.
func (k *Kernel) Close() error {
	if k.accel != nil && k.accel.handle != 0 {
		purego.Dlclose(k.accel.handle)
	}
	return nil
}
