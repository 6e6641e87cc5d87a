package vecmath

// Kernel is the batch compute kernel: it amortizes per-operation
// overhead (query magnitude, dispatch cost) across many stored
// vectors. The CPU implementation is the default; the native
// accelerator (see accelerator.go) is an optional backend chosen
// automatically by SelectBackend for large unfiltered candidate sets.
type Kernel struct {
	accel *accelerator // nil if unavailable; CPU path is always correct
}

// New returns a Kernel that uses the platform accelerator when present
// and falls back to the pure-Go CPU path otherwise.
func New() *Kernel {
	return &Kernel{accel: loadAccelerator()}
}

// Backend names which compute path served a call, for logging/metrics.
type Backend string

const (
	BackendCPU         Backend = "cpu"
	BackendAccelerated Backend = "accelerated"
)

// gpuPreferred is the unfiltered candidate count (10k) at or above
// which the accelerator is preferred; an explicit-filter-narrowed set
// needs twice that (20k).
const gpuPreferred = 10000

// memoryBudgetBytes is the soft ceiling (500MB) past which callers are
// advised to batch their scan, per spec 4.2 "Memory estimate N*dims*4
// over 500MB => caller may batch, still prefer accelerator."
const memoryBudgetBytes = 500 * 1024 * 1024

// SelectBackend decides CPU vs accelerated dispatch for a batch
// operation, given the number of candidate vectors, their
// dimensionality, and whether an explicit metadata filter already
// narrowed the candidate set.
//
// Rules (spec 4.2):
//   - no accelerator available => CPU
//   - filtered candidate set => CPU, unless remaining count >= 2*gpuPreferred (~20k)
//   - unfiltered count < 5k => CPU
//   - unfiltered count 5k-10k => CPU unless dims >= 1024
//   - unfiltered count >= 10k => accelerated
func (k *Kernel) SelectBackend(candidateCount, dims int, filtered bool) Backend {
	if k.accel == nil {
		return BackendCPU
	}
	if filtered {
		if candidateCount >= 2*gpuPreferred {
			return BackendAccelerated
		}
		return BackendCPU
	}
	switch {
	case candidateCount < 5000:
		return BackendCPU
	case candidateCount < gpuPreferred:
		if dims >= 1024 {
			return BackendAccelerated
		}
		return BackendCPU
	default:
		return BackendAccelerated
	}
}

// EstimatedBytes returns the naive memory footprint (N*dims*4) used to
// decide whether a caller should batch a scan.
func EstimatedBytes(candidateCount, dims int) int64 {
	return int64(candidateCount) * int64(dims) * 4
}

// OverMemoryBudget reports whether an unbatched scan of this size
// exceeds the soft 500MB advisory ceiling.
func OverMemoryBudget(candidateCount, dims int) bool {
	return EstimatedBytes(candidateCount, dims) > memoryBudgetBytes
}

// BatchCosine computes cosine similarity between query and every
// stored vector (a flat buffer of candidateCount*dims float32s),
// precomputing the query magnitude once. Returns one score per stored
// vector, 0 for any row whose magnitude is below epsilon.
func (k *Kernel) BatchCosine(query []float32, stored []float32, dims int) []float32 {
	if dims <= 0 || len(stored)%dims != 0 {
		return nil
	}
	n := len(stored) / dims
	scores := make([]float32, n)
	if len(query) != dims {
		return scores
	}

	if k.accel != nil && k.SelectBackend(n, dims, false) == BackendAccelerated {
		if ok := k.accel.batchCosine(query, stored, dims, scores); ok {
			return scores
		}
	}

	queryMag := Magnitude(query)
	if queryMag < epsilon || !allFinite(query) {
		return scores
	}

	for i := 0; i < n; i++ {
		row := stored[i*dims : (i+1)*dims]
		rowMag := Magnitude(row)
		if rowMag < epsilon || !allFinite(row) {
			scores[i] = 0
			continue
		}
		scores[i] = Dot(query, row) / (queryMag * rowMag)
	}
	return scores
}

// PairwiseCosine computes the full A x B cosine similarity matrix as
// len(A) rows of len(B) scores each.
func (k *Kernel) PairwiseCosine(a, b [][]float32) [][]float32 {
	out := make([][]float32, len(a))
	for i, av := range a {
		row := make([]float32, len(b))
		for j, bv := range b {
			row[j] = Cosine(av, bv)
		}
		out[i] = row
	}
	return out
}

// RowMax returns the maximum value of each row of a row-major matrix
// with the given column count.
func RowMax(matrix []float32, rows, cols int) []float32 {
	if cols <= 0 || len(matrix) != rows*cols {
		return nil
	}
	out := make([]float32, rows)
	for r := 0; r < rows; r++ {
		row := matrix[r*cols : (r+1)*cols]
		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}
		out[r] = max
	}
	return out
}

// MMRScores computes lambda*relevance - (1-lambda)*maxSim element-wise
// for equal-length relevance/maxSim slices.
func MMRScores(relevance, maxSim []float32, lambda float64) []float64 {
	n := len(relevance)
	if len(maxSim) != n {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = lambda*float64(relevance[i]) - (1-lambda)*float64(maxSim[i])
	}
	return out
}

// AdjacentCosine computes cosine similarity between each consecutive
// pair of vectors, yielding N-1 scores for N input vectors.
func AdjacentCosine(vectors [][]float32) []float32 {
	if len(vectors) < 2 {
		return nil
	}
	out := make([]float32, len(vectors)-1)
	for i := 0; i < len(vectors)-1; i++ {
		out[i] = Cosine(vectors[i], vectors[i+1])
	}
	return out
}
