package wsp

import (
	"math"
	"sync"
)

// computePairwiseDistances computes the full n×n distance matrix along with
// the observed off-diagonal minimum and maximum. data is flat row-major with
// n rows and dims columns. workers controls the degree of parallelism; if
// <= 1 the computation is single-threaded.
//
// The parallel result is bitwise identical to the sequential one: rows are
// split into contiguous ranges, each worker computes dist(i,j) for all j > i
// in its range, and writes never overlap.
func computePairwiseDistances(data []float64, n, dims int, metric DistanceMetric, workers int) (matrix []float64, minDist, maxDist float64) {
	matrix = make([]float64, n*n)
	minDist = math.Inf(1)
	maxDist = 0

	if n < 2 {
		return matrix, 0, 0
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
				matrix[i*n+j] = d
				matrix[j*n+i] = d
				if d < minDist {
					minDist = d
				}
				if d > maxDist {
					maxDist = d
				}
			}
		}
		return matrix, minDist, maxDist
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers

	localMin := make([]float64, workers)
	localMax := make([]float64, workers)

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			localMin[w] = math.Inf(1)
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			lo, hi := math.Inf(1), 0.0
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
					matrix[i*n+j] = d
					matrix[j*n+i] = d
					if d < lo {
						lo = d
					}
					if d > hi {
						hi = d
					}
				}
			}
			localMin[w] = lo
			localMax[w] = hi
		}(w, startRow, endRow)
	}

	wg.Wait()

	for w := 0; w < workers; w++ {
		if localMin[w] < minDist {
			minDist = localMin[w]
		}
		if localMax[w] > maxDist {
			maxDist = localMax[w]
		}
	}
	return matrix, minDist, maxDist
}
