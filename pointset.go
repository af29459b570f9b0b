package wsp

import (
	"fmt"
	"reflect"
)

// PointSet holds a candidate point cloud and the per-point selection status.
// Points are stored in a flat row-major array; the number of points and the
// dimensionality are fixed at construction. All points start active and are
// only ever flipped to eliminated by a selection pass. Reset reactivates
// everything for the next trial.
//
// A PointSet is not safe for concurrent use: Select and AdaptiveSearch
// require exclusive ownership for their whole run.
type PointSet struct {
	data    []float64 // flat row-major point data (n * dims)
	n       int
	dims    int
	active  []bool
	nActive int

	// Optional pairwise distance cache (n*n, row-major) filled by
	// PrecomputeDistances. minDist/maxDist are the observed off-diagonal
	// extremes, valid only while distMatrix is non-nil.
	distMatrix  []float64
	minDist     float64
	maxDist     float64
	cacheMetric DistanceMetric
}

// New creates a PointSet from a slice of coordinate vectors.
// All vectors must share the same non-zero dimensionality and the set must
// not be empty. The input is copied; the caller keeps ownership of points.
func New(points [][]float64) (*PointSet, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("wsp: point set must not be empty")
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, fmt.Errorf("wsp: points must have at least one dimension")
	}
	data := make([]float64, n*dims)
	for i, row := range points {
		if len(row) != dims {
			return nil, fmt.Errorf("wsp: point %d has dimension %d, want %d", i, len(row), dims)
		}
		copy(data[i*dims:], row)
	}
	return newFromOwnedFlat(data, n, dims), nil
}

// FromFlat creates a PointSet from flat row-major data with n points of
// dimensionality dims. The data is copied.
func FromFlat(data []float64, n, dims int) (*PointSet, error) {
	if n <= 0 || dims <= 0 {
		return nil, fmt.Errorf("wsp: need n > 0 and dims > 0, got n=%d dims=%d", n, dims)
	}
	if len(data) != n*dims {
		return nil, fmt.Errorf("wsp: data length %d does not match n*dims = %d", len(data), n*dims)
	}
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	return newFromOwnedFlat(dataCopy, n, dims), nil
}

func newFromOwnedFlat(data []float64, n, dims int) *PointSet {
	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	return &PointSet{
		data:    data,
		n:       n,
		dims:    dims,
		active:  active,
		nActive: n,
	}
}

// Len returns the total number of points, active or not.
func (p *PointSet) Len() int { return p.n }

// Dims returns the dimensionality of each point.
func (p *PointSet) Dims() int { return p.dims }

// Point returns the coordinates of point i as a view into the internal
// buffer. The caller must not modify it.
func (p *PointSet) Point(i int) []float64 {
	return p.data[i*p.dims : (i+1)*p.dims]
}

// Active reports whether point i is still in the design.
func (p *PointSet) Active(i int) bool { return p.active[i] }

// ActiveCount returns the number of points currently active.
func (p *PointSet) ActiveCount() int { return p.nActive }

// ActiveIndices returns the indices of active points in ascending order.
func (p *PointSet) ActiveIndices() []int {
	out := make([]int, 0, p.nActive)
	for i := 0; i < p.n; i++ {
		if p.active[i] {
			out = append(out, i)
		}
	}
	return out
}

// Retained returns copies of the active points in their original relative
// order.
func (p *PointSet) Retained() [][]float64 {
	out := make([][]float64, 0, p.nActive)
	for i := 0; i < p.n; i++ {
		if p.active[i] {
			row := make([]float64, p.dims)
			copy(row, p.Point(i))
			out = append(out, row)
		}
	}
	return out
}

// Reset reactivates every point. The distance cache, which only depends on
// the coordinates, survives resets.
func (p *PointSet) Reset() {
	for i := range p.active {
		p.active[i] = true
	}
	p.nActive = p.n
}

// eliminate flips point i from active to eliminated.
// Must not be called on an already eliminated point.
func (p *PointSet) eliminate(i int) {
	p.active[i] = false
	p.nActive--
}

// PrecomputeDistances fills the pairwise distance cache for the given metric
// and records the observed off-diagonal minimum and maximum. Subsequent
// Select calls with the same metric read distances from the cache, which pays
// off when the adaptive search re-runs the selection many times.
// workers controls parallel matrix construction; <= 1 means sequential.
func (p *PointSet) PrecomputeDistances(metric DistanceMetric, workers int) {
	if p.distMatrix != nil && sameMetric(p.cacheMetric, metric) {
		return
	}
	p.distMatrix, p.minDist, p.maxDist = computePairwiseDistances(p.data, p.n, p.dims, metric, workers)
	p.cacheMetric = metric
}

// DistanceBounds returns the observed minimum and maximum pairwise distance
// for the given metric, computing the distance cache if needed.
// For a single-point set both bounds are zero.
func (p *PointSet) DistanceBounds(metric DistanceMetric, workers int) (lo, hi float64) {
	if p.n < 2 {
		return 0, 0
	}
	p.PrecomputeDistances(metric, workers)
	return p.minDist, p.maxDist
}

// dist returns the distance between points i and j, served from the cache
// when it was built with the same metric.
func (p *PointSet) dist(metric DistanceMetric, i, j int) float64 {
	if p.distMatrix != nil && sameMetric(p.cacheMetric, metric) {
		return p.distMatrix[i*p.n+j]
	}
	return metric.Distance(p.Point(i), p.Point(j))
}

// sameMetric reports whether two metrics are the same comparable value.
// Non-comparable metrics (e.g. DistanceFunc) never match, so the cache is
// simply bypassed for them.
func sameMetric(a, b DistanceMetric) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
