package wsp

import (
	"math"
	"sort"
)

// kdTree is a KD-tree spatial index used for fixed-radius elimination
// queries. Points are stored in a flat row-major array and reordered
// internally via an index permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type kdTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []nodeData // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
}

// nodeData describes a single node in the tree.
type nodeData struct {
	idxStart, idxEnd int
	isLeaf           bool
}

// newKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// The data slice is referenced, not copied; the tree only permutes its
// own index array.
func newKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *kdTree {
	if leafSize < 1 {
		leafSize = 1
	}

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	// Pre-allocate tree arrays. A complete binary tree with n leaves of
	// size leafSize needs at most 2*ceil(n/leafSize) nodes, but we use a
	// generous upper bound since the median split may not be perfectly balanced.
	maxNodes := kdMaxNodes(n, leafSize)

	t := &kdTree{
		data:          data,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]nodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
	}

	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *kdTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with a good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, nodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = nodeData{idxStart: start, idxEnd: end, isLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = nodeData{idxStart: start, idxEnd: end, isLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *kdTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension.
func (t *kdTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

// queryRadius appends to out the original indices of all points strictly
// closer than radius to query, and returns the extended slice. The order of
// results is unspecified. Points at exactly radius are not included, matching
// the strict-inequality elimination rule.
func (t *kdTree) queryRadius(query []float64, radius float64, out []int) []int {
	if t.n == 0 {
		return out
	}
	return t.radiusSearch(0, query, t.metric.DistToRdist(radius), out)
}

// radiusSearch walks the tree, pruning nodes whose bounding box cannot
// contain a point strictly inside the radius. rdistBound is the radius in
// reduced-distance space.
func (t *kdTree) radiusSearch(nodeID int, query []float64, rdistBound float64, out []int) []int {
	if nodeID >= len(t.nodes) {
		return out
	}
	node := t.nodes[nodeID]
	if node.idxStart == node.idxEnd && nodeID != 0 {
		return out // uninitialized node
	}

	// Prune: lower bound on the distance to any point in this node is
	// already >= radius, so nothing inside can be strictly closer.
	if t.minRdistPoint(nodeID, query) >= rdistBound {
		return out
	}

	if node.isLeaf {
		// Compare in reduced-distance space: DistToRdist is strictly
		// increasing for the supported metrics, so strictness is preserved
		// and Euclidean skips the sqrt per point.
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			if t.metric.ReducedDistance(query, pt) < rdistBound {
				out = append(out, ptIdx)
			}
		}
		return out
	}

	out = t.radiusSearch(2*nodeID+1, query, rdistBound, out)
	out = t.radiusSearch(2*nodeID+2, query, rdistBound, out)
	return out
}

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between a point and any point in the given node, computed from
// the node's axis-aligned bounding box.
func (t *kdTree) minRdistPoint(nodeID int, point []float64) float64 {
	dims := t.dims
	base := nodeID * dims

	switch m := t.metric.(type) {
	case ChebyshevMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			d := t.boxGap(base, j, point[j])
			if d > rdist {
				rdist = d
			}
		}
		return rdist

	case MinkowskiMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			rdist += math.Pow(t.boxGap(base, j, point[j]), m.P)
		}
		return rdist

	default:
		// Euclidean and Manhattan decompose along axes:
		// sum of squared per-dim gaps, resp. sum of per-dim gaps.
		var rdist float64
		p := metricP(t.metric)
		for j := 0; j < dims; j++ {
			rdist += math.Pow(t.boxGap(base, j, point[j]), p)
		}
		return rdist
	}
}

// boxGap returns the distance from coordinate v to the node's bounding
// interval along dimension j, or 0 if v lies inside it.
func (t *kdTree) boxGap(base, j int, v float64) float64 {
	lo := t.nodeBoundsMin[base+j]
	hi := t.nodeBoundsMax[base+j]
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}
