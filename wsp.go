package wsp

import (
	"fmt"
	"runtime"
	"sync"
)

// Algorithm selects the elimination strategy used by Select.
type Algorithm string

const (
	AlgorithmAuto   Algorithm = "auto"
	AlgorithmBrute  Algorithm = "brute"
	AlgorithmKDTree Algorithm = "kdtree"
)

// parallelMinSpan is the smallest inner-loop span worth splitting across
// goroutines; below this the spawn overhead dominates.
const parallelMinSpan = 2048

// Config controls selection and adaptive-search behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Metric is the distance function used to compare points.
	// Built-in: ManhattanMetric, EuclideanMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: ManhattanMetric.
	Metric DistanceMetric

	// Algorithm selects the elimination strategy.
	// "auto" picks based on metric and dimensionality.
	// "brute" scans pairwise (and reuses a precomputed distance matrix).
	// "kdtree" eliminates via KD-tree radius queries; only valid for
	// axis-decomposable metrics. Both retain exactly the same points.
	// Default: "auto".
	Algorithm Algorithm

	// LeafSize controls the maximum number of points in a KD-tree leaf node.
	// Only used with AlgorithmKDTree. Default: 40.
	LeafSize int

	// Workers controls the number of goroutines for parallelizable stages
	// (pairwise distance matrix, brute-force inner elimination loop).
	// 0 means use runtime.NumCPU(). Parallel and sequential runs retain
	// exactly the same points. Default: 0 (auto).
	Workers int

	// Epsilon is the relative width below which the adaptive search
	// considers its distance interval collapsed. Default: 1e-12.
	Epsilon float64

	// MaxIterations bounds the number of adaptive-search trials, guarding
	// against pathological floating-point behavior. Default: 64.
	MaxIterations int

	// OnIteration, if set, is called by AdaptiveSearch after every trial
	// with the iteration record. Purely observational.
	OnIteration func(Iteration)
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Metric:        ManhattanMetric{},
		Algorithm:     AlgorithmAuto,
		LeafSize:      40,
		Epsilon:       1e-12,
		MaxIterations: 64,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = ManhattanMetric{}
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1e-12
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 64
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmKDTree:
		// valid
	default:
		return fmt.Errorf("wsp: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("wsp: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("wsp: Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Epsilon <= 0 {
		return fmt.Errorf("wsp: Epsilon must be > 0, got %g", cfg.Epsilon)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("wsp: MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	return nil
}

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectAlgorithm resolves AlgorithmAuto into a concrete algorithm choice
// and validates that a user-forced choice is compatible with the metric.
func selectAlgorithm(cfg Config, ps *PointSet) (Algorithm, error) {
	algo := cfg.Algorithm

	if algo == AlgorithmAuto {
		// A warm distance cache makes brute lookups O(1), so the tree
		// cannot win. Otherwise the tree pays off on larger,
		// lower-dimensional sets.
		if ps.distMatrix != nil && sameMetric(ps.cacheMetric, cfg.Metric) {
			return AlgorithmBrute, nil
		}
		if KDTreeValidMetric(cfg.Metric) && ps.dims <= 20 && ps.n >= 256 {
			return AlgorithmKDTree, nil
		}
		return AlgorithmBrute, nil
	}

	if algo == AlgorithmKDTree && !KDTreeValidMetric(cfg.Metric) {
		return "", fmt.Errorf("wsp: metric %T is not supported by the KD-tree algorithm", cfg.Metric)
	}
	return algo, nil
}

// Select runs one WSP elimination pass over ps with minimal distance dMin,
// flipping active points to eliminated in place. The caller supplies the
// initial status (typically all-active); Select never resets.
//
// The pass visits indices in ascending order. Each still-active point i is
// retained and eliminates every subsequent active point strictly closer than
// dMin, so earlier points are preferentially kept and the result is
// deterministic for a fixed input order. After Select returns, every pair of
// active points is at least dMin apart. Re-running Select on its own output
// with the same dMin eliminates nothing further.
func Select(ps *PointSet, dMin float64, cfg Config) error {
	if ps == nil {
		return fmt.Errorf("wsp: nil PointSet")
	}
	if dMin < 0 {
		return fmt.Errorf("wsp: dMin must be >= 0, got %g", dMin)
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return err
	}

	algo, err := selectAlgorithm(cfg, ps)
	if err != nil {
		return err
	}
	runSelect(ps, dMin, cfg, algo)
	return nil
}

// runSelect dispatches an already validated selection pass.
func runSelect(ps *PointSet, dMin float64, cfg Config, algo Algorithm) {
	if algo == AlgorithmKDTree {
		selectKDTree(ps, dMin, cfg.Metric, cfg.LeafSize)
		return
	}
	selectBrute(ps, dMin, cfg.Metric, cfg.Workers)
}

// selectBrute is the pairwise-scan elimination pass. For each retained i the
// inner j-loop is split into contiguous chunks across workers: each chunk
// reads and writes only its own status slots, so the parallel result is
// identical to the sequential one.
func selectBrute(ps *PointSet, dMin float64, metric DistanceMetric, workers int) {
	n := ps.n
	cached := ps.distMatrix != nil && sameMetric(ps.cacheMetric, metric)

	for i := 0; i < n; i++ {
		if !ps.active[i] {
			continue
		}

		span := n - (i + 1)
		if workers > 1 && span >= parallelMinSpan {
			ps.nActive -= eliminateChunked(ps, dMin, metric, i, workers, cached)
			continue
		}

		pi := ps.Point(i)
		for j := i + 1; j < n; j++ {
			if !ps.active[j] {
				continue
			}
			var d float64
			if cached {
				d = ps.distMatrix[i*n+j]
			} else {
				d = metric.Distance(pi, ps.Point(j))
			}
			if d < dMin {
				ps.eliminate(j)
			}
		}
	}
}

// eliminateChunked runs the inner elimination loop for retained point i in
// parallel and returns the number of points eliminated.
func eliminateChunked(ps *PointSet, dMin float64, metric DistanceMetric, i, workers int, cached bool) int {
	n := ps.n
	start := i + 1
	span := n - start
	perWorker := (span + workers - 1) / workers

	killed := make([]int, workers)
	pi := ps.Point(i)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := start + w*perWorker
		hi := lo + perWorker
		if hi > n {
			hi = n
		}
		if lo >= n {
			break
		}

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			count := 0
			for j := lo; j < hi; j++ {
				if !ps.active[j] {
					continue
				}
				var d float64
				if cached {
					d = ps.distMatrix[i*n+j]
				} else {
					d = metric.Distance(pi, ps.Point(j))
				}
				if d < dMin {
					ps.active[j] = false
					count++
				}
			}
			killed[w] = count
		}(w, lo, hi)
	}
	wg.Wait()

	total := 0
	for _, k := range killed {
		total += k
	}
	return total
}

// selectKDTree is the tree-accelerated elimination pass. For each retained i
// a fixed-radius query collects every active point strictly inside the dMin
// ball around i. Any such point necessarily has a higher index (a lower
// active index inside the ball would have eliminated i on its own turn), so
// eliminating the query results reproduces the sequential pass exactly.
func selectKDTree(ps *PointSet, dMin float64, metric DistanceMetric, leafSize int) {
	tree := newKDTree(ps.data, ps.n, ps.dims, metric, leafSize)
	hits := make([]int, 0, 64)

	for i := 0; i < ps.n; i++ {
		if !ps.active[i] {
			continue
		}
		hits = tree.queryRadius(ps.Point(i), dMin, hits[:0])
		for _, j := range hits {
			if j != i && ps.active[j] {
				ps.eliminate(j)
			}
		}
	}
}
