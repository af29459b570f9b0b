package wsp

import (
	"errors"
	"math"
	"testing"
)

func collinear(n int) [][]float64 {
	points := make([][]float64, n)
	for i := range points {
		points[i] = []float64{float64(i)}
	}
	return points
}

func TestAdaptiveSearch_ExactTarget(t *testing.T) {
	// Five collinear points 0..4. A distance in (1, 2] retains {0, 2, 4},
	// so target 3 is exactly reachable.
	ps := mustPointSet(t, collinear(5))
	result, err := AdaptiveSearch(ps, 3, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Exact {
		t.Error("target 3 is exactly reachable, expected Exact")
	}
	if result.RetainedCount != 3 {
		t.Errorf("retained %d, want 3", result.RetainedCount)
	}
	if ps.ActiveCount() != 3 {
		t.Errorf("point set left with %d active, want 3", ps.ActiveCount())
	}
	assertMinDistance(t, ps, ManhattanMetric{}, result.BestDMin)
}

func TestAdaptiveSearch_SingleSurvivor(t *testing.T) {
	// Target 1 needs a distance above the full spread (4).
	ps := mustPointSet(t, collinear(5))
	result, err := AdaptiveSearch(ps, 1, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RetainedCount != 1 {
		t.Errorf("retained %d, want 1", result.RetainedCount)
	}
	if !ps.Active(0) {
		t.Error("the first point should be the survivor")
	}
	if result.BestDMin <= 4 {
		t.Errorf("best distance %v should exceed the full spread 4", result.BestDMin)
	}
}

func TestAdaptiveSearch_TargetEqualsN(t *testing.T) {
	// A distance at or below the minimum pairwise gap keeps everything.
	ps := mustPointSet(t, collinear(5))
	result, err := AdaptiveSearch(ps, 5, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Exact || result.RetainedCount != 5 {
		t.Errorf("got exact=%v count=%d, want exact count 5", result.Exact, result.RetainedCount)
	}
}

func TestAdaptiveSearch_BestEffort(t *testing.T) {
	// On 0..4 the achievable counts are 5, 3, 2, 1; target 4 is not among
	// them, so the search must settle on a neighboring count (3 or 5,
	// both one off) with the earlier trial winning the tie.
	ps := mustPointSet(t, collinear(5))
	result, err := AdaptiveSearch(ps, 4, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Exact {
		t.Error("target 4 is not exactly reachable")
	}
	if diff := abs(result.RetainedCount - 4); diff != 1 {
		t.Errorf("best diff = %d, want 1", diff)
	}
	if ps.ActiveCount() != result.RetainedCount {
		t.Errorf("status count %d does not match result %d", ps.ActiveCount(), result.RetainedCount)
	}

	// Re-running the returned distance independently reproduces the set.
	redo := mustPointSet(t, collinear(5))
	if err := Select(redo, result.BestDMin, bruteConfig()); err != nil {
		t.Fatalf("re-select: %v", err)
	}
	assertSameStatus(t, ps, redo)
}

func TestAdaptiveSearch_BestTrialWinsOverLaterWorse(t *testing.T) {
	// After interval collapse the status must reflect the best trial, not
	// the last one. Check the invariants that hold regardless of which
	// distance wins: status matches the reported count and the reported
	// distance reproduces it.
	ps := mustPointSet(t, randomCloud(300, 8, 23))
	result, err := AdaptiveSearch(ps, 40, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != result.RetainedCount {
		t.Errorf("status count %d != result count %d", ps.ActiveCount(), result.RetainedCount)
	}
	assertMinDistance(t, ps, ManhattanMetric{}, result.BestDMin)

	best := math.MaxInt
	for _, it := range result.Iterations {
		if d := abs(it.Count - 40); d < best {
			best = d
		}
	}
	if abs(result.RetainedCount-40) != best {
		t.Errorf("result diff %d is worse than best explored diff %d", abs(result.RetainedCount-40), best)
	}
}

func TestAdaptiveSearch_IterationLog(t *testing.T) {
	ps := mustPointSet(t, randomCloud(100, 3, 2))

	var seen []Iteration
	cfg := bruteConfig()
	cfg.OnIteration = func(it Iteration) { seen = append(seen, it) }

	result, err := AdaptiveSearch(ps, 20, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Iterations) == 0 {
		t.Fatal("expected a non-empty iteration log")
	}
	if len(seen) != len(result.Iterations) {
		t.Fatalf("callback saw %d iterations, log has %d", len(seen), len(result.Iterations))
	}
	for i, it := range result.Iterations {
		if it.Index != i+1 {
			t.Errorf("iteration %d has index %d", i, it.Index)
		}
		if it != seen[i] {
			t.Errorf("callback entry %d differs from log", i)
		}
	}
	if len(result.Iterations) > 64 {
		t.Errorf("iteration count %d exceeds default MaxIterations", len(result.Iterations))
	}
}

func TestAdaptiveSearch_InvalidTarget(t *testing.T) {
	ps := mustPointSet(t, collinear(5))
	if _, err := AdaptiveSearch(ps, 0, bruteConfig()); err == nil {
		t.Error("expected error for target 0")
	}
	if _, err := AdaptiveSearch(ps, 6, bruteConfig()); err == nil {
		t.Error("expected error for target > n")
	}
	if _, err := AdaptiveSearch(nil, 1, bruteConfig()); err == nil {
		t.Error("expected error for nil PointSet")
	}
}

func TestAdaptiveSearch_UnreachableTarget(t *testing.T) {
	// A metric emitting NaN defeats elimination entirely: every trial
	// retains all points, so the upper bracket check must fail.
	ps := mustPointSet(t, collinear(5))
	cfg := bruteConfig()
	cfg.Metric = DistanceFunc(func(a, b []float64) float64 { return math.NaN() })

	_, err := AdaptiveSearch(ps, 2, cfg)
	if !errors.Is(err, ErrTargetUnreachable) {
		t.Errorf("expected ErrTargetUnreachable, got %v", err)
	}
}

func TestAdaptiveSearch_SinglePoint(t *testing.T) {
	ps := mustPointSet(t, [][]float64{{7, 7}})
	result, err := AdaptiveSearch(ps, 1, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Exact || result.RetainedCount != 1 {
		t.Errorf("got exact=%v count=%d, want exact count 1", result.Exact, result.RetainedCount)
	}
}

func TestAdaptiveSearch_IdenticalPointsApproximate(t *testing.T) {
	// All-identical points can only yield n (at d=0) or 1 (any positive
	// distance). Target 3 is two off either way; the upper-bracket trial
	// runs first and keeps the tie, so the result is a count of 1.
	points := make([][]float64, 5)
	for i := range points {
		points[i] = []float64{2, 2}
	}
	ps := mustPointSet(t, points)

	result, err := AdaptiveSearch(ps, 3, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Exact {
		t.Error("target 3 cannot be exact on identical points")
	}
	if result.RetainedCount != 1 {
		t.Errorf("retained %d, want 1", result.RetainedCount)
	}
}

func TestAdaptiveSearch_ExactOnlyAtZeroDistance(t *testing.T) {
	// With coincident points any positive distance eliminates a duplicate,
	// so keeping all five is only possible at distance zero. The lower
	// bracket endpoint must be trialed for this to come back exact.
	ps := mustPointSet(t, [][]float64{{0}, {0}, {1}, {2}, {3}})
	result, err := AdaptiveSearch(ps, 5, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Exact || result.RetainedCount != 5 {
		t.Errorf("got exact=%v count=%d, want exact count 5", result.Exact, result.RetainedCount)
	}
	if result.BestDMin != 0 {
		t.Errorf("best distance %v, want 0", result.BestDMin)
	}
	if ps.ActiveCount() != 5 {
		t.Errorf("point set left with %d active, want 5", ps.ActiveCount())
	}
}

func TestAdaptiveSearch_KDTreeMatchesBrute(t *testing.T) {
	points := randomCloud(400, 3, 31)

	brute := mustPointSet(t, points)
	resB, err := AdaptiveSearch(brute, 60, bruteConfig())
	if err != nil {
		t.Fatalf("brute: %v", err)
	}

	tree := mustPointSet(t, points)
	cfgT := DefaultConfig()
	cfgT.Algorithm = AlgorithmKDTree
	cfgT.Workers = 1
	resT, err := AdaptiveSearch(tree, 60, cfgT)
	if err != nil {
		t.Fatalf("kdtree: %v", err)
	}

	if resB.BestDMin != resT.BestDMin {
		t.Errorf("best distances differ: %v vs %v", resB.BestDMin, resT.BestDMin)
	}
	assertSameStatus(t, brute, tree)
}

func TestAdaptiveSearch_DiscardsPriorState(t *testing.T) {
	ps := mustPointSet(t, collinear(5))
	if err := Select(ps, 10, bruteConfig()); err != nil {
		t.Fatalf("pre-select: %v", err)
	}
	if ps.ActiveCount() != 1 {
		t.Fatalf("pre-select should leave 1 active, got %d", ps.ActiveCount())
	}

	result, err := AdaptiveSearch(ps, 3, bruteConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RetainedCount != 3 {
		t.Errorf("retained %d, want 3: prior eliminations must be discarded", result.RetainedCount)
	}
}
