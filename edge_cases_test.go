package wsp

import "testing"

func TestEdgeCase_SinglePointSelect(t *testing.T) {
	ps := mustPointSet(t, [][]float64{{1, 2}})
	if err := Select(ps, 100, bruteConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != 1 {
		t.Errorf("retained %d, want 1: a lone point has no one to eliminate it", ps.ActiveCount())
	}
}

func TestEdgeCase_TwoPoints(t *testing.T) {
	ps := mustPointSet(t, [][]float64{{0, 0}, {1, 0}})

	if err := Select(ps, 0.5, bruteConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != 2 {
		t.Errorf("dMin below the gap: retained %d, want 2", ps.ActiveCount())
	}

	ps.Reset()
	if err := Select(ps, 1.5, bruteConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != 1 || !ps.Active(0) {
		t.Errorf("dMin above the gap: want only point 0, got %v", ps.ActiveIndices())
	}
}

func TestEdgeCase_BoundaryDistanceIsKept(t *testing.T) {
	// Elimination is strictly-less-than: a pair at exactly dMin survives.
	ps := mustPointSet(t, [][]float64{{0}, {2}})
	if err := Select(ps, 2.0, bruteConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != 2 {
		t.Errorf("pair at exactly dMin: retained %d, want 2", ps.ActiveCount())
	}
}

func TestEdgeCase_AllIdenticalPoints(t *testing.T) {
	points := make([][]float64, 10)
	for i := range points {
		points[i] = []float64{5.0, 5.0}
	}
	ps := mustPointSet(t, points)

	if err := Select(ps, 0.1, bruteConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != 1 || !ps.Active(0) {
		t.Errorf("identical points: want only point 0, got %v", ps.ActiveIndices())
	}
}

func TestEdgeCase_KDTreeOnTinySet(t *testing.T) {
	ps := mustPointSet(t, [][]float64{{0}, {3}})
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmKDTree
	if err := Select(ps, 1, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.ActiveCount() != 2 {
		t.Errorf("retained %d, want 2", ps.ActiveCount())
	}
}

func TestEdgeCase_DuplicateOfEarlierPoint(t *testing.T) {
	// A duplicate is at distance 0 from its twin: any positive dMin
	// eliminates the later copy.
	ps := mustPointSet(t, [][]float64{{1, 1}, {5, 5}, {1, 1}})
	if err := Select(ps, 0.001, bruteConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := ps.ActiveIndices()
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 1 {
		t.Errorf("retained %v, want [0 1]", idx)
	}
}
