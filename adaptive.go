package wsp

import (
	"errors"
	"fmt"
	"math"
)

// ErrTargetUnreachable is returned by AdaptiveSearch when no distance in the
// searched interval can reduce the set to the target count. Use errors.Is to
// detect it.
var ErrTargetUnreachable = errors.New("wsp: target count unreachable within the searched distance interval")

// Iteration is one adaptive-search trial record: the distance tried and the
// retained count it produced.
type Iteration struct {
	Index int
	DMin  float64
	Count int
}

// SearchResult is the outcome of an adaptive search.
type SearchResult struct {
	// BestDMin is the distance whose selection pass best approximated the
	// target count. The PointSet status reflects this pass on return.
	BestDMin float64

	// RetainedCount is the number of active points at BestDMin.
	RetainedCount int

	// Exact reports whether RetainedCount hit the target exactly.
	Exact bool

	// Iterations is the full trial trace in execution order.
	Iterations []Iteration
}

// AdaptiveSearch binary-searches the minimal distance so that a WSP
// selection pass retains approximately target points, leaving ps with the
// status of the best trial found.
//
// The search interval starts at [0, max observed pairwise distance]: at 0
// nothing is eliminated (count = n), and just above the maximum every point
// falls inside the first point's ball (count = 1), so any target in [1, n]
// is bracketed. Both endpoints are trialed before bisecting, so a target
// reachable only at an endpoint is still an exact hit.
// The retained count is non-increasing in dMin, which makes
// bisection sound, but ordering effects make it non-strict at fine
// resolution: when the interval collapses below cfg.Epsilon (relative) or
// cfg.MaxIterations trials without an exact hit, the trial with the smallest
// |count - target| wins (first trial wins ties) and is re-run so the status
// matches it.
//
// AdaptiveSearch owns the status resets between trials; any prior
// elimination state in ps is discarded.
func AdaptiveSearch(ps *PointSet, target int, cfg Config) (*SearchResult, error) {
	if ps == nil {
		return nil, fmt.Errorf("wsp: nil PointSet")
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if target < 1 || target > ps.n {
		return nil, fmt.Errorf("wsp: target count %d outside [1, %d]", target, ps.n)
	}

	// The trials re-run the selection many times over the same coordinates;
	// the cached matrix turns every comparison into a lookup and yields the
	// observed distance bounds for the bracket.
	_, maxDist := ps.DistanceBounds(cfg.Metric, cfg.Workers)

	algo, err := selectAlgorithm(cfg, ps)
	if err != nil {
		return nil, err
	}

	lo := 0.0
	hi := maxDist * (1 + 1e-9)
	if hi <= maxDist {
		// Degenerate cloud (all pairwise distances zero): any positive
		// distance eliminates everything after the first point.
		hi = maxDist + 1
	}

	s := searchState{ps: ps, cfg: cfg, algo: algo, target: target, bestDiff: math.MaxInt}

	// Validate the upper bracket with a real trial. With a well-behaved
	// metric this cannot retain more than one point, but custom
	// DistanceFunc metrics get checked rather than trusted.
	count := s.trial(hi)
	if count > target {
		return nil, fmt.Errorf("%w: count %d at upper bound %g exceeds target %d",
			ErrTargetUnreachable, count, hi, target)
	}
	if count == target {
		return s.result(hi, count, true), nil
	}

	// The lower bracket needs a real trial too: midpoints never reach lo, so
	// a target reachable only at distance zero (coincident points with
	// target = n) would otherwise be missed.
	count = s.trial(lo)
	if count == target {
		return s.result(lo, count, true), nil
	}

	for len(s.log) < cfg.MaxIterations {
		mid := (lo + hi) / 2
		if mid == lo || mid == hi {
			break // distance resolution exhausted
		}

		count = s.trial(mid)
		switch {
		case count == target:
			return s.result(mid, count, true), nil
		case count > target:
			lo = mid
		default:
			hi = mid
		}

		if hi-lo <= cfg.Epsilon*math.Max(1, hi) {
			break
		}
	}

	// The loop left ps at its last (possibly worse) trial. Re-running the
	// best distance reproduces the best trial exactly: the pass is
	// deterministic for a fixed input order.
	ps.Reset()
	runSelect(ps, s.bestDMin, cfg, algo)
	return s.result(s.bestDMin, ps.nActive, false), nil
}

// searchState carries the trial log and best-approximation tracking for one
// adaptive search run.
type searchState struct {
	ps     *PointSet
	cfg    Config
	algo   Algorithm
	target int

	log      []Iteration
	bestDMin float64
	bestDiff int
}

// trial resets the set, runs one selection pass at dMin, records the outcome
// and updates the best-approximation tracking. Earlier trials win ties.
func (s *searchState) trial(dMin float64) int {
	s.ps.Reset()
	runSelect(s.ps, dMin, s.cfg, s.algo)
	count := s.ps.nActive

	it := Iteration{Index: len(s.log) + 1, DMin: dMin, Count: count}
	s.log = append(s.log, it)
	if s.cfg.OnIteration != nil {
		s.cfg.OnIteration(it)
	}

	if diff := abs(count - s.target); diff < s.bestDiff {
		s.bestDiff = diff
		s.bestDMin = dMin
	}
	return count
}

func (s *searchState) result(dMin float64, count int, exact bool) *SearchResult {
	return &SearchResult{
		BestDMin:      dMin,
		RetainedCount: count,
		Exact:         exact,
		Iterations:    s.log,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
