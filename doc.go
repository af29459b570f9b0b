// Package wsp implements the WSP (Wootton, Sergent, Phan-Tan-Luu)
// space-filling design algorithm for subsetting high-dimensional point clouds.
//
// Given a candidate set of points and a minimal distance dMin, WSP greedily
// eliminates points until every pair of retained points is at least dMin
// apart. The surviving subset is a space-filling design in the sense of
// Santiago, Claeys-Bruno & Sergent (2012), "Construction of space-filling
// designs using WSP algorithm for high dimensional spaces", Chemometrics and
// Intelligent Laboratory Systems 113, 26-31.
//
// Basic usage:
//
//	ps, err := wsp.New(points)
//	cfg := wsp.DefaultConfig()
//	err = wsp.Select(ps, 3.0, cfg)
//	// ps.Retained() holds the surviving points, pairwise >= 3.0 apart
//
// When the right dMin is unknown but a target subset size is, the adaptive
// variant binary-searches the distance:
//
//	result, err := wsp.AdaptiveSearch(ps, 100, cfg)
//	// result.BestDMin produced result.RetainedCount active points
//
// The default metric is Manhattan (L1): in high-dimensional spaces L1
// separates points better than L2 due to distance concentration.
//
// # Algorithm selection
//
// By default (Algorithm: "auto"), Select picks an elimination strategy from
// the metric and dimensionality. For axis-decomposable metrics on
// low-dimensional data it uses KD-tree radius queries to locate the points
// inside each dMin ball; otherwise it scans pairwise. Both strategies retain
// exactly the same points. Set Config.Algorithm to force a strategy:
//
//	cfg.Algorithm = wsp.AlgorithmBrute   // pairwise scan
//	cfg.Algorithm = wsp.AlgorithmKDTree  // KD-tree radius elimination
package wsp
