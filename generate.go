package wsp

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// UniformRandom generates n candidate points of dimensionality dims, each
// coordinate sampled uniformly from [0, 1). The same seed always produces
// the same cloud, and the ordering is stable, so selection results are
// reproducible.
func UniformRandom(n, dims int, seed uint64) [][]float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, 0)}

	points := make([][]float64, n)
	for i := range points {
		row := make([]float64, dims)
		for j := range row {
			row[j] = u.Rand()
		}
		points[i] = row
	}
	return points
}

// NewRandom creates a PointSet of n uniform-random points in [0, 1)^dims.
func NewRandom(n, dims int, seed uint64) (*PointSet, error) {
	return New(UniformRandom(n, dims, seed))
}
