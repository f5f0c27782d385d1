package opt

import "math/rand"

// SGD is a plain gradient-descent optimizer using central-difference
// numeric gradients, mirroring the original engine's update rule. It
// starts from a random point inside the bounds and clamps every step
// back into them.
type SGD struct {
	maxIters int
	rate     float64
	seed     int64
}

// NewSGD creates a gradient-descent optimizer with the given step
// count and learning rate.
func NewSGD(maxIters int, rate float64, seed int64) Optimizer {
	return &SGD{maxIters: maxIters, rate: rate, seed: seed}
}

const gradEps = 1.0e-6

// Run executes the descent. Returns the best point visited, which for
// a noisy objective need not be the final one.
func (s *SGD) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	rng := rand.New(rand.NewSource(s.seed))

	point := make([]float64, dim)
	for i := range point {
		point[i] = lower[i] + rng.Float64()*(upper[i]-lower[i])
	}

	best := append([]float64(nil), point...)
	bestCost := eval(point)

	grad := make([]float64, dim)
	probe := make([]float64, dim)
	for iter := 0; iter < s.maxIters; iter++ {
		for i := 0; i < dim; i++ {
			copy(probe, point)
			probe[i] = point[i] + gradEps
			up := eval(probe)
			probe[i] = point[i] - gradEps
			down := eval(probe)
			grad[i] = (up - down) / (2 * gradEps)
		}

		for i := 0; i < dim; i++ {
			point[i] -= s.rate * grad[i]
			if point[i] < lower[i] {
				point[i] = lower[i]
			} else if point[i] > upper[i] {
				point[i] = upper[i]
			}
		}

		cost := eval(point)
		if cost < bestCost {
			bestCost = cost
			copy(best, point)
		}
	}

	return best, bestCost
}
