// Package sampling holds the random draws shared by the simulation packages.
// Every helper takes an explicit *rand.Rand so a run stays reproducible from
// its seed.
package sampling

import (
	"math/rand"
)

// Gaussian draws from N(mean, std). A non-positive std returns mean without
// consuming a draw.
func Gaussian(rng *rand.Rand, mean, std float64) float64 {
	if std <= 0 {
		return mean
	}
	return mean + std*rng.NormFloat64()
}

// NonNegativeGaussian is Gaussian clamped at zero.
func NonNegativeGaussian(rng *rand.Rand, mean, std float64) float64 {
	v := Gaussian(rng, mean, std)
	if v < 0 {
		return 0
	}
	return v
}

// Bernoulli returns true with probability p. It always consumes exactly one
// draw, so p outside [0,1] still keeps the stream aligned.
func Bernoulli(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// WeightedIndex picks an index with probability proportional to weights.
// It consumes one draw. Zero-length or all-zero weights return -1.
func WeightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		r -= w
		if r < 0 {
			return i
		}
	}
	return last
}

// WithoutReplacement returns k distinct indices in [0, n) using Floyd's
// algorithm. k is clamped to [0, n]. The order of the result is the order
// the indices were chosen in.
func WithoutReplacement(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.Intn(j + 1)
		if _, ok := chosen[t]; ok {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Pick returns k distinct elements of candidates in draw order.
func Pick[T any](rng *rand.Rand, candidates []T, k int) []T {
	idx := WithoutReplacement(rng, len(candidates), k)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}
