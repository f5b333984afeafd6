// Package match ranks a population of prior results by their distance to a
// target score vector. It holds no state.
package match

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// DefaultWeights returns n unit weights.
func DefaultWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// ValidateWeights checks that weights has one non-negative finite entry per
// axis and that at least one of them is positive.
func ValidateWeights(weights []float64, axes int) error {
	if len(weights) != axes {
		return fmt.Errorf("%w: got %d weights for %d axes", ErrInvalidWeights, len(weights), axes)
	}
	var sum float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidWeights, i, w)
		}
		sum += w
	}
	if sum == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}

// Bias is the weighted mean of squared normalized per-axis deltas:
// sum(((|t-c|/100) * w)^2) / sum(w). Both vectors must match weights in length.
func Bias(target, candidate, weights []float64) float64 {
	var num, den float64
	for a, w := range weights {
		d := math.Abs(target[a]-candidate[a]) / 100 * w
		num += d * d
		den += w
	}
	return num / den
}

// Rank orders population from the closest to the furthest match of target.
// A nil weights slice means unit weights. Ties keep population order.
func Rank(target []float64, population []model.Score, weights []float64) ([]model.Match, error) {
	if weights == nil {
		weights = DefaultWeights(len(target))
	}
	if err := ValidateWeights(weights, len(target)); err != nil {
		return nil, err
	}

	matches := make([]model.Match, len(population))
	for i, s := range population {
		if len(s.Stats) != len(target) {
			return nil, fmt.Errorf("%w: %q has %d stats, want %d", ErrArity, s.Name, len(s.Stats), len(target))
		}
		matches[i] = model.Match{Score: s, Bias: Bias(target, s.Stats, weights)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Bias < matches[j].Bias
	})
	return matches, nil
}
