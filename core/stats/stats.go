// Package stats has the numeric primitives for grouped aggregation.
//
// Every function returns an ok flag instead of inventing a zero: a statistic
// over no observations is undefined, and downstream serializers must be able
// to tell "0.0" apart from "nothing to compute".
package stats

import (
	"math"
	"sort"
)

// Sum returns the total of the observations. An empty slice sums to 0,
// which is well defined (unlike the other statistics here).
func Sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// Mean returns sum/count exactly, with no smoothing.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return Sum(xs) / float64(len(xs)), true
}

// Median returns the 50th percentile under linear interpolation.
func Median(xs []float64) (float64, bool) {
	return Percentile(xs, 50)
}

// Min returns the smallest observation.
func Min(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m, true
}

// Max returns the largest observation.
func Max(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m, true
}

// Stdev returns the sample standard deviation (n-1 denominator).
// Undefined for fewer than two observations.
func Stdev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	mean, _ := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1)), true
}

// Percentile returns the p-th percentile (0..100) using linear
// interpolation between the two nearest ranks. The interpolation method is
// fixed so results reproduce across implementations: rank = p/100*(n-1),
// and fractional ranks interpolate between the bracketing observations.
// Percentile(50) of [10,20,30,40] is 25.
func Percentile(xs []float64, p float64) (float64, bool) {
	n := len(xs)
	if n == 0 || p < 0 || p > 100 {
		return 0, false
	}
	if n == 1 {
		return xs[0], true
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	frac := rank - float64(lower)
	if lower+1 >= n {
		return sorted[n-1], true
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower]), true
}

// WeightedMean returns sum(v*w)/sum(w) over paired observations.
// Undefined when the weights sum to zero or the slices are empty.
// Weighting is always by the provided weight values; an unweighted mean is
// a different statistic, not a fallback.
func WeightedMean(vals, weights []float64) (float64, bool) {
	if len(vals) == 0 || len(vals) != len(weights) {
		return 0, false
	}
	var num, den float64
	for i, v := range vals {
		num += v * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
