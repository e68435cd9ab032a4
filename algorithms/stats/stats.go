package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared across algorithms, using gonum where it
// matches the required convention.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Median calculates the median of a slice. For an even number of samples the
// result is the midpoint of the two central order statistics, matching the
// convention used by most numeric environments. gonum's quantile kinds do not
// implement that convention, so the sort is done here.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0.0
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}
