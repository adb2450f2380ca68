package dataset

import "math"

// IndexQuantile returns sorted[floor(n*q)] with no interpolation
func IndexQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	i := int(math.Floor(float64(n) * q))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return sorted[i]
}

// LowerMedian returns the middle element of a sorted slice, taking the lower
// of the two middle elements when the length is even.
func LowerMedian(sorted []float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	return sorted[(len(sorted)-1)/2]
}
