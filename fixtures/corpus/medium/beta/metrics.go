// Package beta is scan corpus: its Average is a raw copy of alpha's.
package beta

const DefaultLabel = "p95"

// Average returns the arithmetic mean of xs, or zero for an empty slice.
func Average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}
