package modem

import "gonum.org/v1/gonum/floats"

// dotProduct over the common prefix of a and b.
func dotProduct(a, b []float64) float64 {
	n := min(len(a), len(b))
	return floats.Dot(a[:n], b[:n])
}

func energy(a []float64) float64 {
	return floats.Dot(a, a)
}
