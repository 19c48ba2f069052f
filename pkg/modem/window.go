package modem

import (
	"fmt"
	"math"
)

// RaisedCosineWindow returns a window of ones whose first and last
// round(length*rampFraction) samples (capped at length/2) follow a
// half-cosine ramp.
func RaisedCosineWindow(length int, rampFraction float64) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: window length must be positive, got %d", ErrConfiguration, length)
	}
	if rampFraction < 0 || rampFraction >= 0.5 {
		return nil, fmt.Errorf("%w: ramp fraction must be in [0, 0.5), got %g", ErrConfiguration, rampFraction)
	}

	window := make([]float64, length)
	for i := range window {
		window[i] = 1
	}

	ramp := min(int(math.Round(float64(length)*rampFraction)), length/2)
	for i := 0; i < ramp; i++ {
		v := 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(ramp))
		window[i] = v
		window[length-1-i] = v
	}
	return window, nil
}
