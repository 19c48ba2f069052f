package modem

import "math"

// GoertzelPower returns the power of window at the DFT bin nearest freq.
// The bin index is never below 1.
func GoertzelPower(window []float64, freq float64, sampleRate int) float64 {
	n := len(window)
	if n == 0 {
		return 0
	}
	k := math.Round(float64(n) * freq / float64(sampleRate))
	if k < 1 {
		k = 1
	}
	coeff := 2 * math.Cos(2*math.Pi*k/float64(n))

	var s1, s2 float64
	for _, x := range window {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return max(0, s1*s1+s2*s2-coeff*s1*s2)
}

// ToneDetector reports whether Frequency dominates a window.
type ToneDetector struct {
	Frequency   float64
	Comparisons []float64
	SampleRate  int

	DominanceThreshold   float64
	EnergyRatioThreshold float64
}

func StartToneDetector(sampleRate int) ToneDetector {
	return ToneDetector{
		Frequency:            StartToneFrequency,
		Comparisons:          []float64{EndToneFrequency, MarkFrequency, SpaceFrequency},
		SampleRate:           sampleRate,
		DominanceThreshold:   8,
		EnergyRatioThreshold: 0.1,
	}
}

func EndToneDetector(sampleRate int) ToneDetector {
	return ToneDetector{
		Frequency:            EndToneFrequency,
		Comparisons:          []float64{StartToneFrequency, MarkFrequency, SpaceFrequency},
		SampleRate:           sampleRate,
		DominanceThreshold:   8,
		EnergyRatioThreshold: 0.1,
	}
}

// Detect requires both dominance over every comparison frequency and a
// minimum share of the window energy. Empty or silent windows never match.
func (d ToneDetector) Detect(window []float64) bool {
	if len(window) == 0 {
		return false
	}
	total := energy(window)
	power := GoertzelPower(window, d.Frequency, d.SampleRate)
	if total <= 0 || power <= 0 {
		return false
	}
	strongest := 0.0
	for _, f := range d.Comparisons {
		strongest = max(strongest, GoertzelPower(window, f, d.SampleRate))
	}
	dominance := power / max(strongest, 1e-12)
	return dominance > d.DominanceThreshold && power/total > d.EnergyRatioThreshold
}

// Purity is the share of the window energy captured by the detector's bin,
// close to 1 for a window filled by the tone alone.
func (d ToneDetector) Purity(window []float64) float64 {
	total := energy(window)
	if total <= 0 {
		return 0
	}
	return GoertzelPower(window, d.Frequency, d.SampleRate) / (total * float64(len(window)) / 2)
}
