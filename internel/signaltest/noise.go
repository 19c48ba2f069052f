// Package signaltest builds noisy and padded waveforms for receiver tests.
package signaltest

import (
	"math"

	"golang.org/x/exp/rand"
)

// Gaussian returns n samples of zero-mean white noise with the given standard deviation.
func Gaussian(seed uint64, n int, stddev float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * stddev
	}
	return out
}

// AddNoise returns signal plus Gaussian noise of the given standard deviation.
func AddNoise(seed uint64, signal []float64, stddev float64) []float64 {
	noise := Gaussian(seed, len(signal), stddev)
	for i, v := range signal {
		noise[i] += v
	}
	return noise
}

// AddNoiseSNR adds noise scaled so the result has the given SNR in dB.
func AddNoiseSNR(seed uint64, signal []float64, snrDB float64) []float64 {
	return AddNoise(seed, signal, math.Sqrt(Power(signal)/math.Pow(10, snrDB/10)))
}

// Power is the mean square of signal.
func Power(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range signal {
		sum += v * v
	}
	return sum / float64(len(signal))
}

// Sine returns n samples of amplitude*sin(2*pi*freq*t).
func Sine(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// Concat joins waveforms end to end.
func Concat(parts ...[]float64) []float64 {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]float64, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Split cuts signal into count nearly equal chunks, the first ones one sample longer.
func Split(signal []float64, count int) [][]float64 {
	chunks := make([][]float64, 0, count)
	base, extra := len(signal)/count, len(signal)%count
	offset := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, signal[offset:offset+size])
		offset += size
	}
	return chunks
}
