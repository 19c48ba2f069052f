package css

import (
	"fmt"
	"math"
	"math/cmplx"

	"Audiomodem/pkg/modem"
)

func chirpPhase(p ChirpParams, i int) float64 {
	t := float64(i) / float64(p.fs)
	return 2 * math.Pi * (p.f0*t + 0.5*p.k*t*t)
}

// GenerateReferenceChirp returns the complex up-chirp exp(j*2*pi*(f0*t + k*t^2/2))
// over one symbol.
func GenerateReferenceChirp(p ChirpParams) []complex128 {
	ref := make([]complex128, p.ns)
	for i := range ref {
		ref[i] = cmplx.Exp(complex(0, chirpPhase(p, i)))
	}
	return ref
}

func symbolWindow(p ChirpParams) []float64 {
	w, err := modem.RaisedCosineWindow(p.ns, p.windowFraction)
	if err != nil {
		// NewChirpParams already validated ns and the window fraction
		panic(err)
	}
	return w
}

// shiftSamples converts a shift index to a cyclic sample offset.
func shiftSamples(p ChirpParams, shift int) int {
	return int(math.Round(float64(shift) * float64(p.ns) / float64(p.m)))
}

// shiftedSymbol is real(roll(ref, shift)) * window, where roll moves sample
// i to i+offset modulo Ns.
func shiftedSymbol(p ChirpParams, ref []complex128, window []float64, shift int) []float64 {
	offset := shiftSamples(p, shift)
	out := make([]float64, p.ns)
	for i := range out {
		j := ((i-offset)%p.ns + p.ns) % p.ns
		out[i] = real(ref[j]) * window[i]
	}
	return out
}

// downChirp sweeps from f0+bw back to f0.
func downChirp(p ChirpParams, ref []complex128, window []float64) []float64 {
	out := make([]float64, p.ns)
	for i := range out {
		out[i] = real(ref[p.ns-1-i]) * window[i]
	}
	return out
}

func grayEncode(v int) int {
	return v ^ (v >> 1)
}

func grayDecode(g int) int {
	v := 0
	for ; g != 0; g >>= 1 {
		v ^= g
	}
	return v
}

// SymbolToShift Gray-codes a byte into a shift index in [0, M).
func SymbolToShift(symbol int, p ChirpParams) (int, error) {
	if symbol < 0 || symbol > 0xFF {
		return 0, fmt.Errorf("%w: symbol %d is not a byte", modem.ErrConfiguration, symbol)
	}
	shift := grayEncode(symbol)
	if shift >= p.m {
		return 0, fmt.Errorf("%w: symbol %#02x needs shift %d, only %d available", modem.ErrConfiguration, symbol, shift, p.m)
	}
	return shift, nil
}

// ShiftToSymbol inverts SymbolToShift.
func ShiftToSymbol(shift int, p ChirpParams) (int, error) {
	if shift < 0 || shift >= p.m {
		return 0, fmt.Errorf("%w: shift %d outside [0, %d)", modem.ErrConfiguration, shift, p.m)
	}
	return grayDecode(shift), nil
}
